package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/algopool-labs/staking-pool-engine/internal/db"
	"github.com/algopool-labs/staking-pool-engine/internal/db/model"
	"github.com/algopool-labs/staking-pool-engine/internal/queue"
	"github.com/algopool-labs/staking-pool-engine/internal/types"
)

// Deposit credits the caller's stake from a validated inbound transfer.
// Rewards accrue on the pre-deposit stake before the new amount is added,
// so a top-up never earns for time it was not in the pool.
func (s *Service) Deposit(
	ctx context.Context, caller string, req *types.DepositRequest,
) *types.Error {
	pool, serviceErr := s.activePool(ctx, req.PoolID)
	if serviceErr != nil {
		return serviceErr
	}
	if serviceErr := validateInboundTransfer(
		&req.Transfer, caller, pool.EscrowAddress, pool.StakedAssetID,
	); serviceErr != nil {
		return serviceErr
	}

	now, err := s.ledger.GetLatestTimestamp(ctx)
	if err != nil {
		return types.NewInternalServiceError(
			fmt.Errorf("failed to fetch ledger timestamp: %w", err),
		)
	}

	account, serviceErr := s.loadOrCreateAccount(ctx, pool.PoolID, caller)
	if serviceErr != nil {
		return serviceErr
	}
	if serviceErr := accrueRewards(pool, account, now); serviceErr != nil {
		return serviceErr
	}

	account.AmountStaked += req.Transfer.Amount
	pool.TotalStaked += req.Transfer.Amount
	if err := s.db.CommitPoolMutation(ctx, pool, account, false); err != nil {
		return types.NewInternalServiceError(
			fmt.Errorf("failed to commit deposit: %w", err),
		)
	}

	log.Ctx(ctx).Info().
		Str("pool_id", pool.PoolID).
		Str("address", caller).
		Uint64("amount", req.Transfer.Amount).
		Msg("deposit credited")
	s.emitEvent(ctx, &queue.PoolEvent{
		EventType: queue.EventDeposited,
		PoolID:    pool.PoolID,
		Address:   caller,
		AssetID:   pool.StakedAssetID,
		Amount:    req.Transfer.Amount,
		Timestamp: now,
	})
	return nil
}

// Withdraw accrues the caller's rewards and pays out the requested amount
// of the requested asset, clamped to the caller's balance. With CloseOut
// set the participation record is removed; that is only allowed once both
// balances sit at zero after the payout.
//
// The ledger transfer is submitted after the commit: the balances are
// already debited, so a crash between commit and submission can only
// under-pay, never double-pay.
func (s *Service) Withdraw(
	ctx context.Context, caller string, req *types.WithdrawRequest,
) (uint64, *types.Error) {
	pool, serviceErr := s.activePool(ctx, req.PoolID)
	if serviceErr != nil {
		return 0, serviceErr
	}

	now, err := s.ledger.GetLatestTimestamp(ctx)
	if err != nil {
		return 0, types.NewInternalServiceError(
			fmt.Errorf("failed to fetch ledger timestamp: %w", err),
		)
	}

	account, err := s.db.GetAccount(ctx, pool.PoolID, caller)
	if err != nil {
		if db.IsNotFoundError(err) {
			return 0, types.NewErrorWithMsg(
				http.StatusNotFound, types.NotFound,
				fmt.Sprintf("address %s has no account in pool %s", caller, pool.PoolID),
			)
		}
		return 0, types.NewInternalServiceError(
			fmt.Errorf("failed to load account: %w", err),
		)
	}
	if serviceErr := accrueRewards(pool, account, now); serviceErr != nil {
		return 0, serviceErr
	}

	paid, serviceErr := dispense(pool, account, req.AssetID, req.Amount)
	if serviceErr != nil {
		return 0, serviceErr
	}
	if req.CloseOut && (account.AmountStaked != 0 || account.AmountRewarded != 0) {
		return 0, types.NewErrorWithMsg(
			http.StatusConflict, types.NonZeroBalanceOnClose,
			"cannot close out an account that still holds stake or rewards",
		)
	}

	if err := s.db.CommitPoolMutation(ctx, pool, account, req.CloseOut); err != nil {
		return 0, types.NewInternalServiceError(
			fmt.Errorf("failed to commit withdrawal: %w", err),
		)
	}

	recipient := req.Recipient
	if recipient == "" {
		recipient = caller
	}
	if paid > 0 {
		txID, err := s.ledger.SubmitAssetTransfer(ctx, req.AssetID, paid, recipient)
		if err != nil {
			// The debit is committed; the payout needs operator attention
			// rather than a blind resend.
			log.Ctx(ctx).Error().Err(err).
				Str("pool_id", pool.PoolID).
				Str("recipient", recipient).
				Uint64("amount", paid).
				Msg("payout submission failed after commit")
			return paid, types.NewInternalServiceError(
				fmt.Errorf("withdrawal committed but payout submission failed: %w", err),
			)
		}
		log.Ctx(ctx).Info().
			Str("pool_id", pool.PoolID).
			Str("address", caller).
			Str("tx_id", txID).
			Uint64("amount", paid).
			Msg("withdrawal paid out")
	}

	s.emitEvent(ctx, &queue.PoolEvent{
		EventType: queue.EventWithdrawn,
		PoolID:    pool.PoolID,
		Address:   caller,
		AssetID:   req.AssetID,
		Amount:    paid,
		Timestamp: now,
	})
	return paid, nil
}

// activePool loads a pool and enforces the gates shared by participant
// entry points: the pool must be initialized and not paused.
func (s *Service) activePool(ctx context.Context, poolID string) (*model.PoolDocument, *types.Error) {
	pool, serviceErr := s.loadPool(ctx, poolID)
	if serviceErr != nil {
		return nil, serviceErr
	}
	if !pool.Initialized {
		return nil, types.NewValidationFailedError(
			fmt.Errorf("pool %s is not initialized", pool.PoolID),
		)
	}
	if pool.Paused {
		return nil, types.NewErrorWithMsg(
			http.StatusConflict, types.PoolPaused,
			fmt.Sprintf("pool %s is paused", pool.PoolID),
		)
	}
	return pool, nil
}

func (s *Service) loadOrCreateAccount(
	ctx context.Context, poolID, address string,
) (*model.AccountDocument, *types.Error) {
	account, err := s.db.GetAccount(ctx, poolID, address)
	if err != nil {
		if db.IsNotFoundError(err) {
			return model.NewAccountDocument(poolID, address), nil
		}
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to load account: %w", err),
		)
	}
	return account, nil
}
