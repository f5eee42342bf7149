package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/algopool-labs/staking-pool-engine/internal/db"
	"github.com/algopool-labs/staking-pool-engine/internal/db/model"
	"github.com/algopool-labs/staking-pool-engine/internal/queue"
	"github.com/algopool-labs/staking-pool-engine/internal/types"
)

// poolAssetCount is the number of assets the escrow account opts into per
// pool; init's funding check is sized from it.
const poolAssetCount = 2

// Deploy creates a new pool record owned by the caller. The asset pair and
// the reward window are fixed for the pool's lifetime.
func (s *Service) Deploy(
	ctx context.Context, caller string, req *types.DeployRequest,
) (*model.PoolDocument, *types.Error) {
	if req.EndTimestamp <= req.BeginTimestamp {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.InvalidWindow,
			"reward window end must be after its begin",
		)
	}
	now, err := s.ledger.GetLatestTimestamp(ctx)
	if err != nil {
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to fetch ledger timestamp: %w", err),
		)
	}
	if req.BeginTimestamp <= now {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.InvalidWindow,
			"reward window must begin in the future",
		)
	}

	pool := model.NewPoolDocument(
		uuid.NewString(),
		caller,
		s.cfg.Ledger.EscrowAddress,
		req.StakedAssetID,
		req.RewardAssetID,
		req.BeginTimestamp,
		req.EndTimestamp,
	)
	if err := s.db.SaveNewPool(ctx, pool); err != nil {
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to save new pool: %w", err),
		)
	}

	log.Ctx(ctx).Info().
		Str("pool_id", pool.PoolID).
		Str("admin", pool.Admin).
		Uint64("staked_asset_id", pool.StakedAssetID).
		Uint64("reward_asset_id", pool.RewardAssetID).
		Msg("pool deployed")
	s.emitEvent(ctx, &queue.PoolEvent{
		EventType: queue.EventPoolDeployed,
		PoolID:    pool.PoolID,
	})
	return pool, nil
}

// Init opts the escrow account into the pool's assets, paid for by the
// funding payment. The payment must cover the minimum balance for the pool
// account plus one slot per asset, and the opt-in fees.
func (s *Service) Init(
	ctx context.Context, caller string, req *types.InitRequest,
) *types.Error {
	pool, serviceErr := s.loadPool(ctx, req.PoolID)
	if serviceErr != nil {
		return serviceErr
	}
	if caller != pool.Admin {
		return types.NewErrorWithMsg(
			http.StatusForbidden, types.Unauthorized,
			"only the pool admin may initialize the pool",
		)
	}
	if pool.Initialized {
		return types.NewErrorWithMsg(
			http.StatusConflict, types.AlreadyInitialized,
			"pool is already initialized",
		)
	}
	if req.Funding.Sender != caller || req.Funding.Receiver != pool.EscrowAddress {
		return types.NewValidationFailedError(
			fmt.Errorf("funding payment must be sent by the caller to the escrow address"),
		)
	}

	params, err := s.ledger.GetMinBalanceParams(ctx)
	if err != nil {
		return types.NewInternalServiceError(
			fmt.Errorf("failed to fetch min balance params: %w", err),
		)
	}
	required := params.MinBalance*(poolAssetCount+1) + params.MinFee*poolAssetCount
	if req.Funding.Amount < required {
		return types.NewErrorWithMsg(
			http.StatusBadRequest, types.InsufficientFunding,
			fmt.Sprintf("funding payment of %d is below the required %d", req.Funding.Amount, required),
		)
	}

	// Opt-ins are idempotent on the ledger side, so a failed commit after a
	// successful opt-in leaves nothing to unwind.
	if _, err := s.ledger.SubmitAssetOptIn(ctx, pool.StakedAssetID); err != nil {
		return types.NewInternalServiceError(
			fmt.Errorf("failed to opt into staked asset %d: %w", pool.StakedAssetID, err),
		)
	}
	if pool.RewardAssetID != pool.StakedAssetID {
		if _, err := s.ledger.SubmitAssetOptIn(ctx, pool.RewardAssetID); err != nil {
			return types.NewInternalServiceError(
				fmt.Errorf("failed to opt into reward asset %d: %w", pool.RewardAssetID, err),
			)
		}
	}

	pool.Initialized = true
	if err := s.db.CommitPoolMutation(ctx, pool, nil, false); err != nil {
		return types.NewInternalServiceError(
			fmt.Errorf("failed to commit pool init: %w", err),
		)
	}

	log.Ctx(ctx).Info().Str("pool_id", pool.PoolID).Msg("pool initialized")
	s.emitEvent(ctx, &queue.PoolEvent{
		EventType: queue.EventPoolInitialized,
		PoolID:    pool.PoolID,
		Amount:    req.Funding.Amount,
	})
	return nil
}

// Reward tops up the pool's reward balance from the admin's transfer and
// sets the accrual rate in basis points.
func (s *Service) Reward(
	ctx context.Context, caller string, req *types.RewardRequest,
) *types.Error {
	pool, serviceErr := s.loadPool(ctx, req.PoolID)
	if serviceErr != nil {
		return serviceErr
	}
	if caller != pool.Admin {
		return types.NewErrorWithMsg(
			http.StatusForbidden, types.Unauthorized,
			"only the pool admin may fund rewards",
		)
	}
	if !pool.Initialized {
		return types.NewValidationFailedError(
			fmt.Errorf("pool %s is not initialized", pool.PoolID),
		)
	}
	if serviceErr := validateInboundTransfer(
		&req.Transfer, caller, pool.EscrowAddress, pool.RewardAssetID,
	); serviceErr != nil {
		return serviceErr
	}

	pool.TotalRewardsPool += req.Transfer.Amount
	pool.FixedRateBasisPoints = req.FixedRate
	if err := s.db.CommitPoolMutation(ctx, pool, nil, false); err != nil {
		return types.NewInternalServiceError(
			fmt.Errorf("failed to commit reward funding: %w", err),
		)
	}

	log.Ctx(ctx).Info().
		Str("pool_id", pool.PoolID).
		Uint64("amount", req.Transfer.Amount).
		Uint64("fixed_rate", req.FixedRate).
		Msg("reward pool funded")
	s.emitEvent(ctx, &queue.PoolEvent{
		EventType: queue.EventRewardsFunded,
		PoolID:    pool.PoolID,
		AssetID:   pool.RewardAssetID,
		Amount:    req.Transfer.Amount,
	})
	return nil
}

// Configure flips the pause flag and optionally hands the admin role over.
func (s *Service) Configure(
	ctx context.Context, caller string, req *types.ConfigRequest,
) *types.Error {
	pool, serviceErr := s.loadPool(ctx, req.PoolID)
	if serviceErr != nil {
		return serviceErr
	}
	if caller != pool.Admin {
		return types.NewErrorWithMsg(
			http.StatusForbidden, types.Unauthorized,
			"only the pool admin may configure the pool",
		)
	}

	pool.Paused = req.Paused
	if req.NewAdmin != "" {
		pool.Admin = req.NewAdmin
	}
	if err := s.db.CommitPoolMutation(ctx, pool, nil, false); err != nil {
		return types.NewInternalServiceError(
			fmt.Errorf("failed to commit pool config: %w", err),
		)
	}

	log.Ctx(ctx).Info().
		Str("pool_id", pool.PoolID).
		Bool("paused", pool.Paused).
		Str("admin", pool.Admin).
		Msg("pool configured")
	s.emitEvent(ctx, &queue.PoolEvent{
		EventType: queue.EventPoolConfigured,
		PoolID:    pool.PoolID,
	})
	return nil
}

func (s *Service) loadPool(ctx context.Context, poolID string) (*model.PoolDocument, *types.Error) {
	pool, err := s.db.GetPool(ctx, poolID)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewErrorWithMsg(
				http.StatusNotFound, types.NotFound,
				fmt.Sprintf("pool %s not found", poolID),
			)
		}
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to load pool %s: %w", poolID, err),
		)
	}
	return pool, nil
}

// validateInboundTransfer checks an asset-movement leg against the caller
// and the pool: the caller must be the sender, the escrow the receiver, and
// the asset the expected one.
func validateInboundTransfer(
	transfer *types.AssetTransfer, caller, escrowAddress string, assetID uint64,
) *types.Error {
	if transfer.Sender != caller {
		return types.NewValidationFailedError(
			fmt.Errorf("transfer sender %s does not match caller %s", transfer.Sender, caller),
		)
	}
	if transfer.Receiver != escrowAddress {
		return types.NewValidationFailedError(
			fmt.Errorf("transfer receiver %s is not the escrow address", transfer.Receiver),
		)
	}
	if transfer.AssetID != assetID {
		return types.NewErrorWithMsg(
			http.StatusBadRequest, types.UnsupportedAsset,
			fmt.Sprintf("transfer asset %d does not match expected asset %d", transfer.AssetID, assetID),
		)
	}
	return nil
}
