package services

import (
	"context"
	"fmt"

	"github.com/algopool-labs/staking-pool-engine/internal/observability/metrics"
	"github.com/algopool-labs/staking-pool-engine/internal/types"
)

// OperationResult carries the per-operation outputs back to the boundary
// layer. Fields not produced by the operation stay at their zero value.
type OperationResult struct {
	PoolID          string `json:"pool_id,omitempty"`
	AmountDispensed uint64 `json:"amount_dispensed,omitempty"`
}

// ProcessOperation is the single entry point for state-changing operations.
// It dispatches on the operation type and serializes execution, so each
// operation sees the state the previous one committed.
func (s *Service) ProcessOperation(
	ctx context.Context, op *types.Operation,
) (*OperationResult, *types.Error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	result, err := s.dispatch(ctx, op)
	if err != nil {
		metrics.IncPoolOperation(op.Type.String(), metrics.Error)
		return nil, err
	}
	metrics.IncPoolOperation(op.Type.String(), metrics.Success)
	return result, nil
}

func (s *Service) dispatch(ctx context.Context, op *types.Operation) (*OperationResult, *types.Error) {
	switch op.Type {
	case types.OperationDeploy:
		if op.Deploy == nil {
			return nil, missingPayloadError(op.Type)
		}
		pool, err := s.Deploy(ctx, op.Caller, op.Deploy)
		if err != nil {
			return nil, err
		}
		return &OperationResult{PoolID: pool.PoolID}, nil
	case types.OperationInit:
		if op.Init == nil {
			return nil, missingPayloadError(op.Type)
		}
		if err := s.Init(ctx, op.Caller, op.Init); err != nil {
			return nil, err
		}
		return &OperationResult{PoolID: op.Init.PoolID}, nil
	case types.OperationReward:
		if op.Reward == nil {
			return nil, missingPayloadError(op.Type)
		}
		if err := s.Reward(ctx, op.Caller, op.Reward); err != nil {
			return nil, err
		}
		return &OperationResult{PoolID: op.Reward.PoolID}, nil
	case types.OperationDeposit:
		if op.Deposit == nil {
			return nil, missingPayloadError(op.Type)
		}
		if err := s.Deposit(ctx, op.Caller, op.Deposit); err != nil {
			return nil, err
		}
		return &OperationResult{PoolID: op.Deposit.PoolID}, nil
	case types.OperationWithdraw:
		if op.Withdraw == nil {
			return nil, missingPayloadError(op.Type)
		}
		paid, err := s.Withdraw(ctx, op.Caller, op.Withdraw)
		if err != nil {
			return nil, err
		}
		return &OperationResult{PoolID: op.Withdraw.PoolID, AmountDispensed: paid}, nil
	case types.OperationConfig:
		if op.Config == nil {
			return nil, missingPayloadError(op.Type)
		}
		if err := s.Configure(ctx, op.Caller, op.Config); err != nil {
			return nil, err
		}
		return &OperationResult{PoolID: op.Config.PoolID}, nil
	default:
		return nil, types.NewValidationFailedError(
			fmt.Errorf("unknown operation type: %s", op.Type),
		)
	}
}

func missingPayloadError(opType types.OperationType) *types.Error {
	return types.NewValidationFailedError(
		fmt.Errorf("operation %s is missing its request payload", opType),
	)
}
