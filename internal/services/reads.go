package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/algopool-labs/staking-pool-engine/internal/db"
	"github.com/algopool-labs/staking-pool-engine/internal/db/model"
	"github.com/algopool-labs/staking-pool-engine/internal/types"
)

// PoolPublic is the externally visible shape of a pool, including the
// lifecycle phase derived from the ledger clock.
type PoolPublic struct {
	PoolID               string          `json:"pool_id"`
	Admin                string          `json:"admin"`
	Phase                types.PoolPhase `json:"phase"`
	Paused               bool            `json:"paused"`
	StakedAssetID        uint64          `json:"staked_asset_id"`
	RewardAssetID        uint64          `json:"reward_asset_id"`
	BeginTimestamp       int64           `json:"begin_timestamp"`
	EndTimestamp         int64           `json:"end_timestamp"`
	TotalRewardsPool     uint64          `json:"total_rewards_pool"`
	TotalStaked          uint64          `json:"total_staked"`
	FixedRateBasisPoints uint64          `json:"fixed_rate_basis_points"`
	LastGlobalUpdate     int64           `json:"last_global_update"`
}

type AccountPublic struct {
	PoolID         string `json:"pool_id"`
	Address        string `json:"address"`
	AmountStaked   uint64 `json:"amount_staked"`
	AmountRewarded uint64 `json:"amount_rewarded"`
	LastUpdated    int64  `json:"last_updated"`
}

func (s *Service) GetPools(ctx context.Context) ([]*PoolPublic, *types.Error) {
	now, err := s.ledger.GetLatestTimestamp(ctx)
	if err != nil {
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to fetch ledger timestamp: %w", err),
		)
	}
	pools, err := s.db.GetPools(ctx)
	if err != nil {
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to list pools: %w", err),
		)
	}

	result := make([]*PoolPublic, 0, len(pools))
	for _, pool := range pools {
		result = append(result, toPoolPublic(pool, now))
	}
	return result, nil
}

func (s *Service) GetPool(ctx context.Context, poolID string) (*PoolPublic, *types.Error) {
	now, err := s.ledger.GetLatestTimestamp(ctx)
	if err != nil {
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to fetch ledger timestamp: %w", err),
		)
	}
	pool, serviceErr := s.loadPool(ctx, poolID)
	if serviceErr != nil {
		return nil, serviceErr
	}
	return toPoolPublic(pool, now), nil
}

func (s *Service) GetAccount(ctx context.Context, poolID, address string) (*AccountPublic, *types.Error) {
	account, err := s.db.GetAccount(ctx, poolID, address)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewErrorWithMsg(
				http.StatusNotFound, types.NotFound,
				fmt.Sprintf("address %s has no account in pool %s", address, poolID),
			)
		}
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to load account: %w", err),
		)
	}
	return &AccountPublic{
		PoolID:         account.ID.PoolID,
		Address:        account.ID.Address,
		AmountStaked:   account.AmountStaked,
		AmountRewarded: account.AmountRewarded,
		LastUpdated:    account.LastUpdated,
	}, nil
}

func toPoolPublic(pool *model.PoolDocument, now int64) *PoolPublic {
	return &PoolPublic{
		PoolID:               pool.PoolID,
		Admin:                pool.Admin,
		Phase:                types.PoolPhaseAt(pool.Initialized, pool.BeginTimestamp, pool.EndTimestamp, now),
		Paused:               pool.Paused,
		StakedAssetID:        pool.StakedAssetID,
		RewardAssetID:        pool.RewardAssetID,
		BeginTimestamp:       pool.BeginTimestamp,
		EndTimestamp:         pool.EndTimestamp,
		TotalRewardsPool:     pool.TotalRewardsPool,
		TotalStaked:          pool.TotalStaked,
		FixedRateBasisPoints: pool.FixedRateBasisPoints,
		LastGlobalUpdate:     pool.LastGlobalUpdate,
	}
}
