package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/algopool-labs/staking-pool-engine/internal/observability/metrics"
	"github.com/algopool-labs/staking-pool-engine/internal/types"
)

// SyncPoolMetrics refreshes the per-pool gauges from the database. Driven
// by the stats poller.
func (s *Service) SyncPoolMetrics(ctx context.Context) *types.Error {
	pools, err := s.db.GetPools(ctx)
	if err != nil {
		return types.NewInternalServiceError(
			fmt.Errorf("failed to list pools: %w", err),
		)
	}

	for _, pool := range pools {
		accounts, err := s.db.CountPoolAccounts(ctx, pool.PoolID)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).
				Str("pool_id", pool.PoolID).
				Msg("failed to count pool accounts")
			continue
		}
		metrics.RecordPoolGauges(pool.PoolID, pool.TotalRewardsPool, pool.TotalStaked, accounts)
	}
	return nil
}
