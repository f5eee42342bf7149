package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/algopool-labs/staking-pool-engine/internal/clients/ledgerclient"
	"github.com/algopool-labs/staking-pool-engine/internal/config"
	"github.com/algopool-labs/staking-pool-engine/internal/db"
	"github.com/algopool-labs/staking-pool-engine/internal/queue"
	"github.com/algopool-labs/staking-pool-engine/internal/utils/poller"
)

// Service owns the pool state machine. Every entry point loads the pool
// (and, where relevant, the caller's account), validates, mutates in-memory
// copies and commits them as a unit; outbound asset transfers are submitted
// only after the commit succeeds.
type Service struct {
	cfg            *config.Config
	db             db.DbInterface
	ledger         ledgerclient.LedgerInterface
	eventPublisher queue.EventPublisher

	// opMu serializes entry points: at most one operation mutates pool
	// state at a time.
	opMu sync.Mutex
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	ledger ledgerclient.LedgerInterface,
	eventPublisher queue.EventPublisher,
) *Service {
	return &Service{
		cfg:            cfg,
		db:             db,
		ledger:         ledger,
		eventPublisher: eventPublisher,
	}
}

// StartPollers launches the background pollers that keep per-pool metrics
// fresh. They stop when ctx is cancelled.
func (s *Service) StartPollers(ctx context.Context) {
	statsPoller := poller.NewPoller(
		"pool_stats",
		s.cfg.Poller.StatsPollingInterval,
		s.SyncPoolMetrics,
	)
	go statsPoller.Start(ctx)
}

// emitEvent publishes a pool event after a successful commit. Publishing is
// best effort: the state change already happened, so a broker failure is
// logged, not surfaced to the caller.
func (s *Service) emitEvent(ctx context.Context, event *queue.PoolEvent) {
	if err := s.eventPublisher.PushPoolEvent(ctx, event); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("event_type", string(event.EventType)).
			Str("pool_id", event.PoolID).
			Msg("failed to publish pool event")
	}
}
