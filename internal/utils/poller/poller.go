package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/algopool-labs/staking-pool-engine/internal/observability/metrics"
	"github.com/algopool-labs/staking-pool-engine/internal/types"
)

// Poller runs pollMethod every interval until stopped. Failures are logged
// and recorded; the loop keeps going.
type Poller struct {
	name       string
	interval   time.Duration
	quit       chan struct{}
	pollMethod func(ctx context.Context) *types.Error
}

func NewPoller(name string, interval time.Duration, pollMethod func(ctx context.Context) *types.Error) *Poller {
	return &Poller{
		name:       name,
		interval:   interval,
		quit:       make(chan struct{}),
		pollMethod: pollMethod,
	}
}

func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Info().Msgf("Starting %s poller with interval %s", p.name, p.interval)

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			err := p.pollMethod(ctx)
			metrics.RecordPollerDuration(p.name, time.Since(start), err != nil)
			if err != nil {
				log.Error().Err(err).Str("poller", p.name).Msg("Error polling")
			}
		case <-ctx.Done():
			log.Info().Msgf("%s poller stopped due to context cancellation", p.name)
			return
		case <-p.quit:
			log.Info().Msgf("%s poller stopped", p.name)
			return
		}
	}
}

func (p *Poller) Stop() {
	close(p.quit)
}
