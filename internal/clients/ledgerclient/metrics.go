package ledgerclient

import (
	"context"
	"time"

	"github.com/algopool-labs/staking-pool-engine/internal/observability/metrics"
)

type ledgerClientWithMetrics struct {
	ledger LedgerInterface
}

func NewLedgerClientWithMetrics(ledger LedgerInterface) *ledgerClientWithMetrics {
	return &ledgerClientWithMetrics{ledger: ledger}
}

func (l *ledgerClientWithMetrics) GetLatestTimestamp(ctx context.Context) (int64, error) {
	return runLedgerClientMethodWithMetrics("GetLatestTimestamp", func() (int64, error) {
		return l.ledger.GetLatestTimestamp(ctx)
	})
}

func (l *ledgerClientWithMetrics) GetMinBalanceParams(ctx context.Context) (*MinBalanceParams, error) {
	return runLedgerClientMethodWithMetrics("GetMinBalanceParams", func() (*MinBalanceParams, error) {
		return l.ledger.GetMinBalanceParams(ctx)
	})
}

func (l *ledgerClientWithMetrics) SubmitAssetTransfer(ctx context.Context, assetID, amount uint64, recipient string) (string, error) {
	return runLedgerClientMethodWithMetrics("SubmitAssetTransfer", func() (string, error) {
		return l.ledger.SubmitAssetTransfer(ctx, assetID, amount, recipient)
	})
}

func (l *ledgerClientWithMetrics) SubmitAssetOptIn(ctx context.Context, assetID uint64) (string, error) {
	return runLedgerClientMethodWithMetrics("SubmitAssetOptIn", func() (string, error) {
		return l.ledger.SubmitAssetOptIn(ctx, assetID)
	})
}

func runLedgerClientMethodWithMetrics[T any](method string, f func() (T, error)) (T, error) {
	startTime := time.Now()
	v, err := f()
	metrics.ObserveLedgerClientLatency(method, time.Since(startTime), err != nil)
	return v, err
}
