package db

import (
	"context"
	"time"

	"github.com/algopool-labs/staking-pool-engine/internal/db/model"
	"github.com/algopool-labs/staking-pool-engine/internal/observability/metrics"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) SaveNewPool(ctx context.Context, pool *model.PoolDocument) error {
	return d.run("SaveNewPool", func() error {
		return d.db.SaveNewPool(ctx, pool)
	})
}

func (d *DbWithMetrics) GetPool(ctx context.Context, poolID string) (result *model.PoolDocument, err error) {
	//nolint:errcheck
	d.run("GetPool", func() error {
		result, err = d.db.GetPool(ctx, poolID)
		return err
	})
	return
}

func (d *DbWithMetrics) GetPools(ctx context.Context) (result []*model.PoolDocument, err error) {
	//nolint:errcheck
	d.run("GetPools", func() error {
		result, err = d.db.GetPools(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) GetAccount(ctx context.Context, poolID, address string) (result *model.AccountDocument, err error) {
	//nolint:errcheck
	d.run("GetAccount", func() error {
		result, err = d.db.GetAccount(ctx, poolID, address)
		return err
	})
	return
}

func (d *DbWithMetrics) CountPoolAccounts(ctx context.Context, poolID string) (result int64, err error) {
	//nolint:errcheck
	d.run("CountPoolAccounts", func() error {
		result, err = d.db.CountPoolAccounts(ctx, poolID)
		return err
	})
	return
}

func (d *DbWithMetrics) CommitPoolMutation(
	ctx context.Context,
	pool *model.PoolDocument,
	account *model.AccountDocument,
	removeAccount bool,
) error {
	return d.run("CommitPoolMutation", func() error {
		return d.db.CommitPoolMutation(ctx, pool, account, removeAccount)
	})
}

func (d *DbWithMetrics) run(method string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.ObserveDbLatency(method, time.Since(start), err != nil)
	return err
}
