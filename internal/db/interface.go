package db

import (
	"context"

	"github.com/algopool-labs/staking-pool-engine/internal/db/model"
)

//go:generate mockery --name=DbInterface --output=../../tests/mocks --outpkg=mocks --filename=mock_db_client.go
type DbInterface interface {
	Ping(ctx context.Context) error

	// SaveNewPool inserts a freshly deployed pool; returns DuplicateKeyError
	// if the pool id already exists.
	SaveNewPool(ctx context.Context, pool *model.PoolDocument) error
	// GetPool returns NotFoundError for unknown pool ids.
	GetPool(ctx context.Context, poolID string) (*model.PoolDocument, error)
	GetPools(ctx context.Context) ([]*model.PoolDocument, error)

	// GetAccount returns NotFoundError for unknown (pool, address) pairs.
	GetAccount(ctx context.Context, poolID, address string) (*model.AccountDocument, error)
	CountPoolAccounts(ctx context.Context, poolID string) (int64, error)

	// CommitPoolMutation persists the outcome of one entry point as a unit:
	// the pool document is replaced and, when account is non-nil, the account
	// document is upserted (or deleted when removeAccount is set). Either
	// everything is written or nothing is.
	CommitPoolMutation(
		ctx context.Context,
		pool *model.PoolDocument,
		account *model.AccountDocument,
		removeAccount bool,
	) error
}
