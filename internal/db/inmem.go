package db

import (
	"context"
	"sync"

	"github.com/algopool-labs/staking-pool-engine/internal/db/model"
)

// InMemoryDatabase is a mutex-serialized twin of the mongo-backed Database,
// holding the same two-level layout (poolID -> pool, (poolID, address) ->
// account). It backs the unit tests and the local demo mode; commits are
// all-or-nothing under a single lock, matching the transactional guarantee
// of the mongo implementation.
type InMemoryDatabase struct {
	mu       sync.Mutex
	pools    map[string]model.PoolDocument
	accounts map[model.AccountKey]model.AccountDocument
}

func NewInMemory() *InMemoryDatabase {
	return &InMemoryDatabase{
		pools:    make(map[string]model.PoolDocument),
		accounts: make(map[model.AccountKey]model.AccountDocument),
	}
}

func (d *InMemoryDatabase) Ping(_ context.Context) error {
	return nil
}

func (d *InMemoryDatabase) SaveNewPool(_ context.Context, pool *model.PoolDocument) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.pools[pool.PoolID]; ok {
		return &DuplicateKeyError{
			Key:     pool.PoolID,
			Message: "pool already exists",
		}
	}
	d.pools[pool.PoolID] = *pool
	return nil
}

func (d *InMemoryDatabase) GetPool(_ context.Context, poolID string) (*model.PoolDocument, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	pool, ok := d.pools[poolID]
	if !ok {
		return nil, &NotFoundError{
			Key:     poolID,
			Message: "pool not found",
		}
	}
	return &pool, nil
}

func (d *InMemoryDatabase) GetPools(_ context.Context) ([]*model.PoolDocument, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	pools := make([]*model.PoolDocument, 0, len(d.pools))
	for _, pool := range d.pools {
		p := pool
		pools = append(pools, &p)
	}
	return pools, nil
}

func (d *InMemoryDatabase) GetAccount(_ context.Context, poolID, address string) (*model.AccountDocument, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	account, ok := d.accounts[model.AccountKey{PoolID: poolID, Address: address}]
	if !ok {
		return nil, &NotFoundError{
			Key:     poolID + "/" + address,
			Message: "account not found",
		}
	}
	return &account, nil
}

func (d *InMemoryDatabase) CountPoolAccounts(_ context.Context, poolID string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var count int64
	for key := range d.accounts {
		if key.PoolID == poolID {
			count++
		}
	}
	return count, nil
}

func (d *InMemoryDatabase) CommitPoolMutation(
	_ context.Context,
	pool *model.PoolDocument,
	account *model.AccountDocument,
	removeAccount bool,
) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.pools[pool.PoolID]; !ok {
		return &NotFoundError{
			Key:     pool.PoolID,
			Message: "pool not found",
		}
	}
	d.pools[pool.PoolID] = *pool

	if account == nil {
		return nil
	}
	if removeAccount {
		delete(d.accounts, account.ID)
		return nil
	}
	d.accounts[account.ID] = *account
	return nil
}
