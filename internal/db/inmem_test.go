package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algopool-labs/staking-pool-engine/internal/db/model"
	"github.com/algopool-labs/staking-pool-engine/testutil"
)

func TestInMemorySaveNewPool(t *testing.T) {
	ctx := context.Background()
	database := NewInMemory()
	pool := testutil.RandomPoolDocument()

	require.NoError(t, database.SaveNewPool(ctx, pool))

	stored, err := database.GetPool(ctx, pool.PoolID)
	require.NoError(t, err)
	require.Equal(t, pool, stored)

	err = database.SaveNewPool(ctx, pool)
	require.True(t, IsDuplicateKeyError(err))
}

func TestInMemoryGetPoolNotFound(t *testing.T) {
	database := NewInMemory()

	_, err := database.GetPool(context.Background(), "missing")
	require.True(t, IsNotFoundError(err))
}

func TestInMemoryCommitPoolMutation(t *testing.T) {
	ctx := context.Background()
	database := NewInMemory()
	pool := testutil.RandomPoolDocument()
	require.NoError(t, database.SaveNewPool(ctx, pool))

	account := testutil.RandomAccountDocument(pool)
	pool.TotalStaked = account.AmountStaked
	require.NoError(t, database.CommitPoolMutation(ctx, pool, account, false))

	stored, err := database.GetAccount(ctx, pool.PoolID, account.ID.Address)
	require.NoError(t, err)
	require.Equal(t, account, stored)

	count, err := database.CountPoolAccounts(ctx, pool.PoolID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	// Remove the account on close-out.
	require.NoError(t, database.CommitPoolMutation(ctx, pool, account, true))
	_, err = database.GetAccount(ctx, pool.PoolID, account.ID.Address)
	require.True(t, IsNotFoundError(err))
}

func TestInMemoryCommitUnknownPoolFails(t *testing.T) {
	database := NewInMemory()

	err := database.CommitPoolMutation(context.Background(), testutil.RandomPoolDocument(), nil, false)
	require.True(t, IsNotFoundError(err))
}

func TestInMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	database := NewInMemory()
	pool := testutil.RandomPoolDocument()
	require.NoError(t, database.SaveNewPool(ctx, pool))

	loaded, err := database.GetPool(ctx, pool.PoolID)
	require.NoError(t, err)
	loaded.TotalStaked = 12345

	// Mutating a loaded document must not leak into the store.
	reloaded, err := database.GetPool(ctx, pool.PoolID)
	require.NoError(t, err)
	require.NotEqual(t, loaded.TotalStaked, reloaded.TotalStaked)
	require.Equal(t, pool.PoolID, reloaded.PoolID)
}

func TestInMemoryGetPools(t *testing.T) {
	ctx := context.Background()
	database := NewInMemory()
	var ids []string
	for range 3 {
		pool := testutil.RandomPoolDocument()
		require.NoError(t, database.SaveNewPool(ctx, pool))
		ids = append(ids, pool.PoolID)
	}

	pools, err := database.GetPools(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 3)
	for _, pool := range pools {
		require.Contains(t, ids, pool.PoolID)
	}
}

func TestAccountKeyIdentity(t *testing.T) {
	account := model.NewAccountDocument("pool-a", "addr-a")
	require.Equal(t, model.AccountKey{PoolID: "pool-a", Address: "addr-a"}, account.ID)
	require.Zero(t, account.AmountStaked)
	require.Zero(t, account.AmountRewarded)
}
