package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algopool-labs/staking-pool-engine/internal/clients/ledgerclient"
	"github.com/algopool-labs/staking-pool-engine/internal/config"
	"github.com/algopool-labs/staking-pool-engine/internal/db"
	"github.com/algopool-labs/staking-pool-engine/internal/queue"
	"github.com/algopool-labs/staking-pool-engine/internal/types"
)

const (
	testAdmin  = "admin-addr"
	testEscrow = "escrow-addr"
	testStaker = "staker-addr"

	testStakedAsset = uint64(10)
	testRewardAsset = uint64(20)
)

type fakeTransfer struct {
	assetID   uint64
	amount    uint64
	recipient string
}

// fakeLedger is a hand-rolled ledger with a settable clock.
type fakeLedger struct {
	now         int64
	minBalance  uint64
	minFee      uint64
	optIns      []uint64
	transfers   []fakeTransfer
	transferErr error
}

func (f *fakeLedger) GetLatestTimestamp(_ context.Context) (int64, error) {
	return f.now, nil
}

func (f *fakeLedger) GetMinBalanceParams(_ context.Context) (*ledgerclient.MinBalanceParams, error) {
	return &ledgerclient.MinBalanceParams{
		MinBalance: f.minBalance,
		MinFee:     f.minFee,
	}, nil
}

func (f *fakeLedger) SubmitAssetTransfer(
	_ context.Context, assetID, amount uint64, recipient string,
) (string, error) {
	if f.transferErr != nil {
		return "", f.transferErr
	}
	f.transfers = append(f.transfers, fakeTransfer{assetID, amount, recipient})
	return "tx-id", nil
}

func (f *fakeLedger) SubmitAssetOptIn(_ context.Context, assetID uint64) (string, error) {
	f.optIns = append(f.optIns, assetID)
	return "tx-id", nil
}

func newTestService(t *testing.T) (*Service, *db.InMemoryDatabase, *fakeLedger) {
	t.Helper()
	cfg := &config.Config{
		Ledger: config.LedgerConfig{
			Endpoint:      "http://localhost:1",
			EscrowAddress: testEscrow,
		},
	}
	database := db.NewInMemory()
	ledger := &fakeLedger{
		now:        testWindowBegin - 1_000,
		minBalance: 100_000,
		minFee:     1_000,
	}
	return NewService(cfg, database, ledger, queue.NoopPublisher{}), database, ledger
}

// deployAndInit walks a pool through deploy, init and reward funding so
// participant tests start from an active pool.
func deployAndInit(t *testing.T, s *Service, ledger *fakeLedger, rewards, rateBps uint64) string {
	t.Helper()
	ctx := context.Background()

	pool, err := s.Deploy(ctx, testAdmin, &types.DeployRequest{
		StakedAssetID:  testStakedAsset,
		RewardAssetID:  testRewardAsset,
		BeginTimestamp: testWindowBegin,
		EndTimestamp:   testWindowBegin + SecondsPerYear,
	})
	require.Nil(t, err)

	require.Nil(t, s.Init(ctx, testAdmin, &types.InitRequest{
		PoolID: pool.PoolID,
		Funding: types.Payment{
			Sender:   testAdmin,
			Receiver: testEscrow,
			Amount:   ledger.minBalance*3 + ledger.minFee*2,
		},
	}))
	require.Nil(t, s.Reward(ctx, testAdmin, &types.RewardRequest{
		PoolID: pool.PoolID,
		Transfer: types.AssetTransfer{
			Sender:   testAdmin,
			Receiver: testEscrow,
			AssetID:  testRewardAsset,
			Amount:   rewards,
		},
		FixedRate: rateBps,
	}))
	return pool.PoolID
}

func deposit(t *testing.T, s *Service, poolID string, amount uint64) {
	t.Helper()
	require.Nil(t, s.Deposit(context.Background(), testStaker, &types.DepositRequest{
		PoolID: poolID,
		Transfer: types.AssetTransfer{
			Sender:   testStaker,
			Receiver: testEscrow,
			AssetID:  testStakedAsset,
			Amount:   amount,
		},
	}))
}

func TestDeployRejectsInvalidWindow(t *testing.T) {
	s, _, ledger := newTestService(t)
	ctx := context.Background()

	t.Run("end not after begin", func(t *testing.T) {
		_, err := s.Deploy(ctx, testAdmin, &types.DeployRequest{
			StakedAssetID:  testStakedAsset,
			RewardAssetID:  testRewardAsset,
			BeginTimestamp: testWindowBegin,
			EndTimestamp:   testWindowBegin,
		})
		require.NotNil(t, err)
		require.Equal(t, types.InvalidWindow, err.ErrorCode)
	})

	t.Run("begin not in the future", func(t *testing.T) {
		_, err := s.Deploy(ctx, testAdmin, &types.DeployRequest{
			StakedAssetID:  testStakedAsset,
			RewardAssetID:  testRewardAsset,
			BeginTimestamp: ledger.now,
			EndTimestamp:   ledger.now + SecondsPerYear,
		})
		require.NotNil(t, err)
		require.Equal(t, types.InvalidWindow, err.ErrorCode)
	})
}

func TestInitGates(t *testing.T) {
	s, _, ledger := newTestService(t)
	ctx := context.Background()

	pool, deployErr := s.Deploy(ctx, testAdmin, &types.DeployRequest{
		StakedAssetID:  testStakedAsset,
		RewardAssetID:  testRewardAsset,
		BeginTimestamp: testWindowBegin,
		EndTimestamp:   testWindowBegin + SecondsPerYear,
	})
	require.Nil(t, deployErr)

	funding := types.Payment{
		Sender:   testAdmin,
		Receiver: testEscrow,
		Amount:   ledger.minBalance*3 + ledger.minFee*2,
	}

	t.Run("non-admin caller", func(t *testing.T) {
		err := s.Init(ctx, testStaker, &types.InitRequest{PoolID: pool.PoolID, Funding: funding})
		require.NotNil(t, err)
		require.Equal(t, types.Unauthorized, err.ErrorCode)
	})

	t.Run("short funding", func(t *testing.T) {
		short := funding
		short.Amount--
		err := s.Init(ctx, testAdmin, &types.InitRequest{PoolID: pool.PoolID, Funding: short})
		require.NotNil(t, err)
		require.Equal(t, types.InsufficientFunding, err.ErrorCode)
	})

	t.Run("success opts into both assets", func(t *testing.T) {
		require.Nil(t, s.Init(ctx, testAdmin, &types.InitRequest{PoolID: pool.PoolID, Funding: funding}))
		require.Equal(t, []uint64{testStakedAsset, testRewardAsset}, ledger.optIns)
	})

	t.Run("replay", func(t *testing.T) {
		err := s.Init(ctx, testAdmin, &types.InitRequest{PoolID: pool.PoolID, Funding: funding})
		require.NotNil(t, err)
		require.Equal(t, types.AlreadyInitialized, err.ErrorCode)
	})

	t.Run("unknown pool", func(t *testing.T) {
		err := s.Init(ctx, testAdmin, &types.InitRequest{PoolID: "missing", Funding: funding})
		require.NotNil(t, err)
		require.Equal(t, types.NotFound, err.ErrorCode)
	})
}

func TestRewardGates(t *testing.T) {
	s, _, ledger := newTestService(t)
	ctx := context.Background()
	poolID := deployAndInit(t, s, ledger, 1_000_000, 1_000)

	t.Run("non-admin caller", func(t *testing.T) {
		err := s.Reward(ctx, testStaker, &types.RewardRequest{
			PoolID: poolID,
			Transfer: types.AssetTransfer{
				Sender: testStaker, Receiver: testEscrow, AssetID: testRewardAsset, Amount: 1,
			},
		})
		require.NotNil(t, err)
		require.Equal(t, types.Unauthorized, err.ErrorCode)
	})

	t.Run("wrong asset", func(t *testing.T) {
		err := s.Reward(ctx, testAdmin, &types.RewardRequest{
			PoolID: poolID,
			Transfer: types.AssetTransfer{
				Sender: testAdmin, Receiver: testEscrow, AssetID: testStakedAsset, Amount: 1,
			},
		})
		require.NotNil(t, err)
		require.Equal(t, types.UnsupportedAsset, err.ErrorCode)
	})
}

func TestDepositGates(t *testing.T) {
	s, _, ledger := newTestService(t)
	ctx := context.Background()
	poolID := deployAndInit(t, s, ledger, 1_000_000, 1_000)

	t.Run("wrong sender", func(t *testing.T) {
		err := s.Deposit(ctx, testStaker, &types.DepositRequest{
			PoolID: poolID,
			Transfer: types.AssetTransfer{
				Sender: "someone-else", Receiver: testEscrow, AssetID: testStakedAsset, Amount: 1,
			},
		})
		require.NotNil(t, err)
		require.Equal(t, types.ValidationError, err.ErrorCode)
	})

	t.Run("wrong asset", func(t *testing.T) {
		err := s.Deposit(ctx, testStaker, &types.DepositRequest{
			PoolID: poolID,
			Transfer: types.AssetTransfer{
				Sender: testStaker, Receiver: testEscrow, AssetID: testRewardAsset, Amount: 1,
			},
		})
		require.NotNil(t, err)
		require.Equal(t, types.UnsupportedAsset, err.ErrorCode)
	})

	t.Run("paused pool", func(t *testing.T) {
		require.Nil(t, s.Configure(ctx, testAdmin, &types.ConfigRequest{PoolID: poolID, Paused: true}))
		err := s.Deposit(ctx, testStaker, &types.DepositRequest{
			PoolID: poolID,
			Transfer: types.AssetTransfer{
				Sender: testStaker, Receiver: testEscrow, AssetID: testStakedAsset, Amount: 1,
			},
		})
		require.NotNil(t, err)
		require.Equal(t, types.PoolPaused, err.ErrorCode)
		require.Nil(t, s.Configure(ctx, testAdmin, &types.ConfigRequest{PoolID: poolID, Paused: false}))
	})
}

func TestSequentialDepositsAccrueOnPriorStake(t *testing.T) {
	s, database, ledger := newTestService(t)
	ctx := context.Background()
	poolID := deployAndInit(t, s, ledger, 1_000_000, 1_000)

	deposit(t, s, poolID, 1_000_000)

	// Half a year later the first deposit has earned 5% on its own.
	ledger.now = testWindowBegin + SecondsPerYear/2
	deposit(t, s, poolID, 500_000)

	account, err := database.GetAccount(ctx, poolID, testStaker)
	require.NoError(t, err)
	require.Equal(t, uint64(1_500_000), account.AmountStaked)
	require.Equal(t, uint64(50_000), account.AmountRewarded)
	require.Equal(t, ledger.now, account.LastUpdated)

	pool, err := database.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, uint64(1_500_000), pool.TotalStaked)
	require.Equal(t, uint64(950_000), pool.TotalRewardsPool)
}

func TestWithdrawLifecycleAndConservation(t *testing.T) {
	s, database, ledger := newTestService(t)
	ctx := context.Background()

	const funded = uint64(1_000_000)
	poolID := deployAndInit(t, s, ledger, funded, 1_000)
	deposit(t, s, poolID, 1_000_000)

	ledger.now = testWindowBegin + SecondsPerYear

	paid, err := s.Withdraw(ctx, testStaker, &types.WithdrawRequest{
		PoolID:  poolID,
		AssetID: testRewardAsset,
		Amount:  types.WithdrawAll,
	})
	require.Nil(t, err)
	require.Equal(t, uint64(100_000), paid)
	require.Equal(t,
		fakeTransfer{assetID: testRewardAsset, amount: 100_000, recipient: testStaker},
		ledger.transfers[len(ledger.transfers)-1],
	)

	pool, getErr := database.GetPool(ctx, poolID)
	require.NoError(t, getErr)
	// Everything funded is either still in the pool or paid out.
	require.Equal(t, funded, pool.TotalRewardsPool+paid)

	// Close out: pull the full stake and drop the account record.
	paid, err = s.Withdraw(ctx, testStaker, &types.WithdrawRequest{
		PoolID:   poolID,
		AssetID:  testStakedAsset,
		Amount:   types.WithdrawAll,
		CloseOut: true,
	})
	require.Nil(t, err)
	require.Equal(t, uint64(1_000_000), paid)

	_, getErr = database.GetAccount(ctx, poolID, testStaker)
	require.True(t, db.IsNotFoundError(getErr))

	pool, getErr = database.GetPool(ctx, poolID)
	require.NoError(t, getErr)
	require.Equal(t, uint64(0), pool.TotalStaked)
}

func TestDepositWithdrawRoundTrip(t *testing.T) {
	s, database, ledger := newTestService(t)
	ctx := context.Background()
	poolID := deployAndInit(t, s, ledger, 1_000_000, 1_000)

	deposit(t, s, poolID, 1_000)

	// No time has passed, so the principal comes straight back out and no
	// rewards are involved.
	paid, err := s.Withdraw(ctx, testStaker, &types.WithdrawRequest{
		PoolID:  poolID,
		AssetID: testStakedAsset,
		Amount:  1_000,
	})
	require.Nil(t, err)
	require.Equal(t, uint64(1_000), paid)

	account, getErr := database.GetAccount(ctx, poolID, testStaker)
	require.NoError(t, getErr)
	require.Equal(t, uint64(0), account.AmountStaked)
	require.Equal(t, uint64(0), account.AmountRewarded)

	pool, getErr := database.GetPool(ctx, poolID)
	require.NoError(t, getErr)
	require.Equal(t, uint64(0), pool.TotalStaked)
	require.Equal(t, uint64(1_000_000), pool.TotalRewardsPool)
}

func TestWithdrawCloseOutWithBalanceFails(t *testing.T) {
	s, database, ledger := newTestService(t)
	ctx := context.Background()
	poolID := deployAndInit(t, s, ledger, 1_000_000, 1_000)
	deposit(t, s, poolID, 1_000)

	_, err := s.Withdraw(ctx, testStaker, &types.WithdrawRequest{
		PoolID:   poolID,
		AssetID:  testStakedAsset,
		Amount:   500,
		CloseOut: true,
	})
	require.NotNil(t, err)
	require.Equal(t, types.NonZeroBalanceOnClose, err.ErrorCode)

	// Nothing was committed and nothing was paid out.
	account, getErr := database.GetAccount(ctx, poolID, testStaker)
	require.NoError(t, getErr)
	require.Equal(t, uint64(1_000), account.AmountStaked)
	require.Empty(t, ledger.transfers)
}

func TestWithdrawUnknownAccount(t *testing.T) {
	s, _, ledger := newTestService(t)
	poolID := deployAndInit(t, s, ledger, 1_000_000, 1_000)

	_, err := s.Withdraw(context.Background(), testStaker, &types.WithdrawRequest{
		PoolID:  poolID,
		AssetID: testStakedAsset,
		Amount:  1,
	})
	require.NotNil(t, err)
	require.Equal(t, types.NotFound, err.ErrorCode)
}

func TestWithdrawPayoutFailureLeavesDebitCommitted(t *testing.T) {
	s, database, ledger := newTestService(t)
	ctx := context.Background()
	poolID := deployAndInit(t, s, ledger, 1_000_000, 1_000)
	deposit(t, s, poolID, 1_000)

	ledger.transferErr = errors.New("node unavailable")
	_, err := s.Withdraw(ctx, testStaker, &types.WithdrawRequest{
		PoolID:  poolID,
		AssetID: testStakedAsset,
		Amount:  400,
	})
	require.NotNil(t, err)
	require.Equal(t, types.InternalServiceError, err.ErrorCode)

	// The debit stands: a retried submission must not pay twice.
	account, getErr := database.GetAccount(ctx, poolID, testStaker)
	require.NoError(t, getErr)
	require.Equal(t, uint64(600), account.AmountStaked)
}

func TestConfigureHandsOverAdmin(t *testing.T) {
	s, database, ledger := newTestService(t)
	ctx := context.Background()
	poolID := deployAndInit(t, s, ledger, 1_000_000, 1_000)

	require.Nil(t, s.Configure(ctx, testAdmin, &types.ConfigRequest{
		PoolID:   poolID,
		NewAdmin: "new-admin",
	}))

	pool, err := database.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, "new-admin", pool.Admin)

	// The old admin lost the role.
	configErr := s.Configure(ctx, testAdmin, &types.ConfigRequest{PoolID: poolID})
	require.NotNil(t, configErr)
	require.Equal(t, types.Unauthorized, configErr.ErrorCode)
}

func TestProcessOperationDispatch(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	t.Run("deploy", func(t *testing.T) {
		result, err := s.ProcessOperation(ctx, &types.Operation{
			Type:   types.OperationDeploy,
			Caller: testAdmin,
			Deploy: &types.DeployRequest{
				StakedAssetID:  testStakedAsset,
				RewardAssetID:  testRewardAsset,
				BeginTimestamp: testWindowBegin,
				EndTimestamp:   testWindowBegin + SecondsPerYear,
			},
		})
		require.Nil(t, err)
		require.NotEmpty(t, result.PoolID)
	})

	t.Run("missing payload", func(t *testing.T) {
		_, err := s.ProcessOperation(ctx, &types.Operation{
			Type:   types.OperationDeposit,
			Caller: testStaker,
		})
		require.NotNil(t, err)
		require.Equal(t, types.ValidationError, err.ErrorCode)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := s.ProcessOperation(ctx, &types.Operation{
			Type:   "staking.pool.v1.OperationUnknown",
			Caller: testStaker,
		})
		require.NotNil(t, err)
		require.Equal(t, types.ValidationError, err.ErrorCode)
	})
}
