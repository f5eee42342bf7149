package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algopool-labs/staking-pool-engine/internal/db/model"
	"github.com/algopool-labs/staking-pool-engine/internal/types"
)

const testWindowBegin = int64(1_700_000_000)

func accrualPool(rewardsPool, rateBps uint64) *model.PoolDocument {
	return &model.PoolDocument{
		PoolID:               "pool-1",
		Initialized:          true,
		StakedAssetID:        10,
		RewardAssetID:        20,
		BeginTimestamp:       testWindowBegin,
		EndTimestamp:         testWindowBegin + SecondsPerYear,
		TotalRewardsPool:     rewardsPool,
		FixedRateBasisPoints: rateBps,
	}
}

func stakedAccount(amount uint64) *model.AccountDocument {
	account := model.NewAccountDocument("pool-1", "addr-1")
	account.AmountStaked = amount
	return account
}

func TestAccrueRewardsBeforeWindowIsNoop(t *testing.T) {
	pool := accrualPool(1_000_000, 1_000)
	account := stakedAccount(1_000_000)

	err := accrueRewards(pool, account, testWindowBegin-1)
	require.Nil(t, err)

	require.Equal(t, uint64(0), account.AmountRewarded)
	require.Equal(t, int64(0), account.LastUpdated)
	require.Equal(t, int64(0), pool.LastGlobalUpdate)
	require.Equal(t, uint64(1_000_000), pool.TotalRewardsPool)
}

func TestAccrueRewardsFullYearAtTenPercent(t *testing.T) {
	pool := accrualPool(1_000_000, 1_000)
	account := stakedAccount(1_000_000)
	now := pool.EndTimestamp

	err := accrueRewards(pool, account, now)
	require.Nil(t, err)

	// 1_000_000 staked for one year at 1000 bps pays exactly 100_000.
	require.Equal(t, uint64(100_000), account.AmountRewarded)
	require.Equal(t, uint64(900_000), pool.TotalRewardsPool)
	require.Equal(t, now, account.LastUpdated)
	require.Equal(t, now, pool.LastGlobalUpdate)
}

func TestAccrueRewardsIsIdempotentAtSameTimestamp(t *testing.T) {
	pool := accrualPool(1_000_000, 1_000)
	account := stakedAccount(1_000_000)
	now := pool.EndTimestamp

	require.Nil(t, accrueRewards(pool, account, now))
	require.Nil(t, accrueRewards(pool, account, now))

	require.Equal(t, uint64(100_000), account.AmountRewarded)
	require.Equal(t, uint64(900_000), pool.TotalRewardsPool)
}

func TestAccrueRewardsCapsAtWindowEnd(t *testing.T) {
	pool := accrualPool(1_000_000, 1_000)
	account := stakedAccount(1_000_000)
	afterEnd := pool.EndTimestamp + 86_400

	err := accrueRewards(pool, account, afterEnd)
	require.Nil(t, err)
	require.Equal(t, uint64(100_000), account.AmountRewarded)
	require.Equal(t, afterEnd, account.LastUpdated)

	// The account is now past the window end, so further calls change
	// nothing, not even timestamps.
	err = accrueRewards(pool, account, afterEnd+86_400)
	require.Nil(t, err)
	require.Equal(t, uint64(100_000), account.AmountRewarded)
	require.Equal(t, afterEnd, account.LastUpdated)
}

func TestAccrueRewardsStartsFromLastUpdatedInsideWindow(t *testing.T) {
	pool := accrualPool(1_000_000, 1_000)
	account := stakedAccount(1_000_000)
	// Deposited half way through the window.
	account.LastUpdated = testWindowBegin + SecondsPerYear/2

	err := accrueRewards(pool, account, pool.EndTimestamp)
	require.Nil(t, err)
	require.Equal(t, uint64(50_000), account.AmountRewarded)
}

func TestAccrueRewardsTruncatesAnnualisationFirst(t *testing.T) {
	pool := accrualPool(1_000_000, 10_000)
	// One unit staked for just under a year annualises to zero before the
	// rate is applied, so nothing accrues despite a 100% rate.
	account := stakedAccount(1)

	err := accrueRewards(pool, account, pool.EndTimestamp-1)
	require.Nil(t, err)
	require.Equal(t, uint64(0), account.AmountRewarded)
	require.Equal(t, uint64(1_000_000), pool.TotalRewardsPool)
}

func TestAccrueRewardsLargeStakeDoesNotOverflow(t *testing.T) {
	pool := accrualPool(1<<63, 1_000)
	account := stakedAccount(1 << 62) // staked * duration overflows uint64

	err := accrueRewards(pool, account, pool.EndTimestamp)
	require.Nil(t, err)
	require.Equal(t, uint64(1<<62/10), account.AmountRewarded)
}

func TestAccrueRewardsExhaustedPoolAbortsUnchanged(t *testing.T) {
	pool := accrualPool(99_999, 1_000)
	account := stakedAccount(1_000_000)

	err := accrueRewards(pool, account, pool.EndTimestamp)
	require.NotNil(t, err)
	require.Equal(t, types.RewardPoolExhausted, err.ErrorCode)

	// Nothing moved.
	require.Equal(t, uint64(0), account.AmountRewarded)
	require.Equal(t, int64(0), account.LastUpdated)
	require.Equal(t, uint64(99_999), pool.TotalRewardsPool)
	require.Equal(t, int64(0), pool.LastGlobalUpdate)
}

func TestAccrueRewardsZeroDurationAdvancesTimestamps(t *testing.T) {
	pool := accrualPool(1_000_000, 1_000)
	account := stakedAccount(1_000_000)
	account.LastUpdated = testWindowBegin + 100

	err := accrueRewards(pool, account, testWindowBegin+100)
	require.Nil(t, err)
	require.Equal(t, uint64(0), account.AmountRewarded)
	require.Equal(t, testWindowBegin+100, account.LastUpdated)
	require.Equal(t, testWindowBegin+100, pool.LastGlobalUpdate)
}
