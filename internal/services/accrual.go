package services

import (
	"net/http"

	sdkmath "cosmossdk.io/math"

	"github.com/algopool-labs/staking-pool-engine/internal/db/model"
	"github.com/algopool-labs/staking-pool-engine/internal/types"
)

// SecondsPerYear is the accrual year: 365.25 days.
const SecondsPerYear = 31_557_600

// BasisPointsDivisor converts a fixed rate in basis points to a fraction.
const BasisPointsDivisor = 10_000

// accrueRewards applies the linear reward formula to account, moving the
// accrued amount out of the pool's reward balance. Timestamps only advance
// when accrual actually runs:
//
//   - before the window opens (now < begin) nothing happens, so a deposit
//     made during funding accrues from begin, not from the deposit time;
//   - once the account has been updated past the window end, nothing
//     happens either, so repeat calls after end are no-ops.
//
// The reward amount truncates twice, annualisation first, rate second:
//
//	floor(floor(staked * duration / SecondsPerYear) * rate / 10000)
//
// Intermediate products run on big integers since staked * duration does
// not fit in 64 bits for large stakes.
func accrueRewards(pool *model.PoolDocument, account *model.AccountDocument, now int64) *types.Error {
	if now < pool.BeginTimestamp {
		return nil
	}
	if account.LastUpdated > pool.EndTimestamp {
		return nil
	}

	effectiveEnd := min(now, pool.EndTimestamp)
	effectiveStart := max(account.LastUpdated, pool.BeginTimestamp)

	var rewards uint64
	if duration := effectiveEnd - effectiveStart; duration > 0 {
		accrued := sdkmath.NewIntFromUint64(account.AmountStaked).
			MulRaw(duration).
			QuoRaw(SecondsPerYear).
			Mul(sdkmath.NewIntFromUint64(pool.FixedRateBasisPoints)).
			QuoRaw(BasisPointsDivisor)
		if !accrued.IsUint64() || accrued.GT(sdkmath.NewIntFromUint64(pool.TotalRewardsPool)) {
			return types.NewErrorWithMsg(
				http.StatusConflict, types.RewardPoolExhausted,
				"accrued rewards exceed the pool's remaining reward balance",
			)
		}
		rewards = accrued.Uint64()
	}

	pool.TotalRewardsPool -= rewards
	account.AmountRewarded += rewards
	account.LastUpdated = now
	pool.LastGlobalUpdate = now
	return nil
}
