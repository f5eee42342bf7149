package services

import (
	"net/http"

	"github.com/algopool-labs/staking-pool-engine/internal/db/model"
	"github.com/algopool-labs/staking-pool-engine/internal/types"
)

// dispense debits the account (and the pool's mirror totals) for a payout of
// assetID and returns the amount actually paid. The amount is clamped to the
// account's balance of that asset, so requesting types.WithdrawAll empties
// the balance and over-asking can never drive it negative.
//
// dispense only mutates documents; the caller submits the ledger transfer
// after the mutation has been committed.
func dispense(
	pool *model.PoolDocument,
	account *model.AccountDocument,
	assetID, requested uint64,
) (uint64, *types.Error) {
	switch assetID {
	case pool.StakedAssetID:
		paid := min(requested, account.AmountStaked)
		account.AmountStaked -= paid
		pool.TotalStaked -= paid
		return paid, nil
	case pool.RewardAssetID:
		paid := min(requested, account.AmountRewarded)
		account.AmountRewarded -= paid
		return paid, nil
	default:
		return 0, types.NewErrorWithMsg(
			http.StatusBadRequest, types.UnsupportedAsset,
			"asset is neither the pool's staked nor reward asset",
		)
	}
}
