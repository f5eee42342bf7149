package model

const AccountCollection = "accounts"

// AccountDocument is the per-participant record within a pool, keyed by
// (pool_id, address). Created implicitly on first deposit and removed by a
// close-out withdrawal once both balances are zero.
type AccountDocument struct {
	ID             AccountKey `bson:"_id"`
	AmountStaked   uint64     `bson:"amount_staked"`
	AmountRewarded uint64     `bson:"amount_rewarded"`
	// LastUpdated is the ledger timestamp of the last accrual applied to
	// this account; monotonically non-decreasing.
	LastUpdated int64 `bson:"last_updated"`
}

type AccountKey struct {
	PoolID  string `bson:"pool_id"`
	Address string `bson:"address"`
}

func NewAccountDocument(poolID, address string) *AccountDocument {
	return &AccountDocument{
		ID: AccountKey{PoolID: poolID, Address: address},
	}
}
