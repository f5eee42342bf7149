package testutil

import (
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/algopool-labs/staking-pool-engine/internal/db/model"
)

// RandomAddress returns a ledger-address shaped random string.
func RandomAddress() string {
	return gofakeit.LetterN(58)
}

// RandomPoolDocument returns an initialized, unpaused pool with a random
// asset pair and a one-year reward window. Tests override fields as needed.
func RandomPoolDocument() *model.PoolDocument {
	begin := int64(gofakeit.Number(1_600_000_000, 1_700_000_000))
	return &model.PoolDocument{
		PoolID:               uuid.NewString(),
		Admin:                RandomAddress(),
		EscrowAddress:        RandomAddress(),
		Initialized:          true,
		StakedAssetID:        uint64(gofakeit.Number(1, 1_000_000)),
		RewardAssetID:        uint64(gofakeit.Number(1_000_001, 2_000_000)),
		BeginTimestamp:       begin,
		EndTimestamp:         begin + 31_557_600,
		TotalRewardsPool:     uint64(gofakeit.Number(1_000_000, 100_000_000)),
		FixedRateBasisPoints: uint64(gofakeit.Number(1, 10_000)),
	}
}

// RandomAccountDocument returns an account in pool with a random stake.
func RandomAccountDocument(pool *model.PoolDocument) *model.AccountDocument {
	return &model.AccountDocument{
		ID: model.AccountKey{
			PoolID:  pool.PoolID,
			Address: RandomAddress(),
		},
		AmountStaked: uint64(gofakeit.Number(1, 1_000_000_000)),
		LastUpdated:  pool.BeginTimestamp,
	}
}
