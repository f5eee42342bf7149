package model

const PoolCollection = "pools"

// PoolDocument is the single global record per pool. Asset ids and the
// reward window are written once at deploy and never change; everything
// else is mutated by the entry points.
type PoolDocument struct {
	PoolID        string `bson:"_id"` // Primary key
	Admin         string `bson:"admin"`
	EscrowAddress string `bson:"escrow_address"`
	Paused        bool   `bson:"paused"`
	Initialized   bool   `bson:"initialized"`

	StakedAssetID  uint64 `bson:"staked_asset_id"`
	RewardAssetID  uint64 `bson:"reward_asset_id"`
	BeginTimestamp int64  `bson:"begin_timestamp"`
	EndTimestamp   int64  `bson:"end_timestamp"`

	TotalRewardsPool     uint64 `bson:"total_rewards_pool"`
	TotalStaked          uint64 `bson:"total_staked"`
	FixedRateBasisPoints uint64 `bson:"fixed_rate_basis_points"`
	LastGlobalUpdate     int64  `bson:"last_global_update"`
}

func NewPoolDocument(
	poolID, admin, escrowAddress string,
	stakedAssetID, rewardAssetID uint64,
	beginTimestamp, endTimestamp int64,
) *PoolDocument {
	return &PoolDocument{
		PoolID:         poolID,
		Admin:          admin,
		EscrowAddress:  escrowAddress,
		StakedAssetID:  stakedAssetID,
		RewardAssetID:  rewardAssetID,
		BeginTimestamp: beginTimestamp,
		EndTimestamp:   endTimestamp,
	}
}
