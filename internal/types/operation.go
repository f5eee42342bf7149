package types

type OperationType string

func (o OperationType) String() string {
	return string(o)
}

const (
	OperationDeploy   OperationType = "staking.pool.v1.OperationDeploy"
	OperationInit     OperationType = "staking.pool.v1.OperationInit"
	OperationReward   OperationType = "staking.pool.v1.OperationReward"
	OperationDeposit  OperationType = "staking.pool.v1.OperationDeposit"
	OperationWithdraw OperationType = "staking.pool.v1.OperationWithdraw"
	OperationConfig   OperationType = "staking.pool.v1.OperationConfig"
)

// WithdrawAll is the sentinel amount for "everything available"; the
// dispenser clamps it to the account's balance.
const WithdrawAll = ^uint64(0)

// AssetTransfer describes an asset-movement leg attached to an operation,
// as observed on the ledger. The engine validates the legs, it does not
// build them.
type AssetTransfer struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	AssetID  uint64 `json:"asset_id"`
	Amount   uint64 `json:"amount"`
}

// Payment describes a native-currency funding leg (init's minimum balance).
type Payment struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Amount   uint64 `json:"amount"`
}

type DeployRequest struct {
	StakedAssetID  uint64 `json:"staked_asset_id"`
	RewardAssetID  uint64 `json:"reward_asset_id"`
	BeginTimestamp int64  `json:"begin_timestamp"`
	EndTimestamp   int64  `json:"end_timestamp"`
}

type InitRequest struct {
	PoolID  string  `json:"pool_id"`
	Funding Payment `json:"funding"`
}

type RewardRequest struct {
	PoolID    string        `json:"pool_id"`
	Transfer  AssetTransfer `json:"transfer"`
	FixedRate uint64        `json:"fixed_rate"`
}

type DepositRequest struct {
	PoolID   string        `json:"pool_id"`
	Transfer AssetTransfer `json:"transfer"`
}

type WithdrawRequest struct {
	PoolID    string `json:"pool_id"`
	AssetID   uint64 `json:"asset_id"`
	Amount    uint64 `json:"amount"`
	Recipient string `json:"recipient"`
	// CloseOut removes the caller's participation record; both balances
	// must be zero after the dispense.
	CloseOut bool `json:"close_out"`
}

type ConfigRequest struct {
	PoolID   string `json:"pool_id"`
	Paused   bool   `json:"paused"`
	NewAdmin string `json:"new_admin"`
}

// Operation is the tagged union handed to the boundary dispatcher. Exactly
// one request field matching Type is set.
type Operation struct {
	Type   OperationType `json:"type"`
	Caller string        `json:"caller"`

	Deploy   *DeployRequest   `json:"deploy,omitempty"`
	Init     *InitRequest     `json:"init,omitempty"`
	Reward   *RewardRequest   `json:"reward,omitempty"`
	Deposit  *DepositRequest  `json:"deposit,omitempty"`
	Withdraw *WithdrawRequest `json:"withdraw,omitempty"`
	Config   *ConfigRequest   `json:"config,omitempty"`
}
