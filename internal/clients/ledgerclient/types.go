package ledgerclient

// MinBalanceParams carries the node parameters that size init's funding
// requirement: minBalance*(assets+1) + minFee*assets.
type MinBalanceParams struct {
	MinBalance uint64 `json:"min_balance"`
	MinFee     uint64 `json:"min_fee"`
}

type statusResponse struct {
	LatestTimestamp int64 `json:"latest_timestamp"`
}

type transferRequest struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	AssetID   uint64 `json:"asset_id"`
	Amount    uint64 `json:"amount"`
}

type optInRequest struct {
	Address string `json:"address"`
	AssetID uint64 `json:"asset_id"`
}

type submitResponse struct {
	TxID string `json:"tx_id"`
}
