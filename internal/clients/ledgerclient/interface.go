package ledgerclient

import "context"

//go:generate mockery --name=LedgerInterface --output=../../../tests/mocks --outpkg=mocks --filename=mock_ledger_client.go
type LedgerInterface interface {
	// GetLatestTimestamp returns the ledger clock (unix seconds) that drives
	// reward accrual.
	GetLatestTimestamp(ctx context.Context) (int64, error)
	// GetMinBalanceParams returns the node's minimum account balance and
	// minimum fee, used for init's funding check.
	GetMinBalanceParams(ctx context.Context) (*MinBalanceParams, error)
	// SubmitAssetTransfer sends amount units of assetID from the escrow
	// account to recipient and returns the transaction id.
	SubmitAssetTransfer(ctx context.Context, assetID, amount uint64, recipient string) (string, error)
	// SubmitAssetOptIn opts the escrow account into assetID so it can hold
	// and transfer that asset.
	SubmitAssetOptIn(ctx context.Context, assetID uint64) (string, error)
}
