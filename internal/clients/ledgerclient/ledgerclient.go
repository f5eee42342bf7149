package ledgerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/algopool-labs/staking-pool-engine/internal/config"
)

const (
	statusPath   = "/v2/ledger/status"
	paramsPath   = "/v2/ledger/params"
	transferPath = "/v2/transactions/transfer"
	optInPath    = "/v2/transactions/opt-in"
)

type LedgerClient struct {
	httpClient *http.Client
	cfg        *config.LedgerConfig
}

func NewLedgerClient(cfg *config.LedgerConfig) *LedgerClient {
	return &LedgerClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

func (c *LedgerClient) GetLatestTimestamp(ctx context.Context) (int64, error) {
	callForStatus := func() (*statusResponse, error) {
		return sendRequest[struct{}, statusResponse](ctx, c, http.MethodGet, statusPath, nil)
	}

	status, err := clientCallWithRetry(ctx, callForStatus, c.cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to get ledger status: %w", err)
	}
	return status.LatestTimestamp, nil
}

func (c *LedgerClient) GetMinBalanceParams(ctx context.Context) (*MinBalanceParams, error) {
	callForParams := func() (*MinBalanceParams, error) {
		return sendRequest[struct{}, MinBalanceParams](ctx, c, http.MethodGet, paramsPath, nil)
	}

	params, err := clientCallWithRetry(ctx, callForParams, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger params: %w", err)
	}
	return params, nil
}

func (c *LedgerClient) SubmitAssetTransfer(ctx context.Context, assetID, amount uint64, recipient string) (string, error) {
	req := &transferRequest{
		Sender:    c.cfg.EscrowAddress,
		Recipient: recipient,
		AssetID:   assetID,
		Amount:    amount,
	}

	// Submissions are not retried: a transfer that timed out may still have
	// been accepted, and a blind resend could double-pay.
	resp, err := sendRequest[transferRequest, submitResponse](ctx, c, http.MethodPost, transferPath, req)
	if err != nil {
		return "", fmt.Errorf("failed to submit asset transfer: %w", err)
	}

	log.Ctx(ctx).Debug().
		Str("tx_id", resp.TxID).
		Uint64("asset_id", assetID).
		Uint64("amount", amount).
		Str("recipient", recipient).
		Msg("submitted asset transfer")
	return resp.TxID, nil
}

func (c *LedgerClient) SubmitAssetOptIn(ctx context.Context, assetID uint64) (string, error) {
	req := &optInRequest{
		Address: c.cfg.EscrowAddress,
		AssetID: assetID,
	}

	resp, err := sendRequest[optInRequest, submitResponse](ctx, c, http.MethodPost, optInPath, req)
	if err != nil {
		return "", fmt.Errorf("failed to submit asset opt-in: %w", err)
	}
	return resp.TxID, nil
}

func sendRequest[Req any, Resp any](
	ctx context.Context,
	c *LedgerClient,
	method, path string,
	body *Req,
) (*Resp, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.Endpoint+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ledger node returned %d: %s", resp.StatusCode, string(raw))
	}

	var result Resp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

func clientCallWithRetry[T any](
	ctx context.Context,
	call retry.RetryableFuncWithData[*T],
	cfg *config.LedgerConfig,
) (*T, error) {
	result, err := retry.DoWithData(call,
		retry.Context(ctx),
		retry.Attempts(cfg.MaxRetryTimes),
		retry.Delay(cfg.RetryInterval),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Debug().
				Uint("attempt", n+1).
				Uint("max_attempts", cfg.MaxRetryTimes).
				Err(err).
				Msg("failed to call the ledger node, retrying")
		}))
	if err != nil {
		return nil, err
	}
	return result, nil
}
