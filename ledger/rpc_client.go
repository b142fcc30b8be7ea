package ledger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-kit/log/level"
	"github.com/go-resty/resty/v2"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/types"
)

const (
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"

	defaultPollInterval = time.Second
)

// RpcError is the error object of a JSON-RPC response
type RpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (e *RpcError) Unwrap() error {
	return types.ErrLedger
}

type rpcRequest struct {
	JsonRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	JsonRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RpcError       `json:"error"`
}

type LatestBlockhash struct {
	Blockhash            string `json:"blockhash"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

type SignatureStatus struct {
	Slot               uint64          `json:"slot"`
	Confirmations      *uint64         `json:"confirmations"`
	Err                json.RawMessage `json:"err"`
	ConfirmationStatus string          `json:"confirmationStatus"`
}

// Failed reports whether the transaction executed with an error
func (s *SignatureStatus) Failed() bool {
	return len(s.Err) > 0 && string(s.Err) != "null"
}

// RpcClient talks JSON-RPC to a ledger node
type RpcClient struct {
	endpoint     string
	restyClient  *resty.Client
	PollInterval time.Duration
	requestID    uint64
}

func NewRpcClient(endpoint string) *RpcClient {
	rc := resty.New().
		SetTimeout(time.Second*30).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &RpcClient{
		endpoint:     endpoint,
		restyClient:  rc,
		PollInterval: defaultPollInterval,
	}
}

func (c *RpcClient) Endpoint() string {
	return c.endpoint
}

// GetClient returns the underlying resty client
func (c *RpcClient) GetClient() *resty.Client {
	return c.restyClient
}

func (c *RpcClient) call(ctx context.Context, method string, result interface{}, params ...interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	req := rpcRequest{
		JsonRPC: "2.0",
		ID:      atomic.AddUint64(&c.requestID, 1),
		Method:  method,
		Params:  params,
	}
	response, err := c.restyClient.R().SetContext(ctx).SetBody(req).Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrLedger, method, err)
	}
	if err := handleError(response); err != nil {
		level.Error(global.Logger).Log("msg", "ledger rpc failed", "method", method, "err", err)
		return err
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(response.Body(), &rpcResp); err != nil {
		return fmt.Errorf("%w: %s: malformed response: %v", types.ErrLedger, method, err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("%w: %s: unexpected result: %v", types.ErrLedger, method, err)
	}
	return nil
}

// GetBalance returns the lamports held by the base58 account
func (c *RpcClient) GetBalance(ctx context.Context, account string) (uint64, error) {
	var out struct {
		Value uint64 `json:"value"`
	}
	err := c.call(ctx, "getBalance", &out, account, map[string]string{"commitment": CommitmentConfirmed})
	if err != nil {
		return 0, err
	}
	return out.Value, nil
}

func (c *RpcClient) GetLatestBlockhash(ctx context.Context) (*LatestBlockhash, error) {
	var out struct {
		Value LatestBlockhash `json:"value"`
	}
	err := c.call(ctx, "getLatestBlockhash", &out, map[string]string{"commitment": CommitmentConfirmed})
	if err != nil {
		return nil, err
	}
	if out.Value.Blockhash == "" {
		return nil, fmt.Errorf("%w: empty blockhash", types.ErrLedger)
	}
	return &out.Value, nil
}

func (c *RpcClient) GetBlockHeight(ctx context.Context) (uint64, error) {
	var height uint64
	err := c.call(ctx, "getBlockHeight", &height, map[string]string{"commitment": CommitmentConfirmed})
	return height, err
}

// SendTransaction submits a serialized transaction and returns its signature (tx hash)
func (c *RpcClient) SendTransaction(ctx context.Context, serialized []byte) (string, error) {
	var signature string
	err := c.call(ctx, "sendTransaction", &signature,
		base64.StdEncoding.EncodeToString(serialized),
		map[string]string{"encoding": "base64", "preflightCommitment": CommitmentConfirmed})
	if err != nil {
		return "", err
	}
	return signature, nil
}

// GetSignatureStatus returns nil when the network doesn't know the signature (yet)
func (c *RpcClient) GetSignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error) {
	var out struct {
		Value []*SignatureStatus `json:"value"`
	}
	err := c.call(ctx, "getSignatureStatuses", &out, []string{signature}, map[string]bool{"searchTransactionHistory": true})
	if err != nil {
		return nil, err
	}
	if len(out.Value) == 0 {
		return nil, nil
	}
	return out.Value[0], nil
}

// ConfirmTransaction polls until the transaction reached confirmed commitment.
// Fails when the transaction errored, when its blockhash expired or when ctx is done.
func (c *RpcClient) ConfirmTransaction(ctx context.Context, signature string, lastValidBlockHeight uint64) error {
	interval := c.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := c.GetSignatureStatus(ctx, signature)
		if err != nil && ctx.Err() == nil {
			level.Warn(global.Logger).Log("msg", "signature status poll failed", "tx", signature, "err", err)
		}
		if status != nil {
			if status.Failed() {
				return fmt.Errorf("%w: transaction %s failed: %s", types.ErrLedger, signature, string(status.Err))
			}
			if status.ConfirmationStatus == CommitmentConfirmed || status.ConfirmationStatus == CommitmentFinalized {
				return nil
			}
		} else if lastValidBlockHeight > 0 {
			height, hErr := c.GetBlockHeight(ctx)
			if hErr == nil && height > lastValidBlockHeight {
				return fmt.Errorf("%w: transaction %s expired (block height exceeded)", types.ErrLedger, signature)
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: confirmation of %s timed out: %v", types.ErrLedger, signature, ctx.Err())
		case <-ticker.C:
		}
	}
}
