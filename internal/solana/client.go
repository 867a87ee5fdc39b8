package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"solpass.app/cloud/internal/metrics"
)

const lamportsPerSOL = 1_000_000_000

// Client is a read-only JSON-RPC client for the balance and history screens.
// Transaction signing and submission happen in the browser through the
// wallet SDK; the backend never holds key material.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("failed to encode rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RPCRequestsTotal.WithLabelValues(method, "transport_error").Inc()
		return fmt.Errorf("rpc request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RPCRequestsTotal.WithLabelValues(method, fmt.Sprintf("http_%d", resp.StatusCode)).Inc()
		return fmt.Errorf("rpc endpoint returned status %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		metrics.RPCRequestsTotal.WithLabelValues(method, "decode_error").Inc()
		return fmt.Errorf("failed to decode rpc response: %w", err)
	}

	if rpcResp.Error != nil {
		metrics.RPCRequestsTotal.WithLabelValues(method, "rpc_error").Inc()
		return fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	metrics.RPCRequestsTotal.WithLabelValues(method, "ok").Inc()

	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("failed to decode rpc result: %w", err)
		}
	}

	return nil
}

// GetBalance returns a wallet's balance in SOL.
func (c *Client) GetBalance(ctx context.Context, address string) (float64, error) {
	var result struct {
		Value uint64 `json:"value"`
	}
	if err := c.call(ctx, "getBalance", []interface{}{address}, &result); err != nil {
		return 0, err
	}
	return float64(result.Value) / lamportsPerSOL, nil
}

// SignatureInfo is one confirmed transaction touching an address, as the
// history screen shows it.
type SignatureInfo struct {
	Signature          string      `json:"signature"`
	Slot               uint64      `json:"slot"`
	BlockTime          *int64      `json:"blockTime"`
	Err                interface{} `json:"err"`
	Memo               *string     `json:"memo"`
	ConfirmationStatus string      `json:"confirmationStatus"`
}

// GetSignatures returns up to limit recent transaction signatures for an
// address, newest first, as the RPC node orders them.
func (c *Client) GetSignatures(ctx context.Context, address string, limit int) ([]SignatureInfo, error) {
	if limit <= 0 {
		limit = 20
	}

	var result []SignatureInfo
	params := []interface{}{address, map[string]interface{}{"limit": limit}}
	if err := c.call(ctx, "getSignaturesForAddress", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}
