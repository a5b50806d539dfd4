package authority

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/mr-tron/base58"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// SPL token mint account layout offsets.
const (
	mintAccountLen = 82

	mintAuthorityTagOffset    = 0
	mintAuthorityKeyOffset    = 4
	freezeAuthorityTagOffset  = 46
	freezeAuthorityKeyOffset  = 50
	authorityKeyLen           = 32
	coptionSome               = 1
)

// MintAuthorities is the on-chain authority state of a token mint.
// A nil authority means it has been revoked.
type MintAuthorities struct {
	MintAuthority   *string
	FreezeAuthority *string
}

// MintRevoked reports whether the mint authority is gone.
func (m *MintAuthorities) MintRevoked() bool { return m.MintAuthority == nil }

// FreezeRevoked reports whether the freeze authority is gone.
func (m *MintAuthorities) FreezeRevoked() bool { return m.FreezeAuthority == nil }

// Checker reads mint authority state over Solana JSON-RPC.
type Checker interface {
	GetMintAuthorities(ctx context.Context, tokenMint string) (*MintAuthorities, error)
}

// RPCChecker implements Checker using HTTP JSON-RPC 2.0 with retries
// and exponential backoff.
type RPCChecker struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
}

// CheckerOption configures RPCChecker.
type CheckerOption func(*RPCChecker)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) CheckerOption {
	return func(c *RPCChecker) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) CheckerOption {
	return func(c *RPCChecker) {
		c.maxRetries = n
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) CheckerOption {
	return func(c *RPCChecker) {
		c.client = client
	}
}

// NewRPCChecker creates a new RPC-backed authority checker.
func NewRPCChecker(endpoint string, opts ...CheckerOption) *RPCChecker {
	c := &RPCChecker{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Checker = (*RPCChecker)(nil)

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

type getAccountInfoResult struct {
	Value *struct {
		Data  []string `json:"data"` // [base64 payload, encoding]
		Owner string   `json:"owner"`
	} `json:"value"`
}

// GetMintAuthorities fetches the mint account and decodes its authority
// fields from the SPL token mint layout.
func (c *RPCChecker) GetMintAuthorities(ctx context.Context, tokenMint string) (*MintAuthorities, error) {
	params := []interface{}{
		tokenMint,
		map[string]interface{}{"encoding": "base64"},
	}

	var result getAccountInfoResult
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}

	if result.Value == nil {
		return nil, fmt.Errorf("mint account %s not found", tokenMint)
	}
	if len(result.Value.Data) == 0 {
		return nil, fmt.Errorf("mint account %s has no data", tokenMint)
	}

	raw, err := base64.StdEncoding.DecodeString(result.Value.Data[0])
	if err != nil {
		return nil, fmt.Errorf("decode mint account data: %w", err)
	}

	return parseMintAccount(raw)
}

// parseMintAccount decodes the COption<Pubkey> authority fields.
func parseMintAccount(raw []byte) (*MintAuthorities, error) {
	if len(raw) < mintAccountLen {
		return nil, fmt.Errorf("mint account data too short: %d bytes", len(raw))
	}

	auth := &MintAuthorities{}

	if binary.LittleEndian.Uint32(raw[mintAuthorityTagOffset:]) == coptionSome {
		key := base58.Encode(raw[mintAuthorityKeyOffset : mintAuthorityKeyOffset+authorityKeyLen])
		auth.MintAuthority = &key
	}
	if binary.LittleEndian.Uint32(raw[freezeAuthorityTagOffset:]) == coptionSome {
		key := base58.Encode(raw[freezeAuthorityKeyOffset : freezeAuthorityKeyOffset+authorityKeyLen])
		auth.FreezeAuthority = &key
	}

	return auth, nil
}

// call performs a JSON-RPC call with retries and exponential backoff.
func (c *RPCChecker) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqID := c.requestID.Add(1)
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			// RPC errors are not retried
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
