// Package rpc posts JSON-RPC payloads to chain endpoints and classifies the
// outcome into the provider error families of internal/rpcerr.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/tidwall/gjson"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/constants"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
)

const maxResponseBytes = 16 << 20

const (
	headerEthMethod   = "X-Eth-Method"
	headerEthBlock    = "X-Eth-Block"
	headerEthGetBlock = "X-eth-get-block"
)

// Caller is what call builders need from a transport.
type Caller interface {
	Call(ctx context.Context, endpoint *url.URL, c coin.Type, method string, params ...any) (json.RawMessage, error)
	Request(ctx context.Context, endpoint *url.URL, payload []byte, c coin.Type) (json.RawMessage, error)
}

// Endpoints resolves the active RPC URL of a chain, nil when unknown.
type Endpoints interface {
	GetNetworkURL(chainID string, c coin.Type) *url.URL
}

type Transport struct {
	client      *http.Client
	servicesKey string
}

type Option func(*Transport)

func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithTimeout bounds every request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.client.Timeout = d
		}
	}
}

// WithServicesKey sets the key sent to wallet proxy endpoints only.
func WithServicesKey(key string) Option {
	return func(t *Transport) { t.servicesKey = strings.TrimSpace(key) }
}

func NewTransport(opts ...Option) *Transport {
	t := &Transport{client: &http.Client{Timeout: constants.DefaultRequestTimeout}}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Call builds a JSON-RPC request and sends it.
func (t *Transport) Call(ctx context.Context, endpoint *url.URL, c coin.Type, method string, params ...any) (json.RawMessage, error) {
	payload, err := NewRequest(method, params...).Marshal()
	if err != nil {
		return nil, rpcerr.Internal(c)
	}
	return t.Request(ctx, endpoint, payload, c)
}

// Request posts payload to endpoint and returns the "result" member.
// Transport failures and non-2xx statuses are internal errors, bodies that are
// not a JSON-RPC response are parsing errors, and error objects map through
// rpcerr.FromCode. Requests are never retried.
func (t *Transport) Request(ctx context.Context, endpoint *url.URL, payload []byte, c coin.Type) (json.RawMessage, error) {
	method := gjson.GetBytes(payload, "method").String()
	start := time.Now()

	result, err := t.do(ctx, endpoint, payload, c, method)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		if code, _, ok := rpcerr.Details(err); ok {
			outcome = codeLabel(code)
		}
	}
	metricRequest(c.String(), method, outcome, time.Since(start).Seconds())
	return result, err
}

func (t *Transport) do(ctx context.Context, endpoint *url.URL, payload []byte, c coin.Type, method string) (json.RawMessage, error) {
	if endpoint == nil {
		return nil, rpcerr.InvalidParams(c)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, rpcerr.Internal(c)
	}
	req.Header.Set("Content-Type", "application/json")
	t.setHeaders(req, endpoint, payload, c, method)

	resp, err := t.client.Do(req)
	if err != nil {
		log.Warn("rpc: request failed", "coin", c.String(), "method", method, "host", endpoint.Host, "error", err)
		return nil, rpcerr.Internal(c)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Warn("rpc: read body failed", "coin", c.String(), "method", method, "error", err)
		return nil, rpcerr.Internal(c)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("rpc: non-2xx response", "coin", c.String(), "method", method, "status", resp.StatusCode)
		return nil, rpcerr.Internal(c)
	}
	return ParseResponse(body, c)
}

// ParseResponse extracts the result of a JSON-RPC response body.
func ParseResponse(body []byte, c coin.Type) (json.RawMessage, error) {
	if !gjson.ValidBytes(body) {
		return nil, rpcerr.Parsing(c)
	}
	var rr Response
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, rpcerr.Parsing(c)
	}
	if rr.Error != nil {
		err := rpcerr.FromCode(c, rr.Error.Code, rr.Error.Message)
		if data := revertData(rr.Error.Data); data != "" {
			return nil, &RevertError{err: err, Data: data}
		}
		return nil, err
	}
	if rr.Result == nil {
		return nil, rpcerr.Parsing(c)
	}
	return rr.Result, nil
}

func (t *Transport) setHeaders(req *http.Request, endpoint *url.URL, payload []byte, c coin.Type, method string) {
	if t.servicesKey != "" && IsProxyEndpoint(endpoint) {
		req.Header.Set(constants.ServicesKeyHeader, t.servicesKey)
	}
	if c != coin.ETH || method == "" {
		return
	}
	req.Header.Set(headerEthMethod, method)
	switch method {
	case "eth_blockNumber":
		req.Header.Set(headerEthBlock, "true")
	case "eth_getBlockByNumber":
		params := gjson.GetBytes(payload, "params").Array()
		if len(params) >= 2 {
			req.Header.Set(headerEthGetBlock, params[0].String()+","+params[1].Raw)
		}
	}
}

// IsProxyEndpoint reports an https endpoint served by the wallet proxy.
func IsProxyEndpoint(u *url.URL) bool {
	if u == nil || u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return strings.HasSuffix(host, constants.BraveProxyHostSuffix)
}

func codeLabel(code int) string {
	switch code {
	case -32603:
		return "internal"
	case -32700:
		return "parsing"
	case -32602:
		return "invalid_params"
	default:
		return "provider"
	}
}

// DecodeString unmarshals a string result.
func DecodeString(raw json.RawMessage, c coin.Type) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", rpcerr.Parsing(c)
	}
	return s, nil
}

// RevertError is a provider error whose error object carried revert data,
// as nodes report for eth_call reverts such as EIP-3668 OffchainLookup.
type RevertError struct {
	err  error
	Data string
}

func (e *RevertError) Error() string { return e.err.Error() }

func (e *RevertError) Unwrap() error { return e.err }

// RevertData returns the 0x-prefixed revert data carried by err, if any.
func RevertData(err error) (string, bool) {
	var re *RevertError
	if errors.As(err, &re) {
		return re.Data, true
	}
	return "", false
}

// revertData accepts "0x.." and the {"data":"0x.."} shape some nodes nest.
func revertData(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	v := gjson.ParseBytes(raw)
	if v.IsObject() {
		v = v.Get("data")
	}
	s := v.String()
	if v.Type != gjson.String || !strings.HasPrefix(s, "0x") || len(s) < 10 {
		return ""
	}
	return s
}

// IsParsing reports an error produced for a malformed body.
func IsParsing(err error) bool {
	code, _, ok := rpcerr.Details(err)
	return ok && code == -32700
}

var _ Caller = (*Transport)(nil)
