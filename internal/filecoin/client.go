// Package filecoin builds Lotus JSON-RPC calls and decodes their results.
package filecoin

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpc"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
)

// DefaultSearchLimit is how many epochs StateSearchMsgLimited looks back.
const DefaultSearchLimit = 2880

type Client struct {
	caller    rpc.Caller
	endpoints rpc.Endpoints
}

func NewClient(caller rpc.Caller, endpoints rpc.Endpoints) *Client {
	return &Client{caller: caller, endpoints: endpoints}
}

func (c *Client) Coin() coin.Type { return coin.FIL }

func (c *Client) endpoint(chainID string) (*url.URL, error) {
	u := c.endpoints.GetNetworkURL(chainID, coin.FIL)
	if u == nil {
		return nil, rpcerr.InvalidParams(coin.FIL)
	}
	return u, nil
}

func (c *Client) call(ctx context.Context, chainID, method string, params ...any) (gjson.Result, error) {
	u, err := c.endpoint(chainID)
	if err != nil {
		return gjson.Result{}, err
	}
	raw, err := c.caller.Call(ctx, u, coin.FIL, method, params...)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.ParseBytes(raw), nil
}

func (c *Client) Request(ctx context.Context, chainID string, payload []byte) (json.RawMessage, error) {
	u, err := c.endpoint(chainID)
	if err != nil {
		return nil, err
	}
	return c.caller.Request(ctx, u, payload, coin.FIL)
}

func parsingError() error { return rpcerr.Parsing(coin.FIL) }

// IsValidAddress checks the network prefix, protocol and payload alphabet of
// a textual Filecoin address.
func IsValidAddress(addr string) bool {
	if len(addr) < 3 || (addr[0] != 'f' && addr[0] != 't') {
		return false
	}
	payload := addr[2:]
	switch addr[1] {
	case '0':
		_, err := strconv.ParseUint(payload, 10, 64)
		return err == nil
	case '4':
		// delegated addresses carry a decimal namespace before 'f'
		ns, rest, ok := strings.Cut(payload, "f")
		if !ok || !isDecimal(ns) {
			return false
		}
		return isBase32(rest)
	case '1', '2', '3':
		return isBase32(payload)
	}
	return false
}

func isBase32(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z') && !(r >= '2' && r <= '7') {
			return false
		}
	}
	return true
}

// GetBalance returns the attoFIL balance of address as a decimal string.
func (c *Client) GetBalance(ctx context.Context, chainID, address string) (string, error) {
	if !IsValidAddress(address) {
		return "", rpcerr.InvalidParams(coin.FIL)
	}
	res, err := c.call(ctx, chainID, "Filecoin.WalletBalance", address)
	if err != nil {
		return "", err
	}
	if res.Type != gjson.String {
		return "", parsingError()
	}
	if !isDecimal(res.String()) {
		return "", parsingError()
	}
	return res.String(), nil
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func uintField(v gjson.Result) (uint64, bool) {
	if v.Type != gjson.Number {
		return 0, false
	}
	n, err := strconv.ParseUint(v.Raw, 10, 64)
	return n, err == nil
}

func intField(v gjson.Result) (int64, bool) {
	if v.Type != gjson.Number {
		return 0, false
	}
	n, err := strconv.ParseInt(v.Raw, 10, 64)
	return n, err == nil
}

// GetChainHead returns the height of the current head tipset.
func (c *Client) GetChainHead(ctx context.Context, chainID string) (uint64, error) {
	res, err := c.call(ctx, chainID, "Filecoin.ChainHead")
	if err != nil {
		return 0, err
	}
	h, ok := uintField(res.Get("Height"))
	if !ok {
		return 0, parsingError()
	}
	return h, nil
}

// GetTransactionCount returns the next mpool nonce. An address the chain has
// never seen has nonce 0.
func (c *Client) GetTransactionCount(ctx context.Context, chainID, address string) (uint64, error) {
	if !IsValidAddress(address) {
		return 0, rpcerr.InvalidParams(coin.FIL)
	}
	res, err := c.call(ctx, chainID, "Filecoin.MpoolGetNonce", address)
	if err != nil {
		if code, ok := rpcerr.CodeOf[rpcerr.FilecoinProviderError](err); ok && code == rpcerr.FilecoinActorNotFound {
			return 0, nil
		}
		return 0, err
	}
	n, ok := uintField(res)
	if !ok {
		return 0, parsingError()
	}
	return n, nil
}

// Message is the unsigned message shape Lotus expects.
type Message struct {
	Version    uint64 `json:"Version"`
	To         string `json:"To"`
	From       string `json:"From"`
	Nonce      uint64 `json:"Nonce"`
	Value      string `json:"Value"`
	GasLimit   int64  `json:"GasLimit"`
	GasFeeCap  string `json:"GasFeeCap"`
	GasPremium string `json:"GasPremium"`
	Method     uint64 `json:"Method"`
	Params     string `json:"Params"`
}

type GasEstimate struct {
	GasPremium string `json:"gasPremium"`
	GasFeeCap  string `json:"gasFeeCap"`
	GasLimit   int64  `json:"gasLimit"`
}

// EstimateGas fills gas fields of msg through GasEstimateMessageGas. maxFee
// is attoFIL, "0" leaves the node default.
func (c *Client) EstimateGas(ctx context.Context, chainID string, msg Message, maxFee string) (GasEstimate, error) {
	if !IsValidAddress(msg.From) || !IsValidAddress(msg.To) {
		return GasEstimate{}, rpcerr.InvalidParams(coin.FIL)
	}
	for _, p := range []*string{&msg.Value, &msg.GasFeeCap, &msg.GasPremium} {
		if *p == "" {
			*p = "0"
		}
	}
	if maxFee == "" {
		maxFee = "0"
	}
	res, err := c.call(ctx, chainID, "Filecoin.GasEstimateMessageGas", msg, map[string]any{"MaxFee": maxFee}, []any{})
	if err != nil {
		return GasEstimate{}, err
	}
	premium := res.Get("GasPremium")
	feeCap := res.Get("GasFeeCap")
	limit, ok := intField(res.Get("GasLimit"))
	if premium.Type != gjson.String || feeCap.Type != gjson.String || !ok {
		return GasEstimate{}, parsingError()
	}
	return GasEstimate{GasPremium: premium.String(), GasFeeCap: feeCap.String(), GasLimit: limit}, nil
}

// GetMessageStatus returns the receipt exit code of the message with cid.
func (c *Client) GetMessageStatus(ctx context.Context, chainID, cid string, limit uint64) (int64, error) {
	cid = strings.TrimSpace(cid)
	if cid == "" {
		return -1, rpcerr.InvalidParams(coin.FIL)
	}
	if limit == 0 {
		limit = DefaultSearchLimit
	}
	res, err := c.call(ctx, chainID, "Filecoin.StateSearchMsgLimited", map[string]string{"/": cid}, limit)
	if err != nil {
		return -1, err
	}
	code, ok := intField(res.Get("Receipt.ExitCode"))
	if !ok {
		return -1, parsingError()
	}
	return code, nil
}

// SendTransaction pushes a signed message given as its JSON form and
// returns the message cid.
func (c *Client) SendTransaction(ctx context.Context, chainID, signedTx string) (string, error) {
	if !gjson.Valid(signedTx) || !gjson.Get(signedTx, "Message").IsObject() || !gjson.Get(signedTx, "Signature").IsObject() {
		return "", rpcerr.InvalidParams(coin.FIL)
	}
	res, err := c.call(ctx, chainID, "Filecoin.MpoolPush", json.RawMessage(signedTx))
	if err != nil {
		return "", err
	}
	cid := res.Map()["/"].String()
	if cid == "" {
		return "", parsingError()
	}
	return cid, nil
}
