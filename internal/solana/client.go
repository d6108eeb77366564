// Package solana builds Solana JSON-RPC calls and decodes their results.
package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/encoding"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpc"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
)

const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"

	// accountNotCreated is the node message for a token account that does not exist yet.
	accountNotCreated = "could not find account"
)

type Client struct {
	caller    rpc.Caller
	endpoints rpc.Endpoints
}

func NewClient(caller rpc.Caller, endpoints rpc.Endpoints) *Client {
	return &Client{caller: caller, endpoints: endpoints}
}

func (c *Client) Coin() coin.Type { return coin.SOL }

func (c *Client) endpoint(chainID string) (*url.URL, error) {
	u := c.endpoints.GetNetworkURL(chainID, coin.SOL)
	if u == nil {
		return nil, rpcerr.InvalidParams(coin.SOL)
	}
	return u, nil
}

func (c *Client) call(ctx context.Context, chainID, method string, params ...any) (gjson.Result, error) {
	u, err := c.endpoint(chainID)
	if err != nil {
		return gjson.Result{}, err
	}
	raw, err := c.caller.Call(ctx, u, coin.SOL, method, params...)
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
	return c.caller.Request(ctx, u, payload, coin.SOL)
}

func commitment(level string) map[string]any {
	return map[string]any{"commitment": level}
}

func parsingError() error { return rpcerr.Parsing(coin.SOL) }

// uintField accepts only non-negative JSON integers.
func uintField(v gjson.Result) (uint64, bool) {
	if v.Type != gjson.Number {
		return 0, false
	}
	n, err := strconv.ParseUint(v.Raw, 10, 64)
	return n, err == nil
}

func validPubkey(s string) bool {
	return encoding.IsBase58EncodedSolanaPubkey(s)
}

// GetSolanaBalance returns the lamports held by pubkey.
func (c *Client) GetSolanaBalance(ctx context.Context, chainID, pubkey string) (uint64, error) {
	if !validPubkey(pubkey) {
		return 0, rpcerr.InvalidParams(coin.SOL)
	}
	res, err := c.call(ctx, chainID, "getBalance", pubkey, commitment(CommitmentConfirmed))
	if err != nil {
		return 0, err
	}
	v, ok := uintField(res.Get("value"))
	if !ok {
		return 0, parsingError()
	}
	return v, nil
}

// GetBalance is GetSolanaBalance as a decimal string.
func (c *Client) GetBalance(ctx context.Context, chainID, address string) (string, error) {
	v, err := c.GetSolanaBalance(ctx, chainID, address)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(v, 10), nil
}

type TokenAmount struct {
	Amount         string `json:"amount"`
	Decimals       uint8  `json:"decimals"`
	UIAmountString string `json:"uiAmountString"`
}

func parseTokenAmount(v gjson.Result) (TokenAmount, bool) {
	amount := v.Get("amount")
	ui := v.Get("uiAmountString")
	dec, ok := uintField(v.Get("decimals"))
	if amount.Type != gjson.String || ui.Type != gjson.String || !ok || dec > 255 {
		return TokenAmount{}, false
	}
	return TokenAmount{Amount: amount.String(), Decimals: uint8(dec), UIAmountString: ui.String()}, true
}

// GetSPLTokenAccountBalance reads the associated token account of wallet for
// mint. An account that was never created has a zero balance.
func (c *Client) GetSPLTokenAccountBalance(ctx context.Context, chainID, wallet, mint string) (TokenAmount, error) {
	if _, err := c.endpoint(chainID); err != nil {
		return TokenAmount{}, err
	}
	w, werr := ParsePublicKey(wallet)
	m, merr := ParsePublicKey(mint)
	if werr != nil || merr != nil {
		return TokenAmount{}, rpcerr.InvalidParams(coin.SOL)
	}
	ata, err := AssociatedTokenAccount(w, m)
	if err != nil {
		return TokenAmount{}, rpcerr.Internal(coin.SOL)
	}

	res, err := c.call(ctx, chainID, "getTokenAccountBalance", ata.String(), commitment(CommitmentConfirmed))
	if err != nil {
		code, msg, _ := rpcerr.Details(err)
		if code == int(rpcerr.SolanaInvalidParams) && strings.Contains(msg, accountNotCreated) {
			return TokenAmount{Amount: "0", Decimals: 0, UIAmountString: "0"}, nil
		}
		return TokenAmount{}, err
	}
	amt, ok := parseTokenAmount(res.Get("value"))
	if !ok {
		return TokenAmount{}, parsingError()
	}
	return amt, nil
}

type SPLTokenBalance struct {
	Mint    string      `json:"mint"`
	Account string      `json:"account"`
	Amount  TokenAmount `json:"amount"`
}

// GetSPLTokenBalances lists token accounts of owner under the token and
// token-2022 programs.
func (c *Client) GetSPLTokenBalances(ctx context.Context, chainID, owner string) ([]SPLTokenBalance, error) {
	if !validPubkey(owner) {
		return nil, rpcerr.InvalidParams(coin.SOL)
	}
	out := []SPLTokenBalance{}
	for _, program := range []string{TokenProgramID, Token2022ProgramID} {
		res, err := c.call(ctx, chainID, "getTokenAccountsByOwner", owner,
			map[string]any{"programId": program},
			map[string]any{"encoding": "jsonParsed", "commitment": CommitmentConfirmed})
		if err != nil {
			return nil, err
		}
		value := res.Get("value")
		if !value.IsArray() {
			return nil, parsingError()
		}
		for _, item := range value.Array() {
			info := item.Get("account.data.parsed.info")
			amt, ok := parseTokenAmount(info.Get("tokenAmount"))
			mint := info.Get("mint").String()
			if !ok || !validPubkey(mint) || !validPubkey(item.Get("pubkey").String()) {
				return nil, parsingError()
			}
			out = append(out, SPLTokenBalance{Mint: mint, Account: item.Get("pubkey").String(), Amount: amt})
		}
	}
	return out, nil
}

type LatestBlockhash struct {
	Blockhash            string `json:"blockhash"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

func (c *Client) GetLatestBlockhash(ctx context.Context, chainID string) (LatestBlockhash, error) {
	res, err := c.call(ctx, chainID, "getLatestBlockhash", commitment(CommitmentConfirmed))
	if err != nil {
		return LatestBlockhash{}, err
	}
	hash := res.Get("value.blockhash")
	height, ok := uintField(res.Get("value.lastValidBlockHeight"))
	if hash.Type != gjson.String || hash.String() == "" || !ok {
		return LatestBlockhash{}, parsingError()
	}
	return LatestBlockhash{Blockhash: hash.String(), LastValidBlockHeight: height}, nil
}

func (c *Client) IsBlockhashValid(ctx context.Context, chainID, blockhash string) (bool, error) {
	if _, ok := encoding.Base58Decode(blockhash, 32); !ok {
		return false, rpcerr.InvalidParams(coin.SOL)
	}
	res, err := c.call(ctx, chainID, "isBlockhashValid", blockhash, commitment(CommitmentProcessed))
	if err != nil {
		return false, err
	}
	v := res.Get("value")
	if !v.IsBool() {
		return false, parsingError()
	}
	return v.Bool(), nil
}

func (c *Client) GetBlockHeight(ctx context.Context, chainID string) (uint64, error) {
	res, err := c.call(ctx, chainID, "getBlockHeight", commitment(CommitmentConfirmed))
	if err != nil {
		return 0, err
	}
	v, ok := uintField(res)
	if !ok {
		return 0, parsingError()
	}
	return v, nil
}

// GetFeeForMessage prices a base64 encoded message in lamports.
func (c *Client) GetFeeForMessage(ctx context.Context, chainID, message string) (uint64, error) {
	if !encoding.IsValidBase64(message) {
		return 0, rpcerr.InvalidParams(coin.SOL)
	}
	res, err := c.call(ctx, chainID, "getFeeForMessage", message, commitment(CommitmentConfirmed))
	if err != nil {
		return 0, err
	}
	v, ok := uintField(res.Get("value"))
	if !ok {
		return 0, parsingError()
	}
	return v, nil
}

type SignatureStatus struct {
	Slot               uint64          `json:"slot"`
	Confirmations      *uint64         `json:"confirmations"`
	Err                json.RawMessage `json:"err,omitempty"`
	ConfirmationStatus string          `json:"confirmationStatus"`
}

// GetSignatureStatuses keeps input order; unknown signatures are nil.
func (c *Client) GetSignatureStatuses(ctx context.Context, chainID string, signatures []string) ([]*SignatureStatus, error) {
	for _, s := range signatures {
		if _, ok := encoding.Base58Decode(s, 64); !ok {
			return nil, rpcerr.InvalidParams(coin.SOL)
		}
	}
	res, err := c.call(ctx, chainID, "getSignatureStatuses", signatures,
		map[string]any{"searchTransactionHistory": true})
	if err != nil {
		return nil, err
	}
	value := res.Get("value")
	if !value.IsArray() || len(value.Array()) != len(signatures) {
		return nil, parsingError()
	}
	out := make([]*SignatureStatus, 0, len(signatures))
	for _, item := range value.Array() {
		if item.Type == gjson.Null {
			out = append(out, nil)
			continue
		}
		slot, ok := uintField(item.Get("slot"))
		if !ok {
			return nil, parsingError()
		}
		st := &SignatureStatus{Slot: slot, ConfirmationStatus: item.Get("confirmationStatus").String()}
		if conf := item.Get("confirmations"); conf.Type != gjson.Null && conf.Exists() {
			n, ok := uintField(conf)
			if !ok {
				return nil, parsingError()
			}
			st.Confirmations = &n
		}
		if e := item.Get("err"); e.Exists() && e.Type != gjson.Null {
			st.Err = json.RawMessage(e.Raw)
		}
		out = append(out, st)
	}
	return out, nil
}

type SendOptions struct {
	MaxRetries          *uint64
	PreflightCommitment string
	SkipPreflight       *bool
}

func (o SendOptions) params() map[string]any {
	p := map[string]any{"encoding": "base64"}
	if o.MaxRetries != nil {
		p["maxRetries"] = *o.MaxRetries
	}
	if o.PreflightCommitment != "" {
		p["preflightCommitment"] = o.PreflightCommitment
	}
	if o.SkipPreflight != nil {
		p["skipPreflight"] = *o.SkipPreflight
	}
	return p
}

// SendTransaction submits a signed base64 transaction and returns its signature.
func (c *Client) SendTransaction(ctx context.Context, chainID, signedTx string, opts SendOptions) (string, error) {
	if !encoding.IsValidBase64(signedTx) {
		return "", rpcerr.InvalidParams(coin.SOL)
	}
	res, err := c.call(ctx, chainID, "sendTransaction", signedTx, opts.params())
	if err != nil {
		return "", err
	}
	if res.Type != gjson.String || res.String() == "" {
		return "", parsingError()
	}
	return res.String(), nil
}

type SimulationResult struct {
	UnitsConsumed uint64          `json:"unitsConsumed"`
	Logs          []string        `json:"logs"`
	Err           json.RawMessage `json:"err,omitempty"`
}

// SimulateTransaction runs a base64 transaction without signature checks
// against a fresh blockhash.
func (c *Client) SimulateTransaction(ctx context.Context, chainID, tx string) (SimulationResult, error) {
	if !encoding.IsValidBase64(tx) {
		return SimulationResult{}, rpcerr.InvalidParams(coin.SOL)
	}
	res, err := c.call(ctx, chainID, "simulateTransaction", tx, map[string]any{
		"encoding":               "base64",
		"commitment":             CommitmentConfirmed,
		"sigVerify":              false,
		"replaceRecentBlockhash": true,
	})
	if err != nil {
		return SimulationResult{}, err
	}
	value := res.Get("value")
	units, ok := uintField(value.Get("unitsConsumed"))
	if !value.IsObject() || !ok {
		return SimulationResult{}, parsingError()
	}
	out := SimulationResult{UnitsConsumed: units, Logs: []string{}}
	for _, l := range value.Get("logs").Array() {
		out.Logs = append(out.Logs, l.String())
	}
	if e := value.Get("err"); e.Exists() && e.Type != gjson.Null {
		out.Err = json.RawMessage(e.Raw)
	}
	return out, nil
}

type PrioritizationFee struct {
	Slot              uint64 `json:"slot"`
	PrioritizationFee uint64 `json:"prioritizationFee"`
}

func (c *Client) GetRecentPrioritizationFees(ctx context.Context, chainID string, accounts []string) ([]PrioritizationFee, error) {
	for _, a := range accounts {
		if !validPubkey(a) {
			return nil, rpcerr.InvalidParams(coin.SOL)
		}
	}
	if accounts == nil {
		accounts = []string{}
	}
	res, err := c.call(ctx, chainID, "getRecentPrioritizationFees", accounts)
	if err != nil {
		return nil, err
	}
	if !res.IsArray() {
		return nil, parsingError()
	}
	out := make([]PrioritizationFee, 0, len(res.Array()))
	for _, item := range res.Array() {
		slot, ok1 := uintField(item.Get("slot"))
		fee, ok2 := uintField(item.Get("prioritizationFee"))
		if !ok1 || !ok2 {
			return nil, parsingError()
		}
		out = append(out, PrioritizationFee{Slot: slot, PrioritizationFee: fee})
	}
	return out, nil
}

func decodeBase64Data(v gjson.Result) ([]byte, bool) {
	arr := v.Array()
	if !v.IsArray() || len(arr) != 2 || arr[1].String() != "base64" {
		return nil, false
	}
	b, err := base64.StdEncoding.DecodeString(arr[0].String())
	if err != nil {
		return nil, false
	}
	return b, true
}
