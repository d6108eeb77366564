package solana

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
)

// AccountInfo is an account as returned with base64 data encoding. Data is
// already decoded.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       []byte `json:"data"`
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}

// ProgramAccount pairs an account with its address.
type ProgramAccount struct {
	Pubkey  string      `json:"pubkey"`
	Account AccountInfo `json:"account"`
}

// Filter narrows getProgramAccounts. Set either Memcmp or DataSize.
type Filter struct {
	Memcmp   *Memcmp `json:"memcmp,omitempty"`
	DataSize *uint64 `json:"dataSize,omitempty"`
}

// Memcmp matches base58 Bytes at Offset of the account data.
type Memcmp struct {
	Offset uint64 `json:"offset"`
	Bytes  string `json:"bytes"`
}

func MemcmpFilter(offset uint64, b PublicKey) Filter {
	return Filter{Memcmp: &Memcmp{Offset: offset, Bytes: b.String()}}
}

func DataSizeFilter(n uint64) Filter {
	return Filter{DataSize: &n}
}

func parseAccountInfo(v gjson.Result) (*AccountInfo, bool) {
	if !v.IsObject() {
		return nil, false
	}
	lamports, ok := uintField(v.Get("lamports"))
	if !ok {
		return nil, false
	}
	owner := v.Get("owner").String()
	if !validPubkey(owner) {
		return nil, false
	}
	exec := v.Get("executable")
	if !exec.IsBool() {
		return nil, false
	}
	rent, ok := uintField(v.Get("rentEpoch"))
	if !ok {
		// rentEpoch u64::MAX is sometimes serialized as a float
		f := v.Get("rentEpoch")
		if f.Type != gjson.Number || f.Float() < 0 {
			return nil, false
		}
		rent = f.Uint()
	}
	data, ok := decodeBase64Data(v.Get("data"))
	if !ok {
		return nil, false
	}
	return &AccountInfo{
		Lamports:   lamports,
		Owner:      owner,
		Data:       data,
		Executable: exec.Bool(),
		RentEpoch:  rent,
	}, true
}

var base64Encoding = map[string]any{"encoding": "base64", "commitment": CommitmentConfirmed}

// GetAccountInfo returns nil without error when the account does not exist.
func (c *Client) GetAccountInfo(ctx context.Context, chainID, pubkey string) (*AccountInfo, error) {
	if !validPubkey(pubkey) {
		return nil, rpcerr.InvalidParams(coin.SOL)
	}
	res, err := c.call(ctx, chainID, "getAccountInfo", pubkey, base64Encoding)
	if err != nil {
		return nil, err
	}
	value := res.Get("value")
	if !value.Exists() {
		return nil, parsingError()
	}
	if value.Type == gjson.Null {
		return nil, nil
	}
	info, ok := parseAccountInfo(value)
	if !ok {
		return nil, parsingError()
	}
	return info, nil
}

// GetMultipleAccountsInfo keeps input order; missing accounts are nil.
func (c *Client) GetMultipleAccountsInfo(ctx context.Context, chainID string, pubkeys []string) ([]*AccountInfo, error) {
	for _, p := range pubkeys {
		if !validPubkey(p) {
			return nil, rpcerr.InvalidParams(coin.SOL)
		}
	}
	res, err := c.call(ctx, chainID, "getMultipleAccounts", pubkeys, base64Encoding)
	if err != nil {
		return nil, err
	}
	value := res.Get("value")
	if !value.IsArray() || len(value.Array()) != len(pubkeys) {
		return nil, parsingError()
	}
	out := make([]*AccountInfo, 0, len(pubkeys))
	for _, item := range value.Array() {
		if item.Type == gjson.Null {
			out = append(out, nil)
			continue
		}
		info, ok := parseAccountInfo(item)
		if !ok {
			return nil, parsingError()
		}
		out = append(out, info)
	}
	return out, nil
}

func (c *Client) GetProgramAccounts(ctx context.Context, chainID, program string, filters ...Filter) ([]ProgramAccount, error) {
	if !validPubkey(program) {
		return nil, rpcerr.InvalidParams(coin.SOL)
	}
	cfg := map[string]any{"encoding": "base64", "commitment": CommitmentConfirmed}
	if len(filters) > 0 {
		cfg["filters"] = filters
	}
	res, err := c.call(ctx, chainID, "getProgramAccounts", program, cfg)
	if err != nil {
		return nil, err
	}
	if !res.IsArray() {
		return nil, parsingError()
	}
	out := make([]ProgramAccount, 0, len(res.Array()))
	for _, item := range res.Array() {
		pk := item.Get("pubkey").String()
		info, ok := parseAccountInfo(item.Get("account"))
		if !ok || !validPubkey(pk) {
			return nil, parsingError()
		}
		out = append(out, ProgramAccount{Pubkey: pk, Account: *info})
	}
	return out, nil
}
