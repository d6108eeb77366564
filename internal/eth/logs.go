package eth

import (
	"context"
	"math/big"

	"github.com/tidwall/gjson"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/encoding"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
)

type Log struct {
	Address          string   `json:"address"`
	BlockHash        string   `json:"blockHash"`
	BlockNumber      *big.Int `json:"blockNumber"`
	Data             string   `json:"data"`
	LogIndex         uint32   `json:"logIndex"`
	Removed          bool     `json:"removed"`
	Topics           []string `json:"topics"`
	TransactionHash  string   `json:"transactionHash"`
	TransactionIndex uint32   `json:"transactionIndex"`
}

// LogFilter is sent as the single eth_getLogs parameter. Topics entries are
// a hash, nil, or a list of hashes.
type LogFilter struct {
	FromBlock string `json:"fromBlock,omitempty"`
	ToBlock   string `json:"toBlock,omitempty"`
	BlockHash string `json:"blockHash,omitempty"`
	Address   any    `json:"address,omitempty"`
	Topics    []any  `json:"topics,omitempty"`
}

// EthGetLogs returns every log matched by filter. One malformed entry fails
// the whole call.
func (c *Client) EthGetLogs(ctx context.Context, chainID string, filter LogFilter) ([]Log, error) {
	raw, err := c.call(ctx, chainID, "eth_getLogs", filter)
	if err != nil {
		return nil, err
	}
	return parseLogs(gjson.ParseBytes(raw))
}

func parseLogs(res gjson.Result) ([]Log, error) {
	if !res.IsArray() {
		return nil, rpcerr.Parsing(coin.ETH)
	}
	items := res.Array()
	out := make([]Log, 0, len(items))
	for _, item := range items {
		l, ok := parseLog(item)
		if !ok {
			return nil, rpcerr.Parsing(coin.ETH)
		}
		out = append(out, l)
	}
	return out, nil
}

func parseLog(v gjson.Result) (Log, bool) {
	if !v.IsObject() {
		return Log{}, false
	}
	var l Log
	for field, dst := range map[string]*string{
		"address":         &l.Address,
		"blockHash":       &l.BlockHash,
		"data":            &l.Data,
		"transactionHash": &l.TransactionHash,
	} {
		f := v.Get(field)
		if f.Type != gjson.String {
			return Log{}, false
		}
		*dst = f.String()
	}

	bn, err := encoding.HexToUint256(v.Get("blockNumber").String())
	if err != nil {
		return Log{}, false
	}
	l.BlockNumber = bn.ToBig()

	idx, err := encoding.HexToUint64(v.Get("logIndex").String())
	if err != nil || idx > 1<<32-1 {
		return Log{}, false
	}
	l.LogIndex = uint32(idx)

	txIdx, err := encoding.HexToUint64(v.Get("transactionIndex").String())
	if err != nil || txIdx > 1<<32-1 {
		return Log{}, false
	}
	l.TransactionIndex = uint32(txIdx)

	removed := v.Get("removed")
	if removed.Exists() && !removed.IsBool() {
		return Log{}, false
	}
	l.Removed = removed.Bool()

	topics := v.Get("topics")
	if !topics.IsArray() {
		return Log{}, false
	}
	l.Topics = []string{}
	for _, t := range topics.Array() {
		if t.Type != gjson.String {
			return Log{}, false
		}
		l.Topics = append(l.Topics, t.String())
	}
	return l, true
}
