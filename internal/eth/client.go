// Package eth builds Ethereum JSON-RPC calls and decodes their results.
package eth

import (
	"context"
	"encoding/json"
	"math/big"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/encoding"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpc"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
)

const BlockLatest = "latest"

// Client issues ETH requests against the active endpoint of a chain.
type Client struct {
	caller    rpc.Caller
	endpoints rpc.Endpoints
}

func NewClient(caller rpc.Caller, endpoints rpc.Endpoints) *Client {
	return &Client{caller: caller, endpoints: endpoints}
}

func (c *Client) Coin() coin.Type { return coin.ETH }

func (c *Client) endpoint(chainID string) (*url.URL, error) {
	if strings.TrimSpace(chainID) == "" {
		return nil, rpcerr.InvalidParams(coin.ETH)
	}
	u := c.endpoints.GetNetworkURL(chainID, coin.ETH)
	if u == nil {
		return nil, rpcerr.InvalidParams(coin.ETH)
	}
	return u, nil
}

func (c *Client) call(ctx context.Context, chainID, method string, params ...any) (json.RawMessage, error) {
	u, err := c.endpoint(chainID)
	if err != nil {
		return nil, err
	}
	return c.caller.Call(ctx, u, coin.ETH, method, params...)
}

func (c *Client) callString(ctx context.Context, chainID, method string, params ...any) (string, error) {
	raw, err := c.call(ctx, chainID, method, params...)
	if err != nil {
		return "", err
	}
	return rpc.DecodeString(raw, coin.ETH)
}

func (c *Client) callQuantity(ctx context.Context, chainID, method string, params ...any) (*big.Int, error) {
	s, err := c.callString(ctx, chainID, method, params...)
	if err != nil {
		return nil, err
	}
	v, err := encoding.HexToUint256(s)
	if err != nil {
		return nil, rpcerr.Parsing(coin.ETH)
	}
	return v.ToBig(), nil
}

// Request forwards a raw JSON-RPC payload to the chain's endpoint.
func (c *Client) Request(ctx context.Context, chainID string, payload []byte) (json.RawMessage, error) {
	u, err := c.endpoint(chainID)
	if err != nil {
		return nil, err
	}
	return c.caller.Request(ctx, u, payload, coin.ETH)
}

// GetBalance returns the wei balance of address as a hex quantity.
func (c *Client) GetBalance(ctx context.Context, chainID, address string) (string, error) {
	if !encoding.IsValidEthAddress(address) {
		return "", rpcerr.InvalidParams(coin.ETH)
	}
	s, err := c.callString(ctx, chainID, "eth_getBalance", address, BlockLatest)
	if err != nil {
		return "", err
	}
	if _, err := encoding.HexToUint256(s); err != nil {
		return "", rpcerr.Parsing(coin.ETH)
	}
	return s, nil
}

func (c *Client) GetBlockNumber(ctx context.Context, chainID string) (*big.Int, error) {
	return c.callQuantity(ctx, chainID, "eth_blockNumber")
}

// IsEip1559 reports whether the latest block carries a base fee.
func (c *Client) IsEip1559(ctx context.Context, chainID string) (bool, error) {
	raw, err := c.call(ctx, chainID, "eth_getBlockByNumber", BlockLatest, false)
	if err != nil {
		return false, err
	}
	blk := gjson.ParseBytes(raw)
	if !blk.IsObject() {
		return false, rpcerr.Parsing(coin.ETH)
	}
	return blk.Get("baseFeePerGas").String() != "", nil
}

type FeeHistory struct {
	BaseFeePerGas []string   `json:"baseFeePerGas"`
	GasUsedRatio  []float64  `json:"gasUsedRatio"`
	OldestBlock   string     `json:"oldestBlock"`
	Reward        [][]string `json:"reward"`
}

// GetFeeHistory reads the last 40 blocks with the 20/50/80 reward percentiles.
func (c *Client) GetFeeHistory(ctx context.Context, chainID string) (FeeHistory, error) {
	raw, err := c.call(ctx, chainID, "eth_feeHistory", "0x28", BlockLatest, []float64{20, 50, 80})
	if err != nil {
		return FeeHistory{}, err
	}
	res := gjson.ParseBytes(raw)
	if !res.Get("baseFeePerGas").IsArray() || !res.Get("gasUsedRatio").IsArray() || res.Get("oldestBlock").Type != gjson.String {
		return FeeHistory{}, rpcerr.Parsing(coin.ETH)
	}
	var out FeeHistory
	if err := json.Unmarshal(raw, &out); err != nil {
		return FeeHistory{}, rpcerr.Parsing(coin.ETH)
	}
	if out.Reward == nil {
		out.Reward = [][]string{}
	}
	return out, nil
}

func (c *Client) GetCode(ctx context.Context, chainID, address string) (string, error) {
	if !encoding.IsValidEthAddress(address) {
		return "", rpcerr.InvalidParams(coin.ETH)
	}
	return c.callString(ctx, chainID, "eth_getCode", address, BlockLatest)
}

// GetTransactionCount returns the nonce of address at the latest block.
func (c *Client) GetTransactionCount(ctx context.Context, chainID, address string) (*big.Int, error) {
	if !encoding.IsValidEthAddress(address) {
		return nil, rpcerr.InvalidParams(coin.ETH)
	}
	return c.callQuantity(ctx, chainID, "eth_getTransactionCount", address, BlockLatest)
}

type Receipt struct {
	TransactionHash   string `json:"transactionHash"`
	TransactionIndex  string `json:"transactionIndex"`
	BlockHash         string `json:"blockHash"`
	BlockNumber       string `json:"blockNumber"`
	From              string `json:"from"`
	To                string `json:"to"`
	CumulativeGasUsed string `json:"cumulativeGasUsed"`
	GasUsed           string `json:"gasUsed"`
	EffectiveGasPrice string `json:"effectiveGasPrice"`
	ContractAddress   string `json:"contractAddress"`
	LogsBloom         string `json:"logsBloom"`
	Status            bool   `json:"status"`
	Logs              []Log  `json:"logs"`
}

// GetTransactionReceipt returns nil without error while the transaction is
// still pending.
func (c *Client) GetTransactionReceipt(ctx context.Context, chainID, txHash string) (*Receipt, error) {
	if !encoding.IsValidHexString(txHash) || len(txHash) != 66 {
		return nil, rpcerr.InvalidParams(coin.ETH)
	}
	raw, err := c.call(ctx, chainID, "eth_getTransactionReceipt", txHash)
	if err != nil {
		return nil, err
	}
	res := gjson.ParseBytes(raw)
	if res.Type == gjson.Null {
		return nil, nil
	}
	if !res.IsObject() || res.Get("transactionHash").String() == "" {
		return nil, rpcerr.Parsing(coin.ETH)
	}
	r := &Receipt{
		TransactionHash:   res.Get("transactionHash").String(),
		TransactionIndex:  res.Get("transactionIndex").String(),
		BlockHash:         res.Get("blockHash").String(),
		BlockNumber:       res.Get("blockNumber").String(),
		From:              res.Get("from").String(),
		To:                res.Get("to").String(),
		CumulativeGasUsed: res.Get("cumulativeGasUsed").String(),
		GasUsed:           res.Get("gasUsed").String(),
		EffectiveGasPrice: res.Get("effectiveGasPrice").String(),
		ContractAddress:   res.Get("contractAddress").String(),
		LogsBloom:         res.Get("logsBloom").String(),
		Status:            res.Get("status").String() == "0x1",
	}
	logs, err := parseLogs(res.Get("logs"))
	if err != nil {
		return nil, err
	}
	r.Logs = logs
	return r, nil
}

// SendRawTransaction broadcasts a signed transaction and returns its hash.
func (c *Client) SendRawTransaction(ctx context.Context, chainID, signedTx string) (string, error) {
	if !encoding.IsValidHexString(signedTx) || len(signedTx) <= 2 {
		return "", rpcerr.InvalidParams(coin.ETH)
	}
	return c.callString(ctx, chainID, "eth_sendRawTransaction", signedTx)
}

func (c *Client) EstimateGas(ctx context.Context, chainID string, msg rpc.CallObject) (string, error) {
	return c.callString(ctx, chainID, "eth_estimateGas", msg)
}

func (c *Client) GasPrice(ctx context.Context, chainID string) (string, error) {
	return c.callString(ctx, chainID, "eth_gasPrice")
}

// Call runs eth_call against block and returns the hex encoded return data.
func (c *Client) Call(ctx context.Context, chainID string, msg rpc.CallObject, block string) (string, error) {
	if block == "" {
		block = BlockLatest
	}
	s, err := c.callString(ctx, chainID, "eth_call", msg, block)
	if err != nil {
		return "", err
	}
	if !encoding.IsValidHexString(s) {
		return "", rpcerr.Parsing(coin.ETH)
	}
	return s, nil
}

// contractCall sends data to contract at the latest block and returns the raw
// return bytes.
func (c *Client) contractCall(ctx context.Context, chainID, contract, data string) ([]byte, error) {
	s, err := c.Call(ctx, chainID, callTo(contract, data), BlockLatest)
	if err != nil {
		return nil, err
	}
	b, err := encoding.HexToBytes(s)
	if err != nil {
		return nil, rpcerr.Parsing(coin.ETH)
	}
	return b, nil
}

func callTo(contract, data string) rpc.CallObject {
	return rpc.CallObject{To: contract, Data: data}
}
