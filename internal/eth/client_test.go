package eth

import (
	"context"
	"math/big"
	"net/url"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/encoding"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpc"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpc/rpctest"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
)

const (
	chainID  = "0x1"
	contract = "0x0d8775f648430679a709e98d2b0cb6250d2887ef"
	owner    = "0x4e02f254184E904300e0775E4b8eeCB1a1329Ed2"
)

type staticEndpoints map[string]*url.URL

func (s staticEndpoints) GetNetworkURL(chainID string, c coin.Type) *url.URL {
	if c != coin.ETH {
		return nil
	}
	return s[chainID]
}

func newClient(t *testing.T) (*Client, *rpctest.Server) {
	t.Helper()
	srv := rpctest.New(t)
	return NewClient(rpc.NewTransport(), staticEndpoints{chainID: srv.Endpoint()}), srv
}

func abiHex(t *testing.T, types []string, values ...any) string {
	t.Helper()
	args, err := encoding.Arguments(types...)
	require.NoError(t, err)
	b, err := args.Pack(values...)
	require.NoError(t, err)
	return encoding.ToHex(b)
}

func requireEthCode(t *testing.T, err error, want rpcerr.ProviderError) {
	t.Helper()
	code, ok := rpcerr.CodeOf[rpcerr.ProviderError](err)
	require.True(t, ok, "error %v", err)
	assert.Equal(t, want, code)
}

func TestGetERC20TokenBalance(t *testing.T) {
	c, srv := newClient(t)
	word := "0x" + strings.Repeat("0", 47) + "6e83695ab1f893c00"
	srv.CallResult(contract, encoding.SelectorHex("balanceOf(address)"), word)

	got, err := c.GetERC20TokenBalance(context.Background(), chainID, contract, owner)
	require.NoError(t, err)
	assert.Equal(t, word, got)

	data := srv.Requests()[0].Data()
	assert.True(t, strings.HasSuffix(strings.ToLower(data), strings.ToLower(owner[2:])))
}

func TestGetERC20TokenBalanceInvalidInput(t *testing.T) {
	c, srv := newClient(t)
	ctx := context.Background()

	_, err := c.GetERC20TokenBalance(ctx, chainID, "", owner)
	requireEthCode(t, err, rpcerr.ProviderInvalidParams)
	_, err = c.GetERC20TokenBalance(ctx, chainID, contract, "")
	requireEthCode(t, err, rpcerr.ProviderInvalidParams)
	_, err = c.GetERC20TokenBalance(ctx, "", contract, owner)
	requireEthCode(t, err, rpcerr.ProviderInvalidParams)
	_, err = c.GetERC20TokenBalance(ctx, "0x12345", contract, owner)
	requireEthCode(t, err, rpcerr.ProviderInvalidParams)

	assert.Empty(t, srv.Requests())
}

func TestLimitExceededSurfacesFromCallSites(t *testing.T) {
	c, srv := newClient(t)
	srv.Fail("eth_call", -32005, "Request exceeds defined limit")
	srv.Fail("eth_getBalance", -32005, "Request exceeds defined limit")

	_, err := c.GetERC20TokenBalance(context.Background(), chainID, contract, owner)
	requireEthCode(t, err, rpcerr.ProviderLimitExceeded)
	_, msg, _ := rpcerr.Details(err)
	assert.Equal(t, "Request exceeds defined limit", msg)

	_, err = c.GetBalance(context.Background(), chainID, owner)
	requireEthCode(t, err, rpcerr.ProviderLimitExceeded)
}

func TestGetBalance(t *testing.T) {
	c, srv := newClient(t)
	srv.Result("eth_getBalance", "0xb539d5")

	got, err := c.GetBalance(context.Background(), chainID, owner)
	require.NoError(t, err)
	assert.Equal(t, "0xb539d5", got)
	assert.Equal(t, "latest", srv.Requests()[0].Params.Get("1").String())

	srv.Result("eth_getBalance", "nope")
	_, err = c.GetBalance(context.Background(), chainID, owner)
	requireEthCode(t, err, rpcerr.ProviderParsingError)
}

func TestGetEthNftStandardScanOrder(t *testing.T) {
	c, srv := newClient(t)
	srv.HandleCall(contract, encoding.SelectorHex("supportsInterface(bytes4)"), func(req rpctest.Request) rpctest.Reply {
		if strings.Contains(req.Data(), ERC721InterfaceID[2:]) {
			return rpctest.Reply{Error: &rpctest.Error{Code: -32000, Message: "execution reverted"}}
		}
		return rpctest.Reply{Result: abiHex(t, []string{"bool"}, true)}
	})

	got, err := c.GetEthNftStandard(context.Background(), chainID, contract, []string{ERC721InterfaceID, ERC1155InterfaceID})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ERC1155InterfaceID, *got)
	assert.Equal(t, 2, srv.Count("eth_call"))
}

func TestGetEthNftStandardNoneSupported(t *testing.T) {
	c, srv := newClient(t)
	srv.CallResult(contract, encoding.SelectorHex("supportsInterface(bytes4)"), abiHex(t, []string{"bool"}, false))

	got, err := c.GetEthNftStandard(context.Background(), chainID, contract, []string{ERC721InterfaceID, ERC1155InterfaceID})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetEthNftStandardShortCircuits(t *testing.T) {
	c, srv := newClient(t)
	srv.CallResult(contract, encoding.SelectorHex("supportsInterface(bytes4)"), abiHex(t, []string{"bool"}, true))

	got, err := c.GetEthNftStandard(context.Background(), chainID, contract, []string{ERC721InterfaceID, ERC1155InterfaceID})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ERC721InterfaceID, *got)
	assert.Equal(t, 1, srv.Count("eth_call"))
}

func TestGetEthTokenInfoDefaults(t *testing.T) {
	c, srv := newClient(t)
	srv.CallResult(contract, encoding.SelectorHex("symbol()"), abiHex(t, []string{"string"}, "BAT"))
	srv.HandleCall(contract, encoding.SelectorHex("name()"), func(rpctest.Request) rpctest.Reply {
		return rpctest.Reply{Result: "0x"}
	})
	srv.CallResult(contract, encoding.SelectorHex("decimals()"), abiHex(t, []string{"uint256"}, big.NewInt(18)))

	info, err := c.GetEthTokenInfo(context.Background(), chainID, contract)
	require.NoError(t, err)
	assert.Equal(t, "BAT", info.Symbol)
	assert.Empty(t, info.Name)
	assert.EqualValues(t, 18, info.Decimals)
	assert.True(t, info.IsErc20)
	assert.Equal(t, "basic-attention-token", info.CoingeckoID)
	assert.Equal(t, common.HexToAddress(contract).Hex(), info.Contract)
}

func TestGetEthTokenInfoAllFail(t *testing.T) {
	c, srv := newClient(t)
	srv.Fail("eth_call", -32000, "execution reverted")

	info, err := c.GetEthTokenInfo(context.Background(), chainID, contract)
	require.NoError(t, err)
	assert.Empty(t, info.Symbol)
	assert.Zero(t, info.Decimals)
	assert.False(t, info.IsErc20)
}

func TestBytes32Symbol(t *testing.T) {
	c, srv := newClient(t)
	var word [32]byte
	copy(word[:], "MKR")
	srv.CallResult(contract, encoding.SelectorHex("symbol()"), encoding.ToHex(word[:]))

	got, err := c.GetEthTokenSymbol(context.Background(), chainID, contract)
	require.NoError(t, err)
	assert.Equal(t, "MKR", got)
}

func TestGetERC721TokenBalance(t *testing.T) {
	c, srv := newClient(t)
	srv.CallResult(contract, encoding.SelectorHex("ownerOf(uint256)"), abiHex(t, []string{"address"}, common.HexToAddress(owner)))
	ctx := context.Background()

	got, err := c.GetERC721TokenBalance(ctx, chainID, contract, "0xf", strings.ToLower(owner))
	require.NoError(t, err)
	assert.Equal(t, "0x1", got)

	got, err = c.GetERC721TokenBalance(ctx, chainID, contract, "0xf", "0x0000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, "0x0", got)

	_, err = c.GetERC721TokenBalance(ctx, chainID, contract, "15", owner)
	requireEthCode(t, err, rpcerr.ProviderInvalidParams)
}

func TestGetEthTokenURI(t *testing.T) {
	c, srv := newClient(t)
	srv.CallResult(contract, encoding.SelectorHex("supportsInterface(bytes4)"), abiHex(t, []string{"bool"}, true))
	srv.CallResult(contract, encoding.SelectorHex("uri(uint256)"), abiHex(t, []string{"string"}, "https://token.example/{id}.json"))
	srv.CallResult(contract, encoding.SelectorHex("tokenURI(uint256)"), abiHex(t, []string{"string"}, "ipfs://QmHash/1"))
	ctx := context.Background()

	u, err := c.GetEthTokenURI(ctx, chainID, contract, "0x4d2", ERC1155MetadataInterfaceID)
	require.NoError(t, err)
	assert.Equal(t, "https://token.example/"+strings.Repeat("0", 61)+"4d2.json", u.String())

	u, err = c.GetEthTokenURI(ctx, chainID, contract, "0x1", ERC721MetadataInterfaceID)
	require.NoError(t, err)
	assert.Equal(t, "ipfs", u.Scheme)

	_, err = c.GetEthTokenURI(ctx, chainID, contract, "0x1", ERC721InterfaceID)
	requireEthCode(t, err, rpcerr.ProviderInvalidParams)
}

func TestGetEthTokenURIUnsupported(t *testing.T) {
	c, srv := newClient(t)
	srv.CallResult(contract, encoding.SelectorHex("supportsInterface(bytes4)"), abiHex(t, []string{"bool"}, false))

	_, err := c.GetEthTokenURI(context.Background(), chainID, contract, "0x1", ERC721MetadataInterfaceID)
	requireEthCode(t, err, rpcerr.ProviderMethodNotSupported)
	assert.Equal(t, 1, srv.Count("eth_call"))
}

const sampleLog = `{
	"address": "0x6b175474e89094c44da98b954eedeac495271d0f",
	"blockHash": "0x2961ceb6c16bab72a55f79e394a35f2bf1c62b30446e3537280f7c22c3115e6e",
	"blockNumber": "0xd6464e",
	"data": "0x00000000000000000000000000000000000000000000000555aff1f0fae8c000",
	"logIndex": "0x159",
	"removed": false,
	"topics": [
		"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		"0x000000000000000000000000503828976d22510aad0201ac7ec88293211d23da"
	],
	"transactionHash": "0x2e652b70966c6a05f4b3e68f20d6540b7a5ab712385464a7ccf62774d39b7066",
	"transactionIndex": "0x9f"
}`

func TestEthGetLogs(t *testing.T) {
	c, srv := newClient(t)
	srv.Handle("eth_getLogs", func(rpctest.Request) rpctest.Reply {
		return rpctest.Reply{RawBody: `{"jsonrpc":"2.0","id":1,"result":[` + sampleLog + `]}`}
	})

	logs, err := c.EthGetLogs(context.Background(), chainID, LogFilter{
		FromBlock: "earliest",
		ToBlock:   "latest",
		Address:   []string{contract},
		Topics:    []any{"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef", nil},
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, big.NewInt(0xd6464e), logs[0].BlockNumber)
	assert.EqualValues(t, 0x159, logs[0].LogIndex)
	assert.EqualValues(t, 0x9f, logs[0].TransactionIndex)
	assert.Len(t, logs[0].Topics, 2)

	p := srv.Requests()[0].Params.Get("0")
	assert.Equal(t, "earliest", p.Get("fromBlock").String())
	assert.Equal(t, contract, p.Get("address.0").String())
	assert.Equal(t, "null", p.Get("topics.1").Raw)
}

func TestEthGetLogsMalformedEntryFailsAll(t *testing.T) {
	c, srv := newClient(t)
	bad := strings.Replace(sampleLog, `"blockNumber": "0xd6464e"`, `"blockNumber": 12`, 1)
	srv.Handle("eth_getLogs", func(rpctest.Request) rpctest.Reply {
		return rpctest.Reply{RawBody: `{"jsonrpc":"2.0","id":1,"result":[` + sampleLog + `,` + bad + `]}`}
	})

	logs, err := c.EthGetLogs(context.Background(), chainID, LogFilter{})
	requireEthCode(t, err, rpcerr.ProviderParsingError)
	assert.Nil(t, logs)
}

func TestIsEip1559(t *testing.T) {
	c, srv := newClient(t)
	srv.Result("eth_getBlockByNumber", map[string]any{"number": "0x1", "baseFeePerGas": "0x181f22e7a9"})

	ok, err := c.IsEip1559(context.Background(), chainID)
	require.NoError(t, err)
	assert.True(t, ok)

	srv.Result("eth_getBlockByNumber", map[string]any{"number": "0x1"})
	ok, err = c.IsEip1559(context.Background(), chainID)
	require.NoError(t, err)
	assert.False(t, ok)

	srv.Result("eth_getBlockByNumber", nil)
	_, err = c.IsEip1559(context.Background(), chainID)
	requireEthCode(t, err, rpcerr.ProviderParsingError)
}

func TestGetFeeHistory(t *testing.T) {
	c, srv := newClient(t)
	srv.Result("eth_feeHistory", map[string]any{
		"baseFeePerGas": []string{"0x1", "0x2"},
		"gasUsedRatio":  []float64{0.5},
		"oldestBlock":   "0xd6b1b0",
		"reward":        [][]string{{"0x1", "0x2", "0x3"}},
	})

	fh, err := c.GetFeeHistory(context.Background(), chainID)
	require.NoError(t, err)
	assert.Equal(t, "0xd6b1b0", fh.OldestBlock)
	assert.Equal(t, []float64{0.5}, fh.GasUsedRatio)
	assert.Len(t, fh.Reward, 1)

	p := srv.Requests()[0].Params
	assert.Equal(t, "0x28", p.Get("0").String())
	assert.Equal(t, "[20,50,80]", p.Get("2").Raw)

	srv.Result("eth_feeHistory", map[string]any{"gasUsedRatio": []float64{}})
	_, err = c.GetFeeHistory(context.Background(), chainID)
	requireEthCode(t, err, rpcerr.ProviderParsingError)
}

func TestGetTransactionReceiptPending(t *testing.T) {
	c, srv := newClient(t)
	srv.Result("eth_getTransactionReceipt", nil)

	r, err := c.GetTransactionReceipt(context.Background(), chainID, "0x"+strings.Repeat("ab", 32))
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestGetBlockNumber(t *testing.T) {
	c, srv := newClient(t)
	srv.Result("eth_blockNumber", "0x10d4f")

	n, err := c.GetBlockNumber(context.Background(), chainID)
	require.NoError(t, err)
	assert.Equal(t, int64(0x10d4f), n.Int64())
}

func TestGetERC20TokenAllowance(t *testing.T) {
	c, srv := newClient(t)
	spender := "0x7a250d5630b4cf539739df2c5dacb4c659f2488d"
	word := "0x" + strings.Repeat("f", 64)
	srv.CallResult(contract, encoding.SelectorHex("allowance(address,address)"), word)

	got, err := c.GetERC20TokenAllowance(context.Background(), chainID, contract, owner, spender)
	require.NoError(t, err)
	assert.Equal(t, word, got)

	data := strings.ToLower(srv.Requests()[0].Data())
	assert.True(t, strings.HasSuffix(data, spender[2:]))
	assert.Contains(t, data, strings.ToLower(owner[2:]))

	_, err = c.GetERC20TokenAllowance(context.Background(), chainID, contract, owner, "0x12")
	requireEthCode(t, err, rpcerr.ProviderInvalidParams)
}

func TestGetERC1155TokenBalance(t *testing.T) {
	c, srv := newClient(t)
	word := "0x" + strings.Repeat("0", 63) + "5"
	srv.CallResult(contract, encoding.SelectorHex("balanceOf(address,uint256)"), word)

	got, err := c.GetERC1155TokenBalance(context.Background(), chainID, contract, "0x1", owner)
	require.NoError(t, err)
	assert.Equal(t, word, got)

	data := srv.Requests()[0].Data()
	assert.True(t, strings.HasSuffix(data, strings.Repeat("0", 63)+"1"))

	_, err = c.GetERC1155TokenBalance(context.Background(), chainID, contract, "nope", owner)
	requireEthCode(t, err, rpcerr.ProviderInvalidParams)
}

func TestGetCode(t *testing.T) {
	c, srv := newClient(t)
	srv.Result("eth_getCode", "0x6080")

	got, err := c.GetCode(context.Background(), chainID, contract)
	require.NoError(t, err)
	assert.Equal(t, "0x6080", got)
	assert.Equal(t, "latest", srv.Requests()[0].Params.Get("1").String())

	_, err = c.GetCode(context.Background(), chainID, "0x")
	requireEthCode(t, err, rpcerr.ProviderInvalidParams)
}
