package jsonrpc

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/encoding"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/events"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/networks"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/prefs"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpc"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpc/rpctest"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/shared"
)

const (
	customID = "0x1234"
	siteA    = "https://a.example"
	siteB    = "https://b.example"
	contract = "0x06012c8cf97BEaD5deAe237070F9587f8E7A266d"
)

type recorder struct {
	mu        sync.Mutex
	changed   []string
	completed map[string]string
	eip1559   map[string]bool
}

func (r *recorder) observer() events.ObserverFuncs {
	return events.ObserverFuncs{
		ChainChanged: func(chainID string, c coin.Type, origin string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.changed = append(r.changed, c.String()+"|"+chainID+"|"+origin)
		},
		AddChainCompleted: func(chainID, errMsg string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.completed[chainID] = errMsg
		},
		IsEip1559Changed: func(chainID string, v bool) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.eip1559[chainID] = v
		},
	}
}

type fixture struct {
	svc *Service
	srv *rpctest.Server
	nm  *networks.Manager
	rec *recorder
}

func chainAt(id string, c coin.Type, endpoint string) shared.NetworkInfo {
	return shared.NetworkInfo{
		ChainID:      id,
		ChainName:    "Chain " + id,
		RPCEndpoints: []string{endpoint},
		Symbol:       "TST",
		Decimals:     18,
		Coin:         c,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	nm, err := networks.NewManager(ctx, prefs.NewMemoryStore())
	require.NoError(t, err)
	srv := rpctest.New(t)
	require.NoError(t, nm.AddCustomNetwork(ctx, chainAt(customID, coin.ETH, srv.URL())))
	require.NoError(t, nm.AddCustomNetwork(ctx, chainAt(networks.SolanaMainnet, coin.SOL, srv.URL())))

	svc, err := New(Config{Networks: nm, Caller: rpc.NewTransport()})
	require.NoError(t, err)
	rec := &recorder{completed: map[string]string{}, eip1559: map[string]bool{}}
	svc.Events().Subscribe(rec.observer())
	return &fixture{svc: svc, srv: srv, nm: nm, rec: rec}
}

func requireEthCode(t *testing.T, err error, want rpcerr.ProviderError) {
	t.Helper()
	code, ok := rpcerr.CodeOf[rpcerr.ProviderError](err)
	require.True(t, ok, "error %v", err)
	assert.Equal(t, want, code)
}

func TestNewRequiresNetworks(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestRequestDispatchesByCoin(t *testing.T) {
	f := newFixture(t)
	f.srv.Result("eth_blockNumber", "0x10")
	f.srv.Result("getSlot", 42)
	ctx := context.Background()

	raw, err := f.svc.Request(ctx, coin.ETH, customID, []byte(`{"jsonrpc":"2.0","id":1,"method":"eth_blockNumber","params":[]}`))
	require.NoError(t, err)
	assert.JSONEq(t, `"0x10"`, string(raw))

	raw, err = f.svc.Request(ctx, coin.SOL, networks.SolanaMainnet, []byte(`{"jsonrpc":"2.0","id":1,"method":"getSlot","params":[]}`))
	require.NoError(t, err)
	assert.JSONEq(t, `42`, string(raw))

	_, err = f.svc.Request(ctx, coin.Type(99), customID, []byte(`{}`))
	requireEthCode(t, err, rpcerr.ProviderInvalidParams)
}

func TestGetBalanceUsesCoinClient(t *testing.T) {
	f := newFixture(t)
	f.srv.Result("eth_getBalance", "0xde0b6b3a7640000")
	f.srv.Result("getBalance", map[string]any{"context": map[string]any{"slot": 1}, "value": 5000})
	ctx := context.Background()

	got, err := f.svc.GetBalance(ctx, "0xB4B2802129071b2B9eBb8cBB01EA1E4D14B34961", coin.ETH, customID)
	require.NoError(t, err)
	assert.Equal(t, "0xde0b6b3a7640000", got)

	got, err = f.svc.GetBalance(ctx, "4fzcQKyGFuk55uJaBZtvTHh42RBxbrZMuXzsGQvBJbwF", coin.SOL, "")
	require.NoError(t, err)
	assert.Equal(t, "5000", got)
}

func TestGetCodeEthOnly(t *testing.T) {
	f := newFixture(t)
	f.srv.Result("eth_getCode", "0x")
	ctx := context.Background()

	got, err := f.svc.GetCode(ctx, "0xB4B2802129071b2B9eBb8cBB01EA1E4D14B34961", coin.ETH, customID)
	require.NoError(t, err)
	assert.Equal(t, "0x", got)

	_, err = f.svc.GetCode(ctx, "0xB4B2802129071b2B9eBb8cBB01EA1E4D14B34961", coin.SOL, "")
	requireEthCode(t, err, rpcerr.ProviderMethodNotSupported)
	assert.Equal(t, 1, f.srv.Count("eth_getCode"))
}

func TestSetNetworkIsIdempotentPerOrigin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before := f.svc.GetChainIDForOrigin(coin.ETH, siteB)
	for i := 0; i < 2; i++ {
		ok, err := f.svc.SetNetwork(ctx, networks.PolygonMainnetChainID, coin.ETH, siteA)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, networks.PolygonMainnetChainID, f.svc.GetChainIDForOrigin(coin.ETH, siteA))
	}
	assert.Equal(t, before, f.svc.GetChainIDForOrigin(coin.ETH, siteB))

	n, ok := f.svc.GetNetwork(coin.ETH, siteA)
	require.True(t, ok)
	assert.Equal(t, networks.PolygonMainnetChainID, n.ChainID)
	assert.Contains(t, f.rec.changed, "ETH|0x89|"+siteA)

	ok, err := f.svc.SetNetwork(ctx, "0xdead", coin.ETH, siteA)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, networks.PolygonMainnetChainID, f.svc.GetChainIDForOrigin(coin.ETH, siteA))
}

func TestSetNetworkProbesEip1559ForCustomChains(t *testing.T) {
	f := newFixture(t)
	f.srv.Result("eth_getBlockByNumber", map[string]any{"number": "0x1", "baseFeePerGas": "0x7"})
	ctx := context.Background()

	ok, err := f.svc.SetNetwork(ctx, customID, coin.ETH, "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, f.nm.IsEip1559Chain(customID))
	assert.Equal(t, map[string]bool{customID: true}, f.rec.eip1559)

	changed, err := f.svc.MaybeUpdateIsEip1559(ctx, customID)
	require.NoError(t, err)
	assert.False(t, changed)

	calls := f.srv.Count("eth_getBlockByNumber")
	changed, err = f.svc.MaybeUpdateIsEip1559(ctx, networks.MainnetChainID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, calls, f.srv.Count("eth_getBlockByNumber"))
}

func TestAddChainVerifiesChainID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.srv.Result("eth_chainId", "0xabc")
	id, err := f.svc.AddChain(ctx, chainAt("0xABC", coin.ETH, f.srv.URL()))
	require.NoError(t, err)
	assert.Equal(t, "0xabc", id)
	assert.True(t, f.nm.CustomChainExists("0xabc", coin.ETH))

	_, err = f.svc.AddChain(ctx, chainAt("0xabc", coin.ETH, f.srv.URL()))
	requireEthCode(t, err, rpcerr.ProviderUserRejectedRequest)

	_, err = f.svc.AddChain(ctx, chainAt("0xdef", coin.ETH, f.srv.URL()))
	requireEthCode(t, err, rpcerr.ProviderUserRejectedRequest)
	assert.False(t, f.nm.CustomChainExists("0xdef", coin.ETH))

	_, err = f.svc.AddChain(ctx, chainAt("0xdef", coin.ETH, "ftp://bad"))
	requireEthCode(t, err, rpcerr.ProviderUserRejectedRequest)
}

func TestAddChainSolanaOnlyOverridesKnown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddChain(ctx, chainAt("0x99", coin.SOL, "https://sol.example"))
	code, ok := rpcerr.CodeOf[rpcerr.SolanaProviderError](err)
	require.True(t, ok)
	assert.Equal(t, rpcerr.SolanaInternalError, code)

	_, err = f.svc.AddChain(ctx, chainAt(networks.SolanaDevnet, coin.SOL, "https://devnet.example"))
	require.NoError(t, err)
	assert.Equal(t, "https://devnet.example", f.svc.GetNetworkURL(networks.SolanaDevnet, coin.SOL).String())
	assert.Zero(t, f.srv.Count("eth_chainId"))
}

func TestAddEthereumChainForOrigin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.srv.Result("eth_chainId", "0xabc")

	require.NoError(t, f.svc.AddEthereumChainForOrigin(ctx, chainAt("0xabc", coin.ETH, f.srv.URL()), siteA))

	err := f.svc.AddEthereumChainForOrigin(ctx, chainAt("0xabd", coin.ETH, f.srv.URL()), siteA)
	requireEthCode(t, err, rpcerr.ProviderUserRejectedRequest)
	err = f.svc.AddEthereumChainForOrigin(ctx, chainAt("0xabc", coin.ETH, f.srv.URL()), siteB)
	requireEthCode(t, err, rpcerr.ProviderUserRejectedRequest)
	err = f.svc.AddEthereumChainForOrigin(ctx, chainAt(networks.MainnetChainID, coin.ETH, f.srv.URL()), siteB)
	requireEthCode(t, err, rpcerr.ProviderUserRejectedRequest)
	_, msg, _ := rpcerr.Details(err)
	assert.Equal(t, rpcerr.MsgChainExists, msg)
	err = f.svc.AddEthereumChainForOrigin(ctx, chainAt("0xabe", coin.ETH, f.srv.URL()), "null")
	requireEthCode(t, err, rpcerr.ProviderUserRejectedRequest)

	pending := f.svc.GetPendingAddChainRequests()
	require.Len(t, pending, 1)
	assert.Equal(t, siteA, pending[0].Origin)
	assert.Equal(t, "0xabc", pending[0].Network.ChainID)

	f.svc.AddEthereumChainRequestCompleted(ctx, "0xabc", true)
	assert.Equal(t, "", f.rec.completed["0xabc"])
	assert.True(t, f.nm.CustomChainExists("0xabc", coin.ETH))
	assert.Empty(t, f.svc.GetPendingAddChainRequests())

	// the origin is free again
	require.NoError(t, f.svc.AddEthereumChainForOrigin(ctx, chainAt("0xabd", coin.ETH, f.srv.URL()), siteA))
	f.svc.AddEthereumChainRequestCompleted(ctx, "0xabd", false)
	assert.Equal(t, rpcerr.MsgUserRejected, f.rec.completed["0xabd"])
	assert.False(t, f.nm.CustomChainExists("0xabd", coin.ETH))
}

func TestAddEthereumChainCompletedWithWrongChainID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.srv.Result("eth_chainId", "0x1")

	require.NoError(t, f.svc.AddEthereumChainForOrigin(ctx, chainAt("0xabc", coin.ETH, f.srv.URL()), siteA))
	f.svc.AddEthereumChainRequestCompleted(ctx, "0xabc", true)
	assert.Contains(t, f.rec.completed["0xabc"], "Failed to fetch chain id")
	assert.False(t, f.nm.CustomChainExists("0xabc", coin.ETH))

	// unknown ids are ignored
	f.svc.AddEthereumChainRequestCompleted(ctx, "0xfff", true)
	_, seen := f.rec.completed["0xfff"]
	assert.False(t, seen)
}

func wait(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(time.Second):
		t.Fatal("switch request was not settled")
		return nil
	}
}

func TestSwitchEthereumChain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddSwitchEthereumChainRequest(ctx, "0xdead", siteA)
	requireEthCode(t, err, rpcerr.ProviderUnknownChain)

	done, err := f.svc.AddSwitchEthereumChainRequest(ctx, networks.MainnetChainID, siteA)
	require.NoError(t, err)
	assert.Nil(t, done, "already on mainnet")

	done, err = f.svc.AddSwitchEthereumChainRequest(ctx, networks.PolygonMainnetChainID, siteA)
	require.NoError(t, err)
	require.NotNil(t, done)

	_, err = f.svc.AddSwitchEthereumChainRequest(ctx, networks.BaseMainnetChainID, siteA)
	requireEthCode(t, err, rpcerr.ProviderUserRejectedRequest)

	assert.Equal(t, []SwitchChainRequest{{Origin: siteA, ChainID: networks.PolygonMainnetChainID}}, f.svc.GetPendingSwitchChainRequests())

	require.NoError(t, f.svc.NotifySwitchChainRequestProcessed(ctx, true, siteA))
	assert.NoError(t, wait(t, done))
	assert.Equal(t, networks.PolygonMainnetChainID, f.svc.GetChainIDForOrigin(coin.ETH, siteA))
	assert.Equal(t, networks.MainnetChainID, f.svc.GetChainIDForOrigin(coin.ETH, siteB))
	assert.Empty(t, f.svc.GetPendingSwitchChainRequests())

	done, err = f.svc.AddSwitchEthereumChainRequest(ctx, networks.BaseMainnetChainID, siteA)
	require.NoError(t, err)
	require.NoError(t, f.svc.NotifySwitchChainRequestProcessed(ctx, false, siteA))
	requireEthCode(t, wait(t, done), rpcerr.ProviderUserRejectedRequest)
	assert.Equal(t, networks.PolygonMainnetChainID, f.svc.GetChainIDForOrigin(coin.ETH, siteA))

	// nothing pending
	assert.NoError(t, f.svc.NotifySwitchChainRequestProcessed(ctx, true, siteB))
}

func TestResetRejectsPendingRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	done, err := f.svc.AddSwitchEthereumChainRequest(ctx, networks.PolygonMainnetChainID, siteA)
	require.NoError(t, err)
	require.NoError(t, f.svc.AddEthereumChainForOrigin(ctx, chainAt("0xabc", coin.ETH, f.srv.URL()), siteB))
	require.NoError(t, f.svc.SetEnsResolveMethod(ctx, prefs.ResolveMethodDisabled))

	require.NoError(t, f.svc.Reset(ctx))

	requireEthCode(t, wait(t, done), rpcerr.ProviderUserRejectedRequest)
	assert.Empty(t, f.svc.GetPendingAddChainRequests())
	assert.Empty(t, f.svc.GetPendingSwitchChainRequests())
	assert.False(t, f.nm.CustomChainExists(customID, coin.ETH))
	assert.Equal(t, prefs.DefaultResolveMethods(), f.svc.ResolveMethods())
}

func TestResolveMethodSetters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SetEnsOffchainResolveMethod(ctx, prefs.ResolveMethodEnabled))
	require.NoError(t, f.svc.SetUnstoppableDomainsResolveMethod(ctx, prefs.ResolveMethodDisabled))
	require.NoError(t, f.svc.SetSnsResolveMethod(ctx, prefs.ResolveMethodEnabled))

	got := f.svc.ResolveMethods()
	assert.Equal(t, prefs.ResolveMethodEnabled, got.EnsOffchain)
	assert.Equal(t, prefs.ResolveMethodDisabled, got.Ud)
	assert.Equal(t, prefs.ResolveMethodEnabled, got.Sns)
}

func TestGetERC721Metadata(t *testing.T) {
	f := newFixture(t)
	doc := `{"name":"Kitty #1"}`
	f.srv.CallResult(contract, encoding.SelectorHex("supportsInterface(bytes4)"), rpctest.ABIHex(t, []string{"bool"}, true))
	f.srv.CallResult(contract, encoding.SelectorHex("tokenURI(uint256)"),
		rpctest.ABIHex(t, []string{"string"}, "data:application/json;base64,"+base64.StdEncoding.EncodeToString([]byte(doc))))
	f.srv.CallResult(contract, encoding.SelectorHex("uri(uint256)"), rpctest.ABIHex(t, []string{"string"}, "http://plain.example/{id}"))

	got, err := f.svc.GetERC721Metadata(context.Background(), contract, "0x1", customID)
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	_, err = f.svc.GetERC1155Metadata(context.Background(), contract, "0x1", customID)
	requireEthCode(t, err, rpcerr.ProviderMethodNotSupported)

	_, err = f.svc.GetERC721Metadata(context.Background(), contract, "0x1", "0xdead")
	requireEthCode(t, err, rpcerr.ProviderInvalidParams)
}

func TestNameResolutionValidatesBeforeNetwork(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.EnsGetEthAddr(ctx, "b.eth", nil)
	requireEthCode(t, err, rpcerr.ProviderInvalidParams)
	_, err = f.svc.SnsGetSolAddr(ctx, "bonfida.eth")
	assert.Error(t, err)
	_, err = f.svc.UnstoppableDomainsResolveDns(ctx, "brave.eth")
	requireEthCode(t, err, rpcerr.ProviderInvalidParams)
	assert.Empty(t, f.srv.Requests())
}
