package ud

import (
	"context"
	"math/big"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/encoding"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/eth"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/networks"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpc"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpc/rpctest"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
)

const (
	domain    = "brad.crypto"
	ethAddr   = "0x8aaD44321A86b170879d7A244c1e8d360c99DdA8"
	polyAddr  = "0x3a2f3f7aAB82D69036763cfd3f755975F84496e6"
	usdcAddr  = "0x1111111111111111111111111111111111111111"
	solWallet = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

var selGetMany = encoding.SelectorHex("getMany(string[],uint256)")

func newResolver(t *testing.T) (*Resolver, *rpctest.Server) {
	t.Helper()
	srv := rpctest.New(t)
	ep := srv.EthEndpoints(networks.MainnetChainID, networks.PolygonMainnetChainID, networks.BaseMainnetChainID)
	return NewResolver(eth.NewClient(rpc.NewTransport(), ep)), srv
}

func reader(chainID string) string {
	for _, pr := range ProxyReaders {
		if pr.ChainID == chainID {
			return pr.Contract
		}
	}
	return ""
}

func answer(t *testing.T, srv *rpctest.Server, chainID string, values ...string) {
	srv.CallResult(reader(chainID), selGetMany, rpctest.ABIHex(t, []string{"string[]"}, values))
}

func empty(n int) []string { return make([]string, n) }

func requestedKeys(t *testing.T, req rpctest.Request) ([]string, *big.Int) {
	b, err := encoding.HexToBytes(req.Data())
	require.NoError(t, err)
	out, err := encoding.Decode(b[4:], "string[]", "uint256")
	require.NoError(t, err)
	return out[0].([]string), out[1].(*big.Int)
}

func requireEthCode(t *testing.T, err error, want rpcerr.ProviderError) {
	t.Helper()
	code, ok := rpcerr.CodeOf[rpcerr.ProviderError](err)
	require.True(t, ok, "error %v", err)
	assert.Equal(t, want, code)
}

func TestIsValidUnstoppableDomain(t *testing.T) {
	for _, d := range []string{"brave.crypto", "sub.brave.x", "brave-wallet.nft", "brave.888", "b_b.wallet"} {
		assert.True(t, IsValidUnstoppableDomain(d), d)
	}
	for _, d := range []string{"", "brave", ".crypto", "brave.eth", "brave.crypto.com", "brave.crypto "} {
		assert.False(t, IsValidUnstoppableDomain(d), d)
	}
}

func TestWalletAddrKeys(t *testing.T) {
	assert.Equal(t, []string{"crypto.USDC.version.MATIC.address", "crypto.USDC.address", "crypto.ETH.address"},
		WalletAddrKeys(Token{Symbol: "usdc", ChainID: networks.PolygonMainnetChainID, Coin: coin.ETH}))
	assert.Equal(t, []string{"crypto.ETH.version.ERC20.address", "crypto.ETH.address"},
		WalletAddrKeys(Token{Symbol: "ETH", ChainID: networks.MainnetChainID, Coin: coin.ETH}))
	assert.Equal(t, []string{"crypto.SOL.version.SOLANA.address", "crypto.SOL.address"},
		WalletAddrKeys(Token{Symbol: "SOL", ChainID: "0x65", Coin: coin.SOL}))
	assert.Equal(t, []string{"crypto.ETH.address"}, WalletAddrKeys(Token{Coin: coin.ETH}))
	assert.Equal(t, []string{"crypto.FIL.address"}, WalletAddrKeys(Token{Symbol: "FIL", Coin: coin.FIL}))
}

func TestGetWalletAddrFallsThroughEmpty(t *testing.T) {
	r, srv := newResolver(t)
	answer(t, srv, networks.MainnetChainID, empty(1)...)
	answer(t, srv, networks.PolygonMainnetChainID, polyAddr)
	answer(t, srv, networks.BaseMainnetChainID, ethAddr)

	addr, err := r.GetWalletAddr(context.Background(), domain, Token{Coin: coin.ETH})
	require.NoError(t, err)
	assert.Equal(t, polyAddr, addr)
	assert.Equal(t, 2, srv.Count("eth_call"))

	keys, tokenID := requestedKeys(t, srv.Requests()[0])
	assert.Equal(t, []string{"crypto.ETH.address"}, keys)
	assert.Equal(t, new(big.Int).SetBytes(encoding.Namehash(domain).Bytes()), tokenID)
}

func TestGetWalletAddrErrorIsTerminal(t *testing.T) {
	r, srv := newResolver(t)
	srv.HandleCall(reader(networks.MainnetChainID), selGetMany, func(rpctest.Request) rpctest.Reply {
		return rpctest.Reply{Status: http.StatusGatewayTimeout, RawBody: "timeout"}
	})
	answer(t, srv, networks.PolygonMainnetChainID, polyAddr)

	_, err := r.GetWalletAddr(context.Background(), domain, Token{Coin: coin.ETH})
	requireEthCode(t, err, rpcerr.ProviderInternalError)
	assert.Equal(t, 1, srv.Count("eth_call"))
}

func TestGetWalletAddrNoRecord(t *testing.T) {
	r, srv := newResolver(t)
	for _, pr := range ProxyReaders {
		answer(t, srv, pr.ChainID, "")
	}

	addr, err := r.GetWalletAddr(context.Background(), domain, Token{Coin: coin.ETH})
	require.NoError(t, err)
	assert.Empty(t, addr)
	assert.Equal(t, 3, srv.Count("eth_call"))
}

func TestGetWalletAddrMostSpecificWins(t *testing.T) {
	r, srv := newResolver(t)
	answer(t, srv, networks.MainnetChainID, "", usdcAddr, ethAddr)

	addr, err := r.GetWalletAddr(context.Background(), domain, Token{Symbol: "USDC", ChainID: networks.PolygonMainnetChainID, Coin: coin.ETH})
	require.NoError(t, err)
	assert.Equal(t, usdcAddr, addr)

	keys, _ := requestedKeys(t, srv.Requests()[0])
	assert.Equal(t, WalletAddrKeys(Token{Symbol: "USDC", ChainID: networks.PolygonMainnetChainID, Coin: coin.ETH}), keys)
}

func TestGetWalletAddrSkipsInvalidValues(t *testing.T) {
	r, srv := newResolver(t)
	answer(t, srv, networks.MainnetChainID, "not-an-address", "")
	answer(t, srv, networks.PolygonMainnetChainID, "", solWallet)

	addr, err := r.GetWalletAddr(context.Background(), domain, Token{Symbol: "SOL", Coin: coin.SOL})
	require.NoError(t, err)
	assert.Equal(t, solWallet, addr)
}

func TestGetWalletAddrInvalid(t *testing.T) {
	r, srv := newResolver(t)
	_, err := r.GetWalletAddr(context.Background(), "brave.eth", Token{Coin: coin.ETH})
	requireEthCode(t, err, rpcerr.ProviderInvalidParams)
	assert.Empty(t, srv.Requests())

	// value count must match the keys
	answer(t, srv, networks.MainnetChainID, ethAddr, ethAddr)
	_, err = r.GetWalletAddr(context.Background(), domain, Token{Coin: coin.ETH})
	requireEthCode(t, err, rpcerr.ProviderParsingError)
}

func ipfsCID(t *testing.T) string {
	c, err := cid.Prefix{Version: 1, Codec: cid.DagProtobuf, MhType: 0x12, MhLength: -1}.Sum([]byte("brad"))
	require.NoError(t, err)
	return c.String()
}

func TestResolveDns(t *testing.T) {
	c := ipfsCID(t)
	cases := []struct {
		name   string
		values []string
		want   string
	}{
		{"ipfs hash", []string{c, "", "", "", "https://brad.com", ""}, "ipfs://" + c},
		{"legacy hash", []string{"", c, "", "", "https://brad.com", ""}, "ipfs://" + c},
		{"redirect url", []string{"", "", "1.1.1.1", "", "https://brad.com/home", ""}, "https://brad.com/home"},
		{"redirect domain", []string{"", "", "", "", "", "https://brad.org"}, "https://brad.org"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, srv := newResolver(t)
			answer(t, srv, networks.MainnetChainID, tc.values...)

			u, err := r.ResolveDns(context.Background(), domain)
			require.NoError(t, err)
			require.NotNil(t, u)
			assert.Equal(t, tc.want, u.String())

			keys, _ := requestedKeys(t, srv.Requests()[0])
			assert.Equal(t, dnsKeys, keys)
		})
	}
}

func TestResolveDnsFallsThroughToBase(t *testing.T) {
	r, srv := newResolver(t)
	answer(t, srv, networks.MainnetChainID, empty(6)...)
	answer(t, srv, networks.PolygonMainnetChainID, "", "", "", "", "not a url", "")
	answer(t, srv, networks.BaseMainnetChainID, "", "", "", "", "https://base.brad.com", "")

	u, err := r.ResolveDns(context.Background(), domain)
	require.NoError(t, err)
	assert.Equal(t, "https://base.brad.com", u.String())
	assert.Equal(t, 3, srv.Count("eth_call"))
}

func TestResolveDnsNone(t *testing.T) {
	r, srv := newResolver(t)
	for _, pr := range ProxyReaders {
		answer(t, srv, pr.ChainID, empty(6)...)
	}

	u, err := r.ResolveDns(context.Background(), domain)
	require.NoError(t, err)
	assert.Nil(t, u)
}

// holdCall answers getMany on chainID with values once release is closed,
// signalling entered when the first request arrives.
func holdCall(t *testing.T, srv *rpctest.Server, chainID string, values ...string) (entered, release chan struct{}) {
	entered, release = make(chan struct{}), make(chan struct{})
	data := rpctest.ABIHex(t, []string{"string[]"}, values)
	var once sync.Once
	srv.HandleCall(reader(chainID), selGetMany, func(rpctest.Request) rpctest.Reply {
		once.Do(func() { close(entered) })
		select {
		case <-release:
		case <-time.After(5 * time.Second):
		}
		return rpctest.Reply{Result: data}
	})
	return entered, release
}

func TestResolveDnsConcurrentCallerCancelled(t *testing.T) {
	r, srv := newResolver(t)
	entered, release := holdCall(t, srv, networks.MainnetChainID, "", "", "", "", "https://brad.com", "")

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := r.ResolveDns(ctxA, domain)
		errA <- err
	}()
	<-entered

	type result struct {
		u   *url.URL
		err error
	}
	resB := make(chan result, 1)
	go func() {
		u, err := r.ResolveDns(context.Background(), domain)
		resB <- result{u, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	requireEthCode(t, <-errA, rpcerr.ProviderInternalError)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	require.NotNil(t, b.u)
	assert.Equal(t, "https://brad.com", b.u.String())
	assert.Equal(t, 1, srv.Count("eth_call"))
}

func TestGetWalletAddrConcurrentCallersShareLookup(t *testing.T) {
	r, srv := newResolver(t)
	entered, release := holdCall(t, srv, networks.MainnetChainID, ethAddr)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := r.GetWalletAddr(ctxA, domain, Token{Coin: coin.ETH})
		errA <- err
	}()
	<-entered

	type result struct {
		addr string
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		addr, err := r.GetWalletAddr(context.Background(), domain, Token{Coin: coin.ETH})
		resB <- result{addr, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	requireEthCode(t, <-errA, rpcerr.ProviderInternalError)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, ethAddr, b.addr)
	assert.Equal(t, 1, srv.Count("eth_call"))
}
