package networks

import (
	"context"
	"testing"

	utilsEth "github.com/quantumauth-io/quantum-go-utils/ethrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/prefs"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/shared"
)

func newManager(t *testing.T) (*Manager, *prefs.MemoryStore) {
	t.Helper()
	store := prefs.NewMemoryStore()
	m, err := NewManager(context.Background(), store)
	require.NoError(t, err)
	return m, store
}

func customChain(id string) shared.NetworkInfo {
	return shared.NetworkInfo{
		ChainID:      id,
		ChainName:    "Custom " + id,
		RPCEndpoints: []string{"https://rpc.custom.test"},
		Symbol:       "CST",
		Decimals:     18,
		Coin:         coin.ETH,
	}
}

func TestKnownChainTables(t *testing.T) {
	eth := KnownChains(coin.ETH)
	require.NotEmpty(t, eth)
	assert.Equal(t, MainnetChainID, eth[0].ChainID)
	assert.Equal(t, "https://ethereum-mainnet.wallet.brave.com", eth[0].RPCEndpoints[0])
	assert.Equal(t, LocalhostChainID, eth[len(eth)-1].ChainID)

	sol := KnownChains(coin.SOL)
	assert.Equal(t, []shared.KeyringID{shared.KeyringSolana}, sol[0].SupportedKeyrings)

	fil := KnownChains(coin.FIL)
	assert.Equal(t, FilecoinMainnet, fil[0].ChainID)
	assert.Equal(t, []shared.KeyringID{shared.KeyringFilecoinTestnet}, fil[1].SupportedKeyrings)

	// callers get copies
	eth[0].RPCEndpoints[0] = "https://evil.test"
	assert.Equal(t, "https://ethereum-mainnet.wallet.brave.com", KnownChains(coin.ETH)[0].RPCEndpoints[0])
}

func TestGetAllChainsMergesCustom(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	override := customChain("0x89")
	override.ChainName = "My Polygon"
	require.NoError(t, m.AddCustomNetwork(ctx, override))
	require.NoError(t, m.AddCustomNetwork(ctx, customChain("0x5566")))

	all := m.GetAllChains(coin.ETH)
	require.Len(t, all, len(KnownChains(coin.ETH))+1)
	assert.Equal(t, "My Polygon", all[2].ChainName)
	assert.Equal(t, "0x5566", all[len(all)-1].ChainID)

	n, ok := m.GetChain("0x89", coin.ETH)
	require.True(t, ok)
	assert.Equal(t, "My Polygon", n.ChainName)
}

func TestAddCustomNetworkReplacesSameID(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	require.NoError(t, m.AddCustomNetwork(ctx, customChain("0x5566")))
	updated := customChain("0X5566")
	updated.ChainName = "Renamed"
	require.NoError(t, m.AddCustomNetwork(ctx, updated))

	custom := m.GetCustomChains(coin.ETH)
	require.Len(t, custom, 1)
	assert.Equal(t, "Renamed", custom[0].ChainName)
	assert.Equal(t, "0x5566", custom[0].ChainID)
}

func TestRemoveCustomNetworkClearsEip1559(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	require.NoError(t, m.AddCustomNetwork(ctx, customChain("0x5566")))
	yes := true
	require.NoError(t, m.SetEip1559ForCustomChain(ctx, "0x5566", &yes))
	assert.True(t, m.IsEip1559Chain("0x5566"))

	require.NoError(t, m.RemoveCustomNetwork(ctx, "0x5566", coin.ETH))
	assert.False(t, m.CustomChainExists("0x5566", coin.ETH))
	assert.False(t, m.IsEip1559Chain("0x5566"))

	// known chains can not be removed
	require.NoError(t, m.RemoveCustomNetwork(ctx, MainnetChainID, coin.ETH))
	assert.True(t, m.ChainExists(MainnetChainID, coin.ETH))
}

func TestGetNetworkURL(t *testing.T) {
	m, _ := newManager(t)

	u := m.GetNetworkURL(SolanaMainnet, coin.SOL)
	require.NotNil(t, u)
	assert.Equal(t, "solana-mainnet.wallet.brave.com", u.Host)

	assert.Nil(t, m.GetNetworkURL("0x1234", coin.ETH))
	assert.Nil(t, m.GetNetworkURL(MainnetChainID, coin.SOL))
}

func TestSetCurrentChainIDIdempotent(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)

	for i := 0; i < 2; i++ {
		ok, err := m.SetCurrentChainID(ctx, coin.ETH, "https://a.test", PolygonMainnetChainID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, PolygonMainnetChainID, m.GetCurrentChainID(coin.ETH, "https://a.test"))
	}
	assert.Equal(t, 1, store.Saves())
}

func TestPerOriginIsolation(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	ok, err := m.SetCurrentChainID(ctx, coin.ETH, "https://b.test", SepoliaChainID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m.SetCurrentChainID(ctx, coin.ETH, "https://a.test:443", PolygonMainnetChainID)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, SepoliaChainID, m.GetCurrentChainID(coin.ETH, "https://b.test"))
	assert.Equal(t, PolygonMainnetChainID, m.GetCurrentChainID(coin.ETH, "https://a.test"))
	// no override: global, then default
	assert.Equal(t, MainnetChainID, m.GetCurrentChainID(coin.ETH, "https://c.test"))
	assert.Equal(t, MainnetChainID, m.GetCurrentChainID(coin.ETH, ""))

	ok, err = m.SetCurrentChainID(ctx, coin.ETH, "", BaseMainnetChainID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, BaseMainnetChainID, m.GetCurrentChainID(coin.ETH, "https://c.test"))
	assert.Equal(t, PolygonMainnetChainID, m.GetCurrentChainID(coin.ETH, "https://a.test"))
}

func TestSetCurrentChainIDRejects(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	ok, err := m.SetCurrentChainID(ctx, coin.ETH, "", "0x1234")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.SetCurrentChainID(ctx, coin.ETH, "null", PolygonMainnetChainID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.SetCurrentChainID(ctx, coin.FIL, "", MainnetChainID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNonWebOriginSetsGlobal(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	ok, err := m.SetCurrentChainID(ctx, coin.SOL, "chrome://wallet", SolanaDevnet)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, SolanaDevnet, m.GetCurrentChainID(coin.SOL, ""))
}

func TestCurrentChainFallsBackWhenRemoved(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	require.NoError(t, m.AddCustomNetwork(ctx, customChain("0x5566")))
	ok, err := m.SetCurrentChainID(ctx, coin.ETH, "", "0x5566")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, m.RemoveCustomNetwork(ctx, "0x5566", coin.ETH))
	assert.Equal(t, MainnetChainID, m.GetCurrentChainID(coin.ETH, ""))
	assert.Equal(t, FilecoinMainnet, m.GetCurrentChainID(coin.FIL, ""))
}

func TestIsEip1559KnownTable(t *testing.T) {
	m, _ := newManager(t)
	assert.True(t, m.IsEip1559Chain(MainnetChainID))
	assert.False(t, m.IsEip1559Chain(BnbSmartChainMainnetChainID))
	assert.False(t, m.IsEip1559Chain(LocalhostChainID))
	assert.False(t, m.IsEip1559Chain("0x5566"))
}

func TestHiddenNetworks(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	require.NoError(t, m.AddHiddenNetwork(ctx, coin.ETH, "0xAA36A7"))
	require.NoError(t, m.AddHiddenNetwork(ctx, coin.ETH, "0xaa36a7"))
	require.NoError(t, m.AddHiddenNetwork(ctx, coin.ETH, LocalhostChainID))
	assert.Equal(t, []string{SepoliaChainID, LocalhostChainID}, m.GetHiddenNetworks(coin.ETH))

	require.NoError(t, m.RemoveHiddenNetwork(ctx, coin.ETH, "0xAA36A7"))
	assert.Equal(t, []string{LocalhostChainID}, m.GetHiddenNetworks(coin.ETH))
	assert.Empty(t, m.GetHiddenNetworks(coin.SOL))
}

func TestResetClearsState(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	require.NoError(t, m.AddCustomNetwork(ctx, customChain("0x5566")))
	require.NoError(t, m.SetResolveMethods(ctx, func(r *prefs.ResolveMethods) { r.Ud = prefs.ResolveMethodEnabled }))
	require.NoError(t, m.Reset(ctx))

	assert.Empty(t, m.GetCustomChains(coin.ETH))
	assert.Equal(t, prefs.DefaultResolveMethods(), m.ResolveMethods())
}

func TestStateSurvivesReload(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)

	require.NoError(t, m.AddCustomNetwork(ctx, customChain("0x5566")))
	_, err := m.SetCurrentChainID(ctx, coin.ETH, "https://a.test", "0x5566")
	require.NoError(t, err)

	reloaded, err := NewManager(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "0x5566", reloaded.GetCurrentChainID(coin.ETH, "https://a.test"))
}

func TestSeedCustomNetworks(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	existing := customChain("0x5566")
	existing.RPCEndpoints = nil
	require.NoError(t, m.AddCustomNetwork(ctx, existing))

	cfg := &utilsEth.MultiConfig{Networks: map[string]utilsEth.NetworkConfig{
		"mainnet": {ChainIDHex: "0x1", RPCs: []utilsEth.RPC{{Name: "infura", URL: "https://mainnet.infura.test"}}},
		"custom":  {ChainIDHex: "0x5566", RPCs: []utilsEth.RPC{{URL: "https://seed.test"}}},
		"fresh":   {ChainID: 31337, RPCs: []utilsEth.RPC{{URL: "http://127.0.0.1:8545"}}},
		"broken":  {},
	}}
	require.NoError(t, m.SeedCustomNetworks(ctx, cfg))

	custom := m.GetCustomChains(coin.ETH)
	require.Len(t, custom, 2)
	assert.Equal(t, "Custom 0x5566", custom[0].ChainName)
	assert.Equal(t, []string{"https://seed.test"}, custom[0].RPCEndpoints)
	assert.Equal(t, "0x7a69", custom[1].ChainID)
	assert.Equal(t, "fresh", custom[1].ChainName)
	assert.False(t, m.CustomChainExists(MainnetChainID, coin.ETH))
}

func TestParseOrigin(t *testing.T) {
	o, err := ParseOrigin("HTTPS://Brave.COM:443/path?q=1")
	require.NoError(t, err)
	assert.True(t, o.IsWeb())
	assert.Equal(t, "https://brave.com", o.String())

	o, err = ParseOrigin("http://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", o.String())

	o, err = ParseOrigin("data:text/html,hi")
	require.NoError(t, err)
	assert.True(t, o.Opaque())

	o, err = ParseOrigin("")
	require.NoError(t, err)
	assert.True(t, o.IsZero())

	assert.Equal(t, "", NormalizeOrigin("null"))
}
