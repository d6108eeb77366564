package networks

import (
	"fmt"
	"strings"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/shared"
)

// Chain ids used across the wallet.
const (
	MainnetChainID                 = "0x1"
	SepoliaChainID                 = "0xaa36a7"
	PolygonMainnetChainID          = "0x89"
	BnbSmartChainMainnetChainID    = "0x38"
	AvalancheMainnetChainID        = "0xa86a"
	OptimismMainnetChainID         = "0xa"
	BaseMainnetChainID             = "0x2105"
	NeonEVMMainnetChainID          = "0xe9ac0d6"
	FilecoinEthereumMainnetChainID = "0x13a"
	FilecoinEthereumTestnetChainID = "0x4cb2f"
	LocalhostChainID               = "0x539"

	SolanaMainnet = "0x65"
	SolanaTestnet = "0x66"
	SolanaDevnet  = "0x67"

	FilecoinMainnet = "f"
	FilecoinTestnet = "t"
)

const (
	ganacheLocalhostURL  = "http://localhost:7545/"
	solanaLocalhostURL   = "http://localhost:8899/"
	filecoinLocalhostURL = "http://localhost:1234/rpc/v0"
)

var eip1559ForKnownChains = map[string]bool{
	MainnetChainID:                 true,
	PolygonMainnetChainID:          true,
	AvalancheMainnetChainID:        true,
	OptimismMainnetChainID:         true,
	SepoliaChainID:                 true,
	FilecoinEthereumMainnetChainID: true,
	FilecoinEthereumTestnetChainID: true,
	BnbSmartChainMainnetChainID:    false,
	BaseMainnetChainID:             true,
	NeonEVMMainnetChainID:          false,
	LocalhostChainID:               false,
}

// proxySubdomains are chains served by the wallet RPC proxy.
var proxySubdomains = map[string]string{
	MainnetChainID:              "ethereum-mainnet",
	SepoliaChainID:              "ethereum-sepolia",
	PolygonMainnetChainID:       "polygon-mainnet",
	OptimismMainnetChainID:      "optimism-mainnet",
	BaseMainnetChainID:          "base-mainnet",
	AvalancheMainnetChainID:     "avalanche-mainnet",
	BnbSmartChainMainnetChainID: "bsc-mainnet",
	SolanaMainnet:               "solana-mainnet",
}

// ProxyURL returns the proxy endpoint for a chain, "" when the chain is not proxied.
func ProxyURL(chainID string) string {
	sub, ok := proxySubdomains[strings.ToLower(chainID)]
	if !ok {
		return ""
	}
	return fmt.Sprintf("https://%s.wallet.brave.com", sub)
}

func keyringsFor(c coin.Type, chainID string) []shared.KeyringID {
	switch c {
	case coin.ETH:
		return []shared.KeyringID{shared.KeyringDefault}
	case coin.SOL:
		return []shared.KeyringID{shared.KeyringSolana}
	case coin.FIL:
		if chainID == FilecoinMainnet {
			return []shared.KeyringID{shared.KeyringFilecoin}
		}
		return []shared.KeyringID{shared.KeyringFilecoinTestnet}
	}
	return nil
}

func known(c coin.Type, chainID, name, explorer, rpcURL, symbol, symbolName string, decimals uint8) shared.NetworkInfo {
	if rpcURL == "" {
		rpcURL = ProxyURL(chainID)
	}
	return shared.NetworkInfo{
		ChainID:           chainID,
		ChainName:         name,
		BlockExplorerURLs: []string{explorer},
		RPCEndpoints:      []string{rpcURL},
		Symbol:            symbol,
		SymbolName:        symbolName,
		Decimals:          decimals,
		Coin:              c,
		SupportedKeyrings: keyringsFor(c, chainID),
	}
}

var knownEthChains = []shared.NetworkInfo{
	known(coin.ETH, MainnetChainID, "Ethereum Mainnet", "https://etherscan.io", "", "ETH", "Ethereum", 18),
	known(coin.ETH, BaseMainnetChainID, "Base", "https://basescan.org", "", "ETH", "Ether", 18),
	known(coin.ETH, PolygonMainnetChainID, "Polygon Mainnet", "https://polygonscan.com", "", "MATIC", "MATIC", 18),
	known(coin.ETH, BnbSmartChainMainnetChainID, "BNB Smart Chain", "https://bscscan.com", "", "BNB", "BNB", 18),
	known(coin.ETH, OptimismMainnetChainID, "Optimism", "https://optimistic.etherscan.io", "", "ETH", "Ether", 18),
	known(coin.ETH, AvalancheMainnetChainID, "Avalanche C-Chain", "https://snowtrace.io", "", "AVAX", "Avalanche", 18),
	known(coin.ETH, FilecoinEthereumMainnetChainID, "Filecoin EVM Mainnet", "https://filfox.info/en/message",
		"https://api.node.glif.io/rpc/v1", "FIL", "Filecoin", 18),
	known(coin.ETH, NeonEVMMainnetChainID, "Neon EVM", "https://neonscan.org",
		"https://neon-proxy-mainnet.solana.p2p.org", "NEON", "Neon", 18),
	known(coin.ETH, SepoliaChainID, "Sepolia Test Network", "https://sepolia.etherscan.io", "", "ETH", "Ethereum", 18),
	known(coin.ETH, FilecoinEthereumTestnetChainID, "Filecoin EVM Testnet", "https://calibration.filfox.info/en/message",
		"https://api.calibration.node.glif.io/rpc/v1", "FIL", "Filecoin", 18),
	known(coin.ETH, LocalhostChainID, "Localhost", ganacheLocalhostURL, ganacheLocalhostURL, "ETH", "Ethereum", 18),
}

var knownSolChains = []shared.NetworkInfo{
	known(coin.SOL, SolanaMainnet, "Solana Mainnet Beta", "https://explorer.solana.com/", "", "SOL", "Solana", 9),
	known(coin.SOL, SolanaTestnet, "Solana Testnet", "https://explorer.solana.com/?cluster=testnet",
		"https://api.testnet.solana.com", "SOL", "Solana", 9),
	known(coin.SOL, SolanaDevnet, "Solana Devnet", "https://explorer.solana.com/?cluster=devnet",
		"https://api.devnet.solana.com", "SOL", "Solana", 9),
	known(coin.SOL, LocalhostChainID, "Solana Localhost",
		"https://explorer.solana.com/?cluster=custom&customUrl=http%3A%2F%2Flocalhost%3A8899",
		solanaLocalhostURL, "SOL", "Solana", 9),
}

var knownFilChains = []shared.NetworkInfo{
	known(coin.FIL, FilecoinMainnet, "Filecoin Mainnet", "https://filscan.io/tipset/message-detail",
		"https://api.node.glif.io/rpc/v0", "FIL", "Filecoin", 18),
	known(coin.FIL, FilecoinTestnet, "Filecoin Testnet", "https://calibration.filscan.io/tipset/message-detail",
		"https://api.calibration.node.glif.io/rpc/v0", "FIL", "Filecoin", 18),
	known(coin.FIL, LocalhostChainID, "Filecoin Localhost", filecoinLocalhostURL, filecoinLocalhostURL, "FIL", "Filecoin", 18),
}

// KnownChains returns copies of the built-in chains for a coin in display order.
func KnownChains(c coin.Type) []shared.NetworkInfo {
	var src []shared.NetworkInfo
	switch c {
	case coin.ETH:
		src = knownEthChains
	case coin.SOL:
		src = knownSolChains
	case coin.FIL:
		src = knownFilChains
	}
	out := make([]shared.NetworkInfo, 0, len(src))
	for _, n := range src {
		out = append(out, n.Clone())
	}
	return out
}

// DefaultChainID is the chain used when nothing is selected.
func DefaultChainID(c coin.Type) string {
	switch c {
	case coin.SOL:
		return SolanaMainnet
	case coin.FIL:
		return FilecoinMainnet
	default:
		return MainnetChainID
	}
}

// MainnetURL is the active endpoint of a built-in chain, used by name resolvers
// that always talk to a fixed chain.
func MainnetURL(c coin.Type, chainID string) string {
	for _, n := range KnownChains(c) {
		if strings.EqualFold(n.ChainID, chainID) {
			return n.RPCEndpoints[0]
		}
	}
	return ""
}
