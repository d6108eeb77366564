// Package coingecko maps on-chain assets to coingecko ids for price lookups.
package coingecko

import (
	"strings"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/networks"
)

type key struct {
	chainID  string
	contract string
}

// platforms are coingecko asset platform ids per chain.
var platforms = map[string]string{
	networks.MainnetChainID:                 "ethereum",
	networks.PolygonMainnetChainID:          "polygon-pos",
	networks.BnbSmartChainMainnetChainID:    "binance-smart-chain",
	networks.AvalancheMainnetChainID:        "avalanche",
	networks.OptimismMainnetChainID:         "optimistic-ethereum",
	networks.BaseMainnetChainID:             "base",
	networks.NeonEVMMainnetChainID:          "neon-evm",
	networks.FilecoinEthereumMainnetChainID: "filecoin",
	networks.SolanaMainnet:                  "solana",
	networks.FilecoinMainnet:                "filecoin",
}

// An empty contract is the chain's native asset. EVM contracts are stored
// lowercase, Solana mints as-is.
var ids = map[key]string{
	{networks.MainnetChainID, ""}:                 "ethereum",
	{networks.PolygonMainnetChainID, ""}:          "matic-network",
	{networks.BnbSmartChainMainnetChainID, ""}:    "binancecoin",
	{networks.AvalancheMainnetChainID, ""}:        "avalanche-2",
	{networks.OptimismMainnetChainID, ""}:         "ethereum",
	{networks.BaseMainnetChainID, ""}:             "ethereum",
	{networks.NeonEVMMainnetChainID, ""}:          "neon",
	{networks.FilecoinEthereumMainnetChainID, ""}: "filecoin",
	{networks.SolanaMainnet, ""}:                  "solana",
	{networks.FilecoinMainnet, ""}:                "filecoin",

	{networks.MainnetChainID, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"}: "usd-coin",
	{networks.MainnetChainID, "0xdac17f958d2ee523a2206206994597c13d831ec7"}: "tether",
	{networks.MainnetChainID, "0x6b175474e89094c44da98b954eedeac495271d0f"}: "dai",
	{networks.MainnetChainID, "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"}: "weth",
	{networks.MainnetChainID, "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599"}: "wrapped-bitcoin",
	{networks.MainnetChainID, "0x0d8775f648430679a709e98d2b0cb6250d2887ef"}: "basic-attention-token",
	{networks.MainnetChainID, "0x514910771af9ca656af840dff83e8264ecf986ca"}: "chainlink",
	{networks.MainnetChainID, "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984"}: "uniswap",

	{networks.PolygonMainnetChainID, "0x2791bca1f2de4661ed88a30c99a7a9449aa84174"}: "usd-coin",
	{networks.PolygonMainnetChainID, "0xc2132d05d31c914a87c6611c10748aeb04b58e8f"}: "tether",
	{networks.PolygonMainnetChainID, "0x0d500b1d8e8ef31e21c99d1db9a6444d3adf1270"}: "wmatic",
	{networks.PolygonMainnetChainID, "0x3cef98bb43d732e2f285ee605a8158cde967d219"}: "basic-attention-token",

	{networks.OptimismMainnetChainID, "0x4200000000000000000000000000000000000042"}: "optimism",
	{networks.OptimismMainnetChainID, "0x0b2c639c533813f4aa9d7837caf62653d097ff85"}: "usd-coin",

	{networks.BaseMainnetChainID, "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"}: "usd-coin",
	{networks.BaseMainnetChainID, "0x4200000000000000000000000000000000000006"}: "weth",

	{networks.BnbSmartChainMainnetChainID, "0xe9e7cea3dedca5984780bafc599bd69add087d56"}: "binance-usd",
	{networks.BnbSmartChainMainnetChainID, "0x55d398326f99059ff775485246999027b3197955"}: "tether",

	{networks.AvalancheMainnetChainID, "0xb97ef9ef8734c71904d8002f8b6bc66dd9c48a6e"}: "usd-coin",

	{networks.SolanaMainnet, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"}: "usd-coin",
	{networks.SolanaMainnet, "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"}: "tether",
	{networks.SolanaMainnet, "EPeUFDgHRxs9xxEPVaL6kfGQvCon7jmAWKVUHuux1Tpz"}: "basic-attention-token",
}

// GetCoingeckoID looks up the id of contract on chainID. EVM contracts match
// case-insensitively.
func GetCoingeckoID(chainID, contract string) (string, bool) {
	chainID = strings.ToLower(strings.TrimSpace(chainID))
	contract = strings.TrimSpace(contract)
	if strings.HasPrefix(contract, "0x") || strings.HasPrefix(contract, "0X") {
		contract = strings.ToLower(contract)
	}
	id, ok := ids[key{chainID: chainID, contract: contract}]
	return id, ok
}

// ChainPlatform returns the coingecko asset platform of chainID.
func ChainPlatform(chainID string) (string, bool) {
	p, ok := platforms[strings.ToLower(strings.TrimSpace(chainID))]
	return p, ok
}
