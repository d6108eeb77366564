package shared

import (
	"net/url"
	"strings"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
)

type KeyringID string

const (
	KeyringDefault         KeyringID = "default"
	KeyringSolana          KeyringID = "solana"
	KeyringFilecoin        KeyringID = "filecoin"
	KeyringFilecoinTestnet KeyringID = "filecoin_testnet"
)

// NetworkInfo describes one chain. Identity is (ChainID, Coin).
type NetworkInfo struct {
	ChainID                string      `json:"chainId"`
	ChainName              string      `json:"chainName"`
	BlockExplorerURLs      []string    `json:"blockExplorerUrls,omitempty"`
	IconURLs               []string    `json:"iconUrls,omitempty"`
	ActiveRPCEndpointIndex int         `json:"activeRpcEndpointIndex"`
	RPCEndpoints           []string    `json:"rpcEndpoints"`
	SymbolName             string      `json:"symbolName"`
	Symbol                 string      `json:"symbol"`
	Decimals               uint8       `json:"decimals"`
	Coin                   coin.Type   `json:"coin"`
	SupportedKeyrings      []KeyringID `json:"supportedKeyrings,omitempty"`
}

// ActiveRPCURL returns the selected endpoint, nil when missing or not http(s).
func (n NetworkInfo) ActiveRPCURL() *url.URL {
	if n.ActiveRPCEndpointIndex < 0 || n.ActiveRPCEndpointIndex >= len(n.RPCEndpoints) {
		return nil
	}
	return ParseHTTPURL(n.RPCEndpoints[n.ActiveRPCEndpointIndex])
}

// ParseHTTPURL parses an absolute http(s) URL, nil otherwise.
func ParseHTTPURL(raw string) *url.URL {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil
	}
	return u
}

func (n NetworkInfo) Clone() NetworkInfo {
	out := n
	out.BlockExplorerURLs = append([]string(nil), n.BlockExplorerURLs...)
	out.IconURLs = append([]string(nil), n.IconURLs...)
	out.RPCEndpoints = append([]string(nil), n.RPCEndpoints...)
	out.SupportedKeyrings = append([]KeyringID(nil), n.SupportedKeyrings...)
	return out
}

// Request and response bodies of the loopback API.

type AddNetworkReq struct {
	Network NetworkInfo `json:"network"`
	Origin  string      `json:"origin,omitempty"`
}

type SelectNetworkReq struct {
	ChainID string `json:"chainId"`
	Origin  string `json:"origin,omitempty"`
}

type SwitchChainReq struct {
	ChainID string `json:"chainId"`
	Origin  string `json:"origin"`
}

type SwitchChainProcessedReq struct {
	Approved bool   `json:"approved"`
	Origin   string `json:"origin"`
}

type AddChainCompletedReq struct {
	ChainID  string `json:"chainId"`
	Approved bool   `json:"approved"`
}

type ResolveMethodReq struct {
	Method string `json:"method"`
}
