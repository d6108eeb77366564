package rpc

import (
	"context"
	"encoding/json"
	"math/big"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/shared"
)

// EndpointInfo is what an ETH endpoint reports about itself.
type EndpointInfo struct {
	URL           string `json:"rpcUrl"`
	ChainID       string `json:"chainId"`
	ChainIDInt    int64  `json:"chainIdInt,omitempty"`
	ClientVersion string `json:"clientVersion,omitempty"`
	LatestBlock   string `json:"latestBlock,omitempty"`
}

// ProbeChainID asks endpoint for eth_chainId and returns it lowercased.
func ProbeChainID(ctx context.Context, c Caller, endpoint *url.URL) (string, error) {
	raw, err := c.Call(ctx, endpoint, coin.ETH, "eth_chainId")
	if err != nil {
		return "", err
	}
	id, err := DecodeString(raw, coin.ETH)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(id)), nil
}

// ProbeEndpoint reads the chain id plus optional details used when a user
// types in a new RPC URL. Only eth_chainId is required to answer.
func ProbeEndpoint(ctx context.Context, c Caller, rawURL string) (EndpointInfo, error) {
	out := EndpointInfo{URL: strings.TrimSpace(rawURL)}
	u := shared.ParseHTTPURL(out.URL)
	if u == nil {
		return out, errors.Newf("rpc: invalid rpc url %q", rawURL)
	}

	id, err := ProbeChainID(ctx, c, u)
	if err != nil {
		return out, err
	}
	out.ChainID = id
	if bi, ok := new(big.Int).SetString(strings.TrimPrefix(id, "0x"), 16); ok && bi.IsInt64() {
		out.ChainIDInt = bi.Int64()
	}

	// net_version is decimal; only used when eth_chainId was not a hex quantity
	if out.ChainIDInt == 0 {
		if raw, err := c.Call(ctx, u, coin.ETH, "net_version"); err == nil {
			if s, err := DecodeString(raw, coin.ETH); err == nil {
				if v, perr := strconv.ParseInt(strings.TrimSpace(s), 10, 64); perr == nil {
					out.ChainIDInt = v
				}
			}
		}
	}

	if raw, err := c.Call(ctx, u, coin.ETH, "web3_clientVersion"); err == nil {
		if s, err := DecodeString(raw, coin.ETH); err == nil {
			out.ClientVersion = strings.TrimSpace(s)
		}
	}

	if raw, err := c.Call(ctx, u, coin.ETH, "eth_getBlockByNumber", "latest", false); err == nil {
		var blk struct {
			Number string `json:"number"`
		}
		if json.Unmarshal(raw, &blk) == nil {
			out.LatestBlock = strings.ToLower(blk.Number)
		}
	}
	return out, nil
}
