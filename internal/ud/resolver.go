// Package ud resolves Unstoppable Domains through the ProxyReader contracts,
// trying Ethereum, then Polygon, then Base.
package ud

import (
	"context"
	"math/big"
	"net/url"
	"regexp"
	"strings"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/encoding"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/eth"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/ipfs"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/networks"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpc"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/shared"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/solana"
)

// ProxyReaders lists the reader contract of each chain in lookup order.
var ProxyReaders = []struct {
	ChainID  string
	Contract string
}{
	{networks.MainnetChainID, "0x578853aa776Eef10CeE6c4dd2B5862bdcE767A8B"},
	{networks.PolygonMainnetChainID, "0x91EDd8708062bd4233f4Dd0FCE15A7cb4d500091"},
	{networks.BaseMainnetChainID, "0x78c4b414e1abdf0de267deda01dffd4cd0817a16"},
}

var tlds = []string{
	"crypto", "x", "coin", "nft", "dao", "wallet", "blockchain", "bitcoin", "zil",
	"altimist", "anime", "klever", "manga", "polygon", "unstoppable", "pudgy",
	"tball", "stepn", "secret", "raiin", "pog", "clay", "metropolis", "witg",
	"ubu", "kryptic", "farms", "dfz", "kresus", "binanceus", "austin", "bitget",
	"wrkx", "calicoin", "go", "hi", "888",
}

var domainRegex = regexp.MustCompile(`^(?:[\w-]+\.)+(?:` + strings.Join(tlds, "|") + `)$`)

func IsValidUnstoppableDomain(domain string) bool {
	return domainRegex.MatchString(domain)
}

// dns record keys, in the order getMany returns them
const (
	keyIpfsHash = iota
	keyIpfsHashLegacy
	keyDNSA
	keyDNSAAAA
	keyRedirectURL
	keyRedirectDomain
)

var dnsKeys = []string{
	"dweb.ipfs.hash",
	"ipfs.html.value",
	"dns.A",
	"dns.AAAA",
	"browser.redirect_url",
	"ipfs.redirect_domain.value",
}

// Token identifies the asset an address is requested for.
type Token struct {
	Symbol  string
	ChainID string
	Coin    coin.Type
}

type Resolver struct {
	client *eth.Client
	addrs  *shared.Flight[string]
	dns    *shared.Flight[*url.URL]
}

func NewResolver(client *eth.Client) *Resolver {
	return &Resolver{
		client: client,
		addrs:  &shared.Flight[string]{Coin: coin.ETH},
		dns:    &shared.Flight[*url.URL]{Coin: coin.ETH},
	}
}

// getMany calls getMany(string[],uint256) on one chain.
func (r *Resolver) getMany(ctx context.Context, chainID, contract string, keys []string, domain string) ([]string, error) {
	tokenID := new(big.Int).SetBytes(encoding.Namehash(domain).Bytes())
	data, err := encoding.EncodeCallHex("getMany(string[],uint256)", []string{"string[]", "uint256"}, keys, tokenID)
	if err != nil {
		return nil, rpcerr.InvalidParams(coin.ETH)
	}
	s, err := r.client.Call(ctx, chainID, rpc.CallObject{To: contract, Data: data}, eth.BlockLatest)
	if err != nil {
		return nil, err
	}
	b, err := encoding.HexToBytes(s)
	if err != nil {
		return nil, rpcerr.Parsing(coin.ETH)
	}
	values, err := encoding.DecodeStringArray(b)
	if err != nil || len(values) != len(keys) {
		return nil, rpcerr.Parsing(coin.ETH)
	}
	return values, nil
}

// fallback walks ProxyReaders in order. pick returns ok=false for an empty
// result, which moves on to the next chain. Any call error is terminal.
func fallback[T any](ctx context.Context, r *Resolver, keys []string, domain string, pick func([]string) (T, bool)) (T, error) {
	var zero T
	for _, pr := range ProxyReaders {
		values, err := r.getMany(ctx, pr.ChainID, pr.Contract, keys, domain)
		if err != nil {
			return zero, err
		}
		if v, ok := pick(values); ok {
			return v, nil
		}
	}
	return zero, nil
}

// networkVersion is the UD record suffix of multi-chain tokens.
func networkVersion(t Token) string {
	switch t.Coin {
	case coin.SOL:
		return "SOLANA"
	case coin.ETH:
		switch t.ChainID {
		case networks.MainnetChainID:
			return "ERC20"
		case networks.PolygonMainnetChainID:
			return "MATIC"
		case networks.BnbSmartChainMainnetChainID:
			return "BEP20"
		}
	}
	return ""
}

func defaultKey(c coin.Type) string {
	switch c {
	case coin.SOL:
		return "crypto.SOL.address"
	case coin.FIL:
		return "crypto.FIL.address"
	}
	return "crypto.ETH.address"
}

// WalletAddrKeys returns record keys from most to least specific.
func WalletAddrKeys(t Token) []string {
	sym := strings.ToUpper(strings.TrimSpace(t.Symbol))
	var keys []string
	if sym != "" {
		if v := networkVersion(t); v != "" {
			keys = append(keys, "crypto."+sym+".version."+v+".address")
		}
		keys = append(keys, "crypto."+sym+".address")
	}
	def := defaultKey(t.Coin)
	for _, k := range keys {
		if k == def {
			return keys
		}
	}
	return append(keys, def)
}

func validAddress(c coin.Type, addr string) bool {
	switch c {
	case coin.SOL:
		_, err := solana.ParsePublicKey(addr)
		return err == nil
	case coin.ETH:
		return encoding.IsValidEthAddress(addr)
	}
	return addr != ""
}

// GetWalletAddr resolves the address domain holds for token. An empty string
// without error means no chain has a record.
func (r *Resolver) GetWalletAddr(ctx context.Context, domain string, t Token) (string, error) {
	if !IsValidUnstoppableDomain(domain) {
		return "", rpcerr.InvalidParams(coin.ETH)
	}
	if !t.Coin.Valid() {
		t.Coin = coin.ETH
	}
	keys := WalletAddrKeys(t)
	return r.addrs.Do(ctx, domain+"|"+strings.Join(keys, ","), func(ctx context.Context) (string, error) {
		return fallback(ctx, r, keys, domain, func(values []string) (string, bool) {
			for _, v := range values {
				v = strings.TrimSpace(v)
				if v != "" && validAddress(t.Coin, v) {
					return v, true
				}
			}
			return "", false
		})
	})
}

// ResolveDns resolves the browsable URL of domain: an ipfs:// URL when an
// IPFS hash is set, else the redirect URL. nil without error means none.
func (r *Resolver) ResolveDns(ctx context.Context, domain string) (*url.URL, error) {
	if !IsValidUnstoppableDomain(domain) {
		return nil, rpcerr.InvalidParams(coin.ETH)
	}
	return r.dns.Do(ctx, domain, func(ctx context.Context) (*url.URL, error) {
		return fallback(ctx, r, dnsKeys, domain, resolveURL)
	})
}

func resolveURL(values []string) (*url.URL, bool) {
	hash := values[keyIpfsHash]
	if hash == "" {
		hash = values[keyIpfsHashLegacy]
	}
	if hash != "" {
		if u, ok := ipfs.ContentURL(hash, ""); ok {
			return u, true
		}
	}
	for _, raw := range []string{values[keyRedirectURL], values[keyRedirectDomain]} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err == nil && (u.Scheme == "https" || u.Scheme == "http") && u.Host != "" {
			return u, true
		}
	}
	return nil, false
}
