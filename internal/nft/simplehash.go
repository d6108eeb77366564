// Package nft reads NFT metadata and ownership from a SimpleHash compatible
// API and fetches token URI metadata.
package nft

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/tidwall/gjson"
	"gopkg.in/h2non/gentleman.v2"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/constants"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/encoding"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/httpclient"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/networks"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpc"
)

// MaxBatchSize is the most ids one assets request may carry.
const MaxBatchSize = 50

var ErrSimpleHash = errors.New("nft: simplehash request failed")

// simpleHashChains maps wallet chain ids to SimpleHash chain names.
var simpleHashChains = map[string]string{
	networks.MainnetChainID:              "ethereum",
	networks.SepoliaChainID:              "ethereum-sepolia",
	networks.PolygonMainnetChainID:       "polygon",
	networks.OptimismMainnetChainID:      "optimism",
	networks.AvalancheMainnetChainID:     "avalanche",
	networks.BnbSmartChainMainnetChainID: "bsc",
	networks.BaseMainnetChainID:          "base",
	"0xa4b1":                             "arbitrum",
	"0xa4ba":                             "arbitrum-nova",
	"0x64":                               "gnosis",
	"0x144":                              "zksync-era",
	"0x44d":                              "polygon-zkevm",
	networks.SolanaMainnet:               "solana",
	networks.SolanaTestnet:               "solana-testnet",
	networks.SolanaDevnet:                "solana-devnet",
}

var chainsBySimpleHash = func() map[string]string {
	m := make(map[string]string, len(simpleHashChains))
	for id, name := range simpleHashChains {
		m[name] = id
	}
	return m
}()

// Identifier names one NFT. TokenID is a hex quantity and empty for Solana
// mints.
type Identifier struct {
	ChainID         string `json:"chainId"`
	ContractAddress string `json:"contractAddress"`
	TokenID         string `json:"tokenId,omitempty"`
}

// key is the identity used to match response items back to requested ids.
func (id Identifier) key(c coin.Type) string {
	contract := id.ContractAddress
	tokenID := ""
	if c == coin.ETH {
		contract = strings.ToLower(contract)
		if v, err := encoding.HexToUint256(id.TokenID); err == nil {
			tokenID = v.Hex()
		}
	}
	return strings.ToLower(id.ChainID) + "|" + contract + "|" + tokenID
}

type Attribute struct {
	TraitType string `json:"traitType"`
	Value     string `json:"value"`
}

type Metadata struct {
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Image           string      `json:"image"`
	ExternalURL     string      `json:"externalUrl"`
	BackgroundColor string      `json:"backgroundColor"`
	Attributes      []Attribute `json:"attributes"`
	Collection      string      `json:"collection"`
}

type SimpleHashClient struct {
	cli         *gentleman.Client
	base        string
	servicesKey string
	cache       Cache
	timeout     time.Duration
	isProxy     func(*url.URL) bool
}

type Option func(*SimpleHashClient)

// WithBaseURL points the client at another SimpleHash compatible host.
func WithBaseURL(base string) Option {
	return func(c *SimpleHashClient) { c.base = strings.TrimSuffix(base, "/") }
}

func WithServicesKey(key string) Option {
	return func(c *SimpleHashClient) { c.servicesKey = strings.TrimSpace(key) }
}

func WithCache(cache Cache) Option {
	return func(c *SimpleHashClient) { c.cache = cache }
}

func WithTimeout(d time.Duration) Option {
	return func(c *SimpleHashClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func NewSimpleHashClient(opts ...Option) *SimpleHashClient {
	c := &SimpleHashClient{
		cli:     gentleman.New(),
		base:    constants.SimpleHashProxyURL,
		cache:   noCache{},
		timeout: constants.DefaultRequestTimeout,
		isProxy: rpc.IsProxyEndpoint,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// assetsURL builds the batched assets query. ok is false when the batch is
// empty, too large, or names an unsupported chain or token id.
func (c *SimpleHashClient) assetsURL(ct coin.Type, ids []Identifier) (string, bool) {
	if len(ids) == 0 || len(ids) > MaxBatchSize {
		return "", false
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		chain, ok := simpleHashChains[strings.ToLower(id.ChainID)]
		if !ok || id.ContractAddress == "" {
			return "", false
		}
		if ct == coin.SOL {
			parts = append(parts, chain+"."+id.ContractAddress)
			continue
		}
		tokenID, err := encoding.HexToBase10(id.TokenID)
		if err != nil {
			return "", false
		}
		parts = append(parts, chain+"."+id.ContractAddress+"."+tokenID)
	}
	q := url.Values{}
	q.Set("nft_ids", strings.Join(parts, ","))
	return c.base + "/api/v0/nfts/assets?" + q.Encode(), true
}

func (c *SimpleHashClient) get(ctx context.Context, target string) ([]byte, error) {
	if body, err := c.cache.Get(target); err == nil {
		return body, nil
	}

	req := c.cli.Request()
	req.Method(http.MethodGet)
	req.URL(target)
	if u, err := url.Parse(target); err == nil && c.servicesKey != "" && c.isProxy(u) {
		req.SetHeader(constants.ServicesKeyHeader, c.servicesKey)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	httpclient.Bind(ctx, req)

	resp, err := req.Send()
	if err != nil {
		log.Warn("nft: simplehash request failed", "error", err)
		return nil, errors.Wrap(ErrSimpleHash, err.Error())
	}
	defer resp.Close()
	if !resp.Ok {
		log.Warn("nft: simplehash non-2xx response", "status", resp.StatusCode)
		return nil, errors.Wrapf(ErrSimpleHash, "status %d", resp.StatusCode)
	}
	body := resp.Bytes()
	if !gjson.ValidBytes(body) {
		return nil, errors.Wrap(ErrSimpleHash, "malformed response")
	}
	if err := c.cache.Set(target, body); err != nil {
		log.Warn("nft: cache write failed", "error", err)
	}
	return body, nil
}

// nftItem is one entry of the "nfts" array with its identity resolved.
type nftItem struct {
	key  string
	body gjson.Result
}

func parseItems(body []byte, ct coin.Type) []nftItem {
	var out []nftItem
	gjson.GetBytes(body, "nfts").ForEach(func(_, nft gjson.Result) bool {
		if !nft.IsObject() {
			return true
		}
		chainID, ok := chainsBySimpleHash[nft.Get("chain").String()]
		contract := nft.Get("contract_address")
		if !ok || contract.Type != gjson.String {
			return true
		}
		id := Identifier{ChainID: chainID, ContractAddress: contract.String()}
		if tid := nft.Get("token_id"); tid.Type == gjson.String && ct == coin.ETH {
			hex, err := encoding.Base10ToHex(tid.String())
			if err != nil {
				return true
			}
			id.TokenID = hex
		}
		out = append(out, nftItem{key: id.key(ct), body: nft})
		return true
	})
	return out
}

// cdnImage moves an image onto the wallet CDN proxy host.
func cdnImage(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Host = constants.SimpleHashCDNHost
	return u.String()
}

func parseMetadata(nft gjson.Result) Metadata {
	m := Metadata{
		Name:            nft.Get("name").String(),
		Description:     nft.Get("description").String(),
		ExternalURL:     nft.Get("external_url").String(),
		BackgroundColor: nft.Get("background_color").String(),
		Collection:      nft.Get("collection.name").String(),
		Attributes:      []Attribute{},
	}
	if img := nft.Get("image_url"); img.Type == gjson.String {
		m.Image = cdnImage(img.String())
	}
	nft.Get("extra_metadata.attributes").ForEach(func(_, a gjson.Result) bool {
		if a.IsObject() {
			m.Attributes = append(m.Attributes, Attribute{
				TraitType: a.Get("trait_type").String(),
				Value:     a.Get("value").String(),
			})
		}
		return true
	})
	return m
}

// GetNftMetadatas returns the metadata of ids in input order. Ids the API
// does not know are left out. Oversized batches and unsupported chains give
// an empty result.
func (c *SimpleHashClient) GetNftMetadatas(ctx context.Context, ct coin.Type, ids []Identifier) ([]Metadata, error) {
	target, ok := c.assetsURL(ct, ids)
	if !ok {
		return []Metadata{}, nil
	}
	body, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}
	byKey := map[string]Metadata{}
	for _, it := range parseItems(body, ct) {
		byKey[it.key] = parseMetadata(it.body)
	}
	out := make([]Metadata, 0, len(ids))
	for _, id := range ids {
		if m, ok := byKey[id.key(ct)]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// GetNftBalances returns how many of each id wallet holds, in input order.
func (c *SimpleHashClient) GetNftBalances(ctx context.Context, wallet string, ids []Identifier, ct coin.Type) ([]uint64, error) {
	target, ok := c.assetsURL(ct, ids)
	if !ok {
		return []uint64{}, nil
	}
	body, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}
	owners := map[string]map[string]uint64{}
	for _, it := range parseItems(body, ct) {
		list := it.body.Get("owners")
		if !list.IsArray() {
			continue
		}
		m := map[string]uint64{}
		list.ForEach(func(_, o gjson.Result) bool {
			addr := o.Get("owner_address")
			qty := o.Get("quantity")
			if addr.Type != gjson.String || qty.Type != gjson.Number || qty.Num < 0 {
				return true
			}
			m[ownerKey(addr.String(), ct)] = qty.Uint()
			return true
		})
		owners[it.key] = m
	}
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		out = append(out, owners[id.key(ct)][ownerKey(wallet, ct)])
	}
	return out, nil
}

func ownerKey(addr string, ct coin.Type) string {
	if ct == coin.ETH {
		return strings.ToLower(addr)
	}
	return addr
}
