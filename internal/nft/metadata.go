package nft

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"
	"gopkg.in/h2non/gentleman.v2"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/constants"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/httpclient"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/ipfs"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
)

// MetadataFetcher loads the JSON document a token URI points at.
type MetadataFetcher struct {
	cli     *gentleman.Client
	gateway string
	timeout time.Duration
	client  *http.Client
}

func NewMetadataFetcher(gateway string, timeout time.Duration) *MetadataFetcher {
	if gateway == "" {
		gateway = constants.DefaultIpfsGateway
	}
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	return &MetadataFetcher{cli: gentleman.New(), gateway: gateway, timeout: timeout}
}

// WithHTTPClient swaps the client used for https fetches.
func (f *MetadataFetcher) WithHTTPClient(c *http.Client) *MetadataFetcher {
	f.client = c
	return f
}

func methodNotSupported() error {
	return rpcerr.Eth(rpcerr.ProviderMethodNotSupported, rpcerr.MsgMethodNotSupported)
}

// Fetch supports data:, ipfs:// and https:// URIs. Any other scheme is not
// supported. The returned document is compacted JSON.
func (f *MetadataFetcher) Fetch(ctx context.Context, uri *url.URL) (string, error) {
	if uri == nil {
		return "", rpcerr.InvalidParams(coin.ETH)
	}
	switch uri.Scheme {
	case "data":
		doc, ok := parseDataURI(uri.String())
		if !ok {
			return "", rpcerr.Parsing(coin.ETH)
		}
		return compactJSON(doc)
	case "ipfs":
		gw, ok := ipfs.ToGatewayURL(uri, f.gateway)
		if !ok {
			return "", rpcerr.Parsing(coin.ETH)
		}
		return f.get(ctx, gw)
	case "https":
		return f.get(ctx, uri)
	}
	return "", methodNotSupported()
}

// parseDataURI extracts the payload of a data:application/json URI, base64
// or percent encoded.
func parseDataURI(raw string) ([]byte, bool) {
	rest, ok := strings.CutPrefix(raw, "data:")
	if !ok {
		return nil, false
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, false
	}
	params := strings.Split(meta, ";")
	if !strings.EqualFold(strings.TrimSpace(params[0]), "application/json") {
		return nil, false
	}
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(p, "base64") {
			isBase64 = true
		}
	}
	if isBase64 {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, false
		}
		return b, true
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, false
	}
	return []byte(s), true
}

func compactJSON(doc []byte) (string, error) {
	var buf bytes.Buffer
	if len(bytes.TrimSpace(doc)) == 0 || json.Compact(&buf, doc) != nil {
		return "", rpcerr.Parsing(coin.ETH)
	}
	return buf.String(), nil
}

func (f *MetadataFetcher) get(ctx context.Context, u *url.URL) (string, error) {
	req := f.cli.Request()
	req.Method(http.MethodGet)
	req.URL(u.String())
	if f.client != nil {
		req.Context.Client = f.client
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	httpclient.Bind(ctx, req)

	resp, err := req.Send()
	if err != nil {
		log.Warn("nft: metadata request failed", "host", u.Host, "error", err)
		return "", rpcerr.Internal(coin.ETH)
	}
	defer resp.Close()
	if !resp.Ok {
		log.Warn("nft: metadata non-2xx response", "host", u.Host, "status", resp.StatusCode)
		return "", rpcerr.Internal(coin.ETH)
	}
	return compactJSON(resp.Bytes())
}
