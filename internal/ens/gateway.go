package ens

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"gopkg.in/h2non/gentleman.v2"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/encoding"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/httpclient"
)

const defaultGatewayTimeout = 30 * time.Second

var ErrGateway = errors.New("ens: offchain gateway failed")

// Gateway performs EIP-3668 CCIP-read requests.
type Gateway struct {
	cli     *gentleman.Client
	timeout time.Duration
}

func NewGateway(timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}
	return &Gateway{cli: gentleman.New(), timeout: timeout}
}

type gatewayResponse struct {
	Data string `json:"data"`
}

// allowedGatewayURL accepts https gateways, and plain http only on loopback.
func allowedGatewayURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	switch u.Scheme {
	case "https":
		return true
	case "http":
		h := u.Hostname()
		return h == "localhost" || h == "127.0.0.1" || h == "::1"
	}
	return false
}

// Fetch resolves callData against the first usable URL template. Templates
// with {data} are fetched with GET, others get a JSON POST body.
func (g *Gateway) Fetch(ctx context.Context, urls []string, sender string, callData []byte) ([]byte, error) {
	sender = strings.ToLower(sender)
	data := encoding.ToHex(callData)

	var tmpl string
	for _, u := range urls {
		if allowedGatewayURL(u) {
			tmpl = u
			break
		}
	}
	if tmpl == "" {
		return nil, errors.Wrap(ErrGateway, "no usable gateway url")
	}

	target := strings.ReplaceAll(tmpl, "{sender}", sender)
	req := g.cli.Request()
	if strings.Contains(tmpl, "{data}") {
		req.Method("GET")
		req.URL(strings.ReplaceAll(target, "{data}", data))
	} else {
		req.Method("POST")
		req.URL(target)
		req.JSON(map[string]string{"sender": sender, "data": data})
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	httpclient.Bind(ctx, req)

	resp, err := req.Send()
	if err != nil {
		log.Warn("ens: gateway request failed", "sender", sender, "error", err)
		return nil, errors.Wrap(ErrGateway, err.Error())
	}
	defer resp.Close()
	if !resp.Ok {
		log.Warn("ens: gateway non-2xx response", "sender", sender, "status", resp.StatusCode)
		return nil, errors.Wrapf(ErrGateway, "status %d", resp.StatusCode)
	}

	var out gatewayResponse
	if err := resp.JSON(&out); err != nil {
		return nil, errors.Wrap(ErrGateway, "malformed response")
	}
	b, err := encoding.HexToBytes(out.Data)
	if err != nil || len(b) == 0 {
		return nil, errors.Wrap(ErrGateway, "empty data")
	}
	return b, nil
}
