// Package ens resolves ENS names, including ENSIP-10 wildcard resolvers and
// EIP-3668 offchain (CCIP-read) lookups.
package ens

import (
	"context"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/encoding"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/eth"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/prefs"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/shared"
)

// Prefs stores the offchain lookup consent.
type Prefs interface {
	ResolveMethods() prefs.ResolveMethods
	SetResolveMethods(ctx context.Context, fn func(r *prefs.ResolveMethods)) error
}

// Options carry a per-call offchain decision. Remember persists it.
type Options struct {
	AllowOffchain *bool
	Remember      bool
}

// Result is a resolved record. An empty Value with no error means the name
// has no such record.
type Result struct {
	Value                  string `json:"value"`
	ContentHash            []byte `json:"contentHash,omitempty"`
	RequireOffchainConsent bool   `json:"requireOffchainConsent"`
}

type Resolver struct {
	client  *eth.Client
	gateway *Gateway
	prefs   Prefs
	flight  *shared.Flight[taskResult]
}

func NewResolver(client *eth.Client, gateway *Gateway, p Prefs) *Resolver {
	if gateway == nil {
		gateway = NewGateway(0)
	}
	return &Resolver{client: client, gateway: gateway, prefs: p, flight: &shared.Flight[taskResult]{Coin: coin.ETH}}
}

// allowOffchain combines the stored pref with the per-call option.
func (r *Resolver) allowOffchain(ctx context.Context, opts *Options) *bool {
	if opts != nil && opts.Remember && opts.AllowOffchain != nil {
		allow := *opts.AllowOffchain
		err := r.prefs.SetResolveMethods(ctx, func(m *prefs.ResolveMethods) {
			m.EnsOffchain = prefs.ResolveMethodDisabled
			if allow {
				m.EnsOffchain = prefs.ResolveMethodEnabled
			}
		})
		if err != nil {
			log.Error("ens: persist offchain consent", "error", err)
		}
	}

	pref := r.prefs.ResolveMethods().EnsOffchain
	yes, no := true, false
	switch {
	case pref == prefs.ResolveMethodEnabled:
		return &yes
	case opts != nil && opts.AllowOffchain != nil:
		return opts.AllowOffchain
	case pref == prefs.ResolveMethodDisabled:
		return &no
	}
	return nil
}

func flightKey(kind, domain string, allow *bool) string {
	switch {
	case allow == nil:
		return kind + "|ask|" + domain
	case *allow:
		return kind + "|on|" + domain
	}
	return kind + "|off|" + domain
}

func (r *Resolver) resolve(ctx context.Context, kind, domain string, call []byte, opts *Options) (taskResult, error) {
	allow := r.allowOffchain(ctx, opts)
	return r.flight.Do(ctx, flightKey(kind, domain, allow), func(ctx context.Context) (taskResult, error) {
		return newTask(r.client, r.gateway, domain, call, allow).run(ctx)
	})
}

// GetEthAddr resolves the ETH address of domain.
func (r *Resolver) GetEthAddr(ctx context.Context, domain string, opts *Options) (Result, error) {
	if !IsValidEnsDomain(domain) {
		return Result{}, rpcerr.InvalidParams(coin.ETH)
	}
	call, err := encoding.EncodeCall(encoding.Selector("addr(bytes32)"), []string{"bytes32"}, encoding.Namehash(domain))
	if err != nil {
		return Result{}, rpcerr.InvalidParams(coin.ETH)
	}
	res, err := r.resolve(ctx, "addr", domain, call, opts)
	if err != nil {
		return Result{}, err
	}
	if res.needConsent {
		return Result{RequireOffchainConsent: true}, nil
	}
	if len(res.record) == 0 {
		return Result{}, nil
	}
	addr, err := encoding.DecodeAddress(res.record)
	if err != nil {
		return Result{}, rpcerr.Parsing(coin.ETH)
	}
	if encoding.IsZeroAddress(addr) {
		return Result{}, nil
	}
	return Result{Value: addr.Hex()}, nil
}

// GetContentHash resolves the EIP-1577 content hash of domain. Value holds
// the ipfs:// or ipns:// URL when the namespace is supported.
func (r *Resolver) GetContentHash(ctx context.Context, domain string, opts *Options) (Result, error) {
	if !IsValidEnsDomain(domain) {
		return Result{}, rpcerr.InvalidParams(coin.ETH)
	}
	call, err := encoding.EncodeCall(encoding.Selector("contenthash(bytes32)"), []string{"bytes32"}, encoding.Namehash(domain))
	if err != nil {
		return Result{}, rpcerr.InvalidParams(coin.ETH)
	}
	res, err := r.resolve(ctx, "contenthash", domain, call, opts)
	if err != nil {
		return Result{}, err
	}
	if res.needConsent {
		return Result{RequireOffchainConsent: true}, nil
	}
	if len(res.record) == 0 {
		return Result{}, nil
	}
	hash, err := encoding.DecodeBytes(res.record)
	if err != nil {
		return Result{}, rpcerr.Parsing(coin.ETH)
	}
	if len(hash) == 0 {
		return Result{}, nil
	}
	out := Result{ContentHash: hash}
	if u, err := ContentHashToURL(hash); err == nil {
		out.Value = u
	}
	return out, nil
}
