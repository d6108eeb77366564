package jsonrpc

import (
	"context"
	"net/url"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/ens"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/prefs"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/ud"
)

func (s *Service) EnsGetEthAddr(ctx context.Context, domain string, opts *ens.Options) (ens.Result, error) {
	return s.ens.GetEthAddr(ctx, domain, opts)
}

func (s *Service) EnsGetContentHash(ctx context.Context, domain string, opts *ens.Options) (ens.Result, error) {
	return s.ens.GetContentHash(ctx, domain, opts)
}

func (s *Service) UnstoppableDomainsGetWalletAddr(ctx context.Context, domain string, token ud.Token) (string, error) {
	return s.ud.GetWalletAddr(ctx, domain, token)
}

func (s *Service) UnstoppableDomainsResolveDns(ctx context.Context, domain string) (*url.URL, error) {
	return s.ud.ResolveDns(ctx, domain)
}

func (s *Service) SnsGetSolAddr(ctx context.Context, domain string) (string, error) {
	return s.sns.GetSolAddr(ctx, domain)
}

func (s *Service) SnsResolveHost(ctx context.Context, domain string) (*url.URL, error) {
	return s.sns.ResolveHost(ctx, domain)
}

// Resolve method preferences.

func (s *Service) ResolveMethods() prefs.ResolveMethods {
	return s.networks.ResolveMethods()
}

func (s *Service) SetEnsResolveMethod(ctx context.Context, m prefs.ResolveMethod) error {
	return s.networks.SetResolveMethods(ctx, func(r *prefs.ResolveMethods) { r.Ens = m })
}

func (s *Service) SetEnsOffchainResolveMethod(ctx context.Context, m prefs.ResolveMethod) error {
	return s.networks.SetResolveMethods(ctx, func(r *prefs.ResolveMethods) { r.EnsOffchain = m })
}

func (s *Service) SetUnstoppableDomainsResolveMethod(ctx context.Context, m prefs.ResolveMethod) error {
	return s.networks.SetResolveMethods(ctx, func(r *prefs.ResolveMethods) { r.Ud = m })
}

func (s *Service) SetSnsResolveMethod(ctx context.Context, m prefs.ResolveMethod) error {
	return s.networks.SetResolveMethods(ctx, func(r *prefs.ResolveMethods) { r.Sns = m })
}
