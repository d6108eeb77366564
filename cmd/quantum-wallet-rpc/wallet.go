package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/urfave/cli/v2"

	"github.com/quantumauth-io/quantum-wallet-rpc/cmd/quantum-wallet-rpc/config"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/ens"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/jsonrpc"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/networks"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/nft"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/prefs"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpc"
)

// wallet is the service plus everything that has to be closed with it.
type wallet struct {
	cfg     *config.Config
	svc     *jsonrpc.Service
	store   prefs.Store
	nftMeta *nft.BigCache
}

func (w *wallet) Close() {
	if w.nftMeta != nil {
		if err := w.nftMeta.Close(); err != nil {
			log.Error("nft cache close failed", "error", err)
		}
	}
	if err := w.store.Close(); err != nil {
		log.Error("prefs store close failed", "error", err)
	}
}

func openWallet(ctx context.Context, c *cli.Context) (*wallet, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	ws := cfg.Wallet

	store, err := prefs.Open(ws.PrefsBackend, ws.PrefsPath)
	if err != nil {
		return nil, errors.Wrap(err, "open prefs store")
	}
	w := &wallet{cfg: cfg, store: store}

	nm, err := networks.NewManager(ctx, store)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := nm.SeedCustomNetworks(ctx, cfg.EthNetworks); err != nil {
		w.Close()
		return nil, errors.Wrap(err, "seed networks from config")
	}

	shOpts := []nft.Option{nft.WithServicesKey(ws.ServicesKey), nft.WithTimeout(ws.RequestTimeout)}
	if ws.SimpleHashURL != "" {
		shOpts = append(shOpts, nft.WithBaseURL(ws.SimpleHashURL))
	}
	if ws.NftCacheTTL > 0 {
		cache, err := nft.NewBigCache(ctx, ws.NftCacheTTL)
		if err != nil {
			w.Close()
			return nil, err
		}
		w.nftMeta = cache
		shOpts = append(shOpts, nft.WithCache(cache))
	}

	svc, err := jsonrpc.New(jsonrpc.Config{
		Networks:   nm,
		Caller:     rpc.NewTransport(rpc.WithTimeout(ws.RequestTimeout), rpc.WithServicesKey(ws.ServicesKey)),
		EnsGateway: ens.NewGateway(ws.EnsGatewayTimeout),
		SimpleHash: nft.NewSimpleHashClient(shOpts...),
		Metadata:   nft.NewMetadataFetcher(ws.IpfsGateway, ws.RequestTimeout),
	})
	if err != nil {
		w.Close()
		return nil, err
	}
	w.svc = svc
	return w, nil
}
