package networks

import (
	"context"
	"math/big"
	"sort"
	"strings"

	utilsEth "github.com/quantumauth-io/quantum-go-utils/ethrpc"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/prefs"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/shared"
)

// SeedCustomNetworks merges ETH networks from the config file into the custom
// chain list:
// - chains that are built in are skipped
// - chains already stored only get empty fields filled, user values win
// - everything else is added
func (m *Manager) SeedCustomNetworks(ctx context.Context, cfg *utilsEth.MultiConfig) error {
	if cfg == nil || len(cfg.Networks) == 0 {
		return nil
	}

	names := make([]string, 0, len(cfg.Networks))
	for name := range cfg.Networks {
		names = append(names, name)
	}
	sort.Strings(names)

	seeds := make([]shared.NetworkInfo, 0, len(names))
	for _, name := range names {
		n, ok := networkFromConfig(name, cfg.Networks[name])
		if !ok {
			log.Warn("networks: skipping config network without chain id", "name", name)
			continue
		}
		if m.KnownChainExists(n.ChainID, coin.ETH) {
			continue
		}
		seeds = append(seeds, n)
	}

	added := 0
	err := m.update(ctx, func(s *prefs.State) bool {
		changed := false
		list := s.CustomNetworks[coin.ETH]
	next:
		for _, seed := range seeds {
			for i := range list {
				if !strings.EqualFold(list[i].ChainID, seed.ChainID) {
					continue
				}
				if list[i].ChainName == "" && seed.ChainName != "" {
					list[i].ChainName = seed.ChainName
					changed = true
				}
				if len(list[i].RPCEndpoints) == 0 && len(seed.RPCEndpoints) > 0 {
					list[i].RPCEndpoints = seed.RPCEndpoints
					list[i].ActiveRPCEndpointIndex = 0
					changed = true
				}
				continue next
			}
			list = append(list, seed)
			added++
			changed = true
		}
		s.CustomNetworks[coin.ETH] = list
		return changed
	})
	if err != nil {
		return err
	}
	if added > 0 {
		log.Info("networks: seeded custom chains from config", "count", added)
	}
	return nil
}

func networkFromConfig(name string, nc utilsEth.NetworkConfig) (shared.NetworkInfo, bool) {
	chainID := strings.ToLower(utilsEth.NormalizeHex0x(strings.TrimSpace(nc.ChainIDHex)))
	if (chainID == "" || chainID == "0x") && nc.ChainID != 0 {
		chainID = strings.ToLower(utilsEth.BigToHexQuantity(new(big.Int).SetUint64(nc.ChainID)))
	}
	if chainID == "" || chainID == "0x" {
		return shared.NetworkInfo{}, false
	}

	displayName := strings.TrimSpace(nc.Name)
	if displayName == "" {
		displayName = name
	}

	rpcs := make([]string, 0, len(nc.RPCs))
	for _, r := range nc.RPCs {
		if u := shared.ParseHTTPURL(r.URL); u != nil {
			rpcs = append(rpcs, u.String())
		}
	}

	return normalizeNetwork(shared.NetworkInfo{
		ChainID:      chainID,
		ChainName:    displayName,
		RPCEndpoints: rpcs,
		Symbol:       "ETH",
		SymbolName:   "Ethereum",
		Decimals:     18,
		Coin:         coin.ETH,
	}), true
}
