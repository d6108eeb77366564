package networks

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/prefs"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/shared"
)

// Manager is the network registry: built-in chains, user chains, and the
// chain selected per coin and origin. State lives in a prefs.Store.
type Manager struct {
	mu    sync.RWMutex
	store prefs.Store
	state prefs.State
}

func NewManager(ctx context.Context, store prefs.Store) (*Manager, error) {
	if store == nil {
		return nil, errors.New("networks: nil prefs store")
	}
	s, err := store.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "networks: load prefs")
	}
	return &Manager{store: store, state: s}, nil
}

// update applies fn to a copy of the state and persists it when fn reports a change.
func (m *Manager) update(ctx context.Context, fn func(s *prefs.State) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.state.Clone()
	if !fn(&next) {
		return nil
	}
	if err := m.store.Save(ctx, next); err != nil {
		log.Error("networks: persist prefs", "error", err)
		return errors.Wrap(err, "networks: save prefs")
	}
	m.state = next
	return nil
}

func (m *Manager) GetKnownChains(c coin.Type) []shared.NetworkInfo {
	return KnownChains(c)
}

func (m *Manager) GetCustomChains(c coin.Type) []shared.NetworkInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src := m.state.CustomNetworks[c]
	out := make([]shared.NetworkInfo, 0, len(src))
	for _, n := range src {
		out = append(out, n.Clone())
	}
	return out
}

// GetAllChains lists known chains in order, each replaced by a custom chain
// with the same id, followed by the remaining custom chains.
func (m *Manager) GetAllChains(c coin.Type) []shared.NetworkInfo {
	custom := m.GetCustomChains(c)
	used := make([]bool, len(custom))

	out := make([]shared.NetworkInfo, 0, len(custom)+len(KnownChains(c)))
	for _, k := range KnownChains(c) {
		replaced := false
		for i, cc := range custom {
			if !used[i] && strings.EqualFold(cc.ChainID, k.ChainID) {
				out = append(out, cc)
				used[i] = true
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, k)
		}
	}
	for i, cc := range custom {
		if !used[i] {
			out = append(out, cc)
		}
	}
	return out
}

func (m *Manager) GetKnownChain(chainID string, c coin.Type) (shared.NetworkInfo, bool) {
	for _, n := range KnownChains(c) {
		if strings.EqualFold(n.ChainID, chainID) {
			return n, true
		}
	}
	return shared.NetworkInfo{}, false
}

func (m *Manager) GetCustomChain(chainID string, c coin.Type) (shared.NetworkInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, n := range m.state.CustomNetworks[c] {
		if strings.EqualFold(n.ChainID, chainID) {
			return n.Clone(), true
		}
	}
	return shared.NetworkInfo{}, false
}

// GetChain prefers a custom chain over a known chain with the same id.
func (m *Manager) GetChain(chainID string, c coin.Type) (shared.NetworkInfo, bool) {
	if strings.TrimSpace(chainID) == "" {
		return shared.NetworkInfo{}, false
	}
	if n, ok := m.GetCustomChain(chainID, c); ok {
		return n, true
	}
	return m.GetKnownChain(chainID, c)
}

func (m *Manager) KnownChainExists(chainID string, c coin.Type) bool {
	_, ok := m.GetKnownChain(chainID, c)
	return ok
}

func (m *Manager) CustomChainExists(chainID string, c coin.Type) bool {
	_, ok := m.GetCustomChain(chainID, c)
	return ok
}

func (m *Manager) ChainExists(chainID string, c coin.Type) bool {
	return m.KnownChainExists(chainID, c) || m.CustomChainExists(chainID, c)
}

// AddCustomNetwork stores n, replacing a custom chain with the same id.
func (m *Manager) AddCustomNetwork(ctx context.Context, n shared.NetworkInfo) error {
	if !n.Coin.Valid() {
		return errors.Newf("networks: unsupported coin %s", n.Coin)
	}
	n = normalizeNetwork(n)
	if n.ChainID == "" {
		return errors.New("networks: chainId is required")
	}

	err := m.update(ctx, func(s *prefs.State) bool {
		list := s.CustomNetworks[n.Coin]
		for i := range list {
			if strings.EqualFold(list[i].ChainID, n.ChainID) {
				list[i] = n
				s.CustomNetworks[n.Coin] = list
				return true
			}
		}
		s.CustomNetworks[n.Coin] = append(list, n)
		return true
	})
	if err != nil {
		return err
	}
	log.Info("networks: custom chain stored", "coin", n.Coin.String(), "chainId", n.ChainID)
	return nil
}

// RemoveCustomNetwork drops a custom chain and its EIP-1559 override. Known
// chains are not affected.
func (m *Manager) RemoveCustomNetwork(ctx context.Context, chainID string, c coin.Type) error {
	chainID = normalizeChainID(c, chainID)
	return m.update(ctx, func(s *prefs.State) bool {
		list := s.CustomNetworks[c]
		kept := list[:0]
		removed := false
		for _, n := range list {
			if strings.EqualFold(n.ChainID, chainID) {
				removed = true
				continue
			}
			kept = append(kept, n)
		}
		if !removed {
			return false
		}
		s.CustomNetworks[c] = kept
		delete(s.Eip1559ForCustomNetworks, chainID)
		return true
	})
}

// GetNetworkURL returns the active endpoint of a chain, nil for unknown chains
// or unusable endpoints.
func (m *Manager) GetNetworkURL(chainID string, c coin.Type) *url.URL {
	n, ok := m.GetChain(chainID, c)
	if !ok {
		return nil
	}
	return n.ActiveRPCURL()
}

// SetCurrentChainID selects chainID for origin ("" selects the coin's global
// chain). Unknown chains and opaque origins are refused.
func (m *Manager) SetCurrentChainID(ctx context.Context, c coin.Type, origin, chainID string) (bool, error) {
	if !m.ChainExists(chainID, c) {
		return false, nil
	}
	o, err := ParseOrigin(origin)
	if err != nil || o.Opaque() {
		return false, nil
	}
	chainID = strings.ToLower(strings.TrimSpace(chainID))

	err = m.update(ctx, func(s *prefs.State) bool {
		if o.IsWeb() {
			perOrigin := s.SelectedNetworksPerOrigin[c]
			if perOrigin == nil {
				perOrigin = map[string]string{}
				s.SelectedNetworksPerOrigin[c] = perOrigin
			}
			if perOrigin[o.String()] == chainID {
				return false
			}
			perOrigin[o.String()] = chainID
			return true
		}
		if s.SelectedNetworks[c] == chainID {
			return false
		}
		s.SelectedNetworks[c] = chainID
		return true
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetCurrentChainID returns the origin's chain, then the global chain, then
// the coin default. Stored ids that no longer name a chain are ignored.
func (m *Manager) GetCurrentChainID(c coin.Type, origin string) string {
	m.mu.RLock()
	stored := m.state.SelectedNetworks[c]
	if o, err := ParseOrigin(origin); err == nil && o.IsWeb() {
		if id, ok := m.state.SelectedNetworksPerOrigin[c][o.String()]; ok {
			stored = id
		}
	}
	m.mu.RUnlock()

	stored = strings.ToLower(stored)
	if stored != "" && m.ChainExists(stored, c) {
		return stored
	}
	return DefaultChainID(c)
}

// IsEip1559Chain reports the stored override for a custom chain, falling back
// to the built-in capability table.
func (m *Manager) IsEip1559Chain(chainID string) bool {
	id := strings.ToLower(strings.TrimSpace(chainID))

	m.mu.RLock()
	v, ok := m.state.Eip1559ForCustomNetworks[id]
	m.mu.RUnlock()
	if ok {
		return v
	}
	return eip1559ForKnownChains[id]
}

// SetEip1559ForCustomChain stores the capability, or clears it when v is nil.
func (m *Manager) SetEip1559ForCustomChain(ctx context.Context, chainID string, v *bool) error {
	id := strings.ToLower(strings.TrimSpace(chainID))
	return m.update(ctx, func(s *prefs.State) bool {
		old, had := s.Eip1559ForCustomNetworks[id]
		if v == nil {
			delete(s.Eip1559ForCustomNetworks, id)
			return had
		}
		s.Eip1559ForCustomNetworks[id] = *v
		return !had || old != *v
	})
}

func (m *Manager) GetHiddenNetworks(c coin.Type) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.state.HiddenNetworks[c]...)
}

func (m *Manager) AddHiddenNetwork(ctx context.Context, c coin.Type, chainID string) error {
	id := strings.ToLower(strings.TrimSpace(chainID))
	if id == "" {
		return errors.New("networks: chainId is required")
	}
	return m.update(ctx, func(s *prefs.State) bool {
		for _, h := range s.HiddenNetworks[c] {
			if h == id {
				return false
			}
		}
		s.HiddenNetworks[c] = append(s.HiddenNetworks[c], id)
		return true
	})
}

func (m *Manager) RemoveHiddenNetwork(ctx context.Context, c coin.Type, chainID string) error {
	return m.update(ctx, func(s *prefs.State) bool {
		list := s.HiddenNetworks[c]
		kept := list[:0]
		for _, h := range list {
			if !strings.EqualFold(h, chainID) {
				kept = append(kept, h)
			}
		}
		if len(kept) == len(list) {
			return false
		}
		s.HiddenNetworks[c] = kept
		return true
	})
}

func (m *Manager) ResolveMethods() prefs.ResolveMethods {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.ResolveMethods
}

func (m *Manager) SetResolveMethods(ctx context.Context, fn func(r *prefs.ResolveMethods)) error {
	return m.update(ctx, func(s *prefs.State) bool {
		before := s.ResolveMethods
		fn(&s.ResolveMethods)
		return before != s.ResolveMethods
	})
}

// Reset forgets every custom chain, selection and preference.
func (m *Manager) Reset(ctx context.Context) error {
	return m.update(ctx, func(s *prefs.State) bool {
		*s = prefs.NewState()
		return true
	})
}

func normalizeChainID(c coin.Type, s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if c == coin.ETH && !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return s
}

func normalizeNetwork(n shared.NetworkInfo) shared.NetworkInfo {
	n = n.Clone()
	n.ChainID = normalizeChainID(n.Coin, n.ChainID)
	n.ChainName = strings.TrimSpace(n.ChainName)
	n.RPCEndpoints = trimAll(n.RPCEndpoints)
	n.BlockExplorerURLs = trimAll(n.BlockExplorerURLs)
	n.IconURLs = trimAll(n.IconURLs)
	if n.ActiveRPCEndpointIndex < 0 || n.ActiveRPCEndpointIndex >= len(n.RPCEndpoints) {
		n.ActiveRPCEndpointIndex = 0
	}
	if len(n.SupportedKeyrings) == 0 {
		n.SupportedKeyrings = keyringsFor(n.Coin, n.ChainID)
	}
	return n
}

func trimAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
