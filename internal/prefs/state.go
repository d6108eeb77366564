package prefs

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/constants"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/shared"
)

// ResolveMethod gates a name-resolution feature.
type ResolveMethod string

const (
	ResolveMethodAsk      ResolveMethod = "ask"
	ResolveMethodEnabled  ResolveMethod = "enabled"
	ResolveMethodDisabled ResolveMethod = "disabled"
)

func ParseResolveMethod(s string) (ResolveMethod, error) {
	switch m := ResolveMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case ResolveMethodAsk, ResolveMethodEnabled, ResolveMethodDisabled:
		return m, nil
	}
	return "", errors.Newf("prefs: unknown resolve method %q", s)
}

type ResolveMethods struct {
	Ens ResolveMethod `json:"ens"`
	// EnsOffchain is the profile-independent consent for CCIP-read lookups.
	EnsOffchain ResolveMethod `json:"ensOffchain"`
	Ud          ResolveMethod `json:"ud"`
	Sns         ResolveMethod `json:"sns"`
}

func DefaultResolveMethods() ResolveMethods {
	return ResolveMethods{
		Ens:         ResolveMethodEnabled,
		EnsOffchain: ResolveMethodAsk,
		Ud:          ResolveMethodAsk,
		Sns:         ResolveMethodAsk,
	}
}

// State is everything the wallet persists about networks and name resolution.
type State struct {
	Schema         int                                `json:"schema"`
	CustomNetworks map[coin.Type][]shared.NetworkInfo `json:"customNetworks"`
	HiddenNetworks map[coin.Type][]string             `json:"hiddenNetworks"`
	// SelectedNetworks is the global chain per coin.
	SelectedNetworks map[coin.Type]string `json:"selectedNetworks"`
	// SelectedNetworksPerOrigin maps coin -> origin -> chain id.
	SelectedNetworksPerOrigin map[coin.Type]map[string]string `json:"selectedNetworksPerOrigin"`
	// Eip1559ForCustomNetworks overrides the capability of custom ETH chains.
	Eip1559ForCustomNetworks map[string]bool `json:"eip1559ForCustomNetworks"`
	ResolveMethods           ResolveMethods  `json:"resolveMethods"`
}

func NewState() State {
	return State{
		Schema:                    constants.SchemaV1,
		CustomNetworks:            map[coin.Type][]shared.NetworkInfo{},
		HiddenNetworks:            map[coin.Type][]string{},
		SelectedNetworks:          map[coin.Type]string{},
		SelectedNetworksPerOrigin: map[coin.Type]map[string]string{},
		Eip1559ForCustomNetworks:  map[string]bool{},
		ResolveMethods:            DefaultResolveMethods(),
	}
}

// normalize fills nil maps and unset prefs after decoding older files.
func (s *State) normalize() {
	if s.Schema == 0 {
		s.Schema = constants.SchemaV1
	}
	if s.CustomNetworks == nil {
		s.CustomNetworks = map[coin.Type][]shared.NetworkInfo{}
	}
	if s.HiddenNetworks == nil {
		s.HiddenNetworks = map[coin.Type][]string{}
	}
	if s.SelectedNetworks == nil {
		s.SelectedNetworks = map[coin.Type]string{}
	}
	if s.SelectedNetworksPerOrigin == nil {
		s.SelectedNetworksPerOrigin = map[coin.Type]map[string]string{}
	}
	if s.Eip1559ForCustomNetworks == nil {
		s.Eip1559ForCustomNetworks = map[string]bool{}
	}
	def := DefaultResolveMethods()
	if s.ResolveMethods.Ens == "" {
		s.ResolveMethods.Ens = def.Ens
	}
	if s.ResolveMethods.EnsOffchain == "" {
		s.ResolveMethods.EnsOffchain = def.EnsOffchain
	}
	if s.ResolveMethods.Ud == "" {
		s.ResolveMethods.Ud = def.Ud
	}
	if s.ResolveMethods.Sns == "" {
		s.ResolveMethods.Sns = def.Sns
	}
}

// Clone deep copies the state so callers never share maps with a store.
func (s State) Clone() State {
	b, err := json.Marshal(s)
	if err != nil {
		return NewState()
	}
	out, err := decodeState(b)
	if err != nil {
		return NewState()
	}
	return out
}

func decodeState(b []byte) (State, error) {
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return State{}, errors.Wrap(err, "prefs: unmarshal state")
	}
	s.normalize()
	return s, nil
}

// Store persists State. Implementations are safe for concurrent use.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
	Close() error
}
