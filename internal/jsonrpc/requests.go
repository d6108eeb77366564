package jsonrpc

import (
	"context"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/networks"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpc"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/shared"
)

// AddChainRequest is a chain a site asked to add, waiting for the user.
type AddChainRequest struct {
	Origin  string             `json:"origin"`
	Network shared.NetworkInfo `json:"network"`
}

// SwitchChainRequest is a chain switch a site asked for, waiting for the user.
type SwitchChainRequest struct {
	Origin  string `json:"origin"`
	ChainID string `json:"chainId"`
}

type switchRequest struct {
	chainID string
	done    chan error
}

// finish delivers the outcome exactly once.
func (r *switchRequest) finish(err error) {
	r.done <- err
	close(r.done)
}

func userRejected(msg string) error {
	return rpcerr.UserRejected(coin.ETH, msg)
}

func chainIDFailed(endpoint string) string {
	return "Failed to fetch chain id from " + endpoint
}

func webOrigin(origin string) (string, bool) {
	o, err := networks.ParseOrigin(origin)
	if err != nil || o.Opaque() || !o.IsWeb() {
		return "", false
	}
	return o.String(), true
}

// verifyChainID asks n's endpoint for eth_chainId and compares it with the
// id n claims.
func (s *Service) verifyChainID(ctx context.Context, n shared.NetworkInfo) error {
	u := n.ActiveRPCURL()
	if u == nil {
		endpoint := ""
		if n.ActiveRPCEndpointIndex >= 0 && n.ActiveRPCEndpointIndex < len(n.RPCEndpoints) {
			endpoint = n.RPCEndpoints[n.ActiveRPCEndpointIndex]
		}
		return userRejected(chainIDFailed(endpoint))
	}
	got, err := rpc.ProbeChainID(ctx, s.caller, u)
	if err != nil || !strings.EqualFold(got, n.ChainID) {
		log.Warn("jsonrpc: chain id check failed", "chainId", n.ChainID, "got", got, "error", err)
		return userRejected(chainIDFailed(u.String()))
	}
	return nil
}

// AddChain stores a custom chain. ETH endpoints must answer eth_chainId with
// the claimed id. SOL and FIL may only override known chains.
func (s *Service) AddChain(ctx context.Context, n shared.NetworkInfo) (string, error) {
	n.ChainID = strings.ToLower(strings.TrimSpace(n.ChainID))
	if n.ChainID == "" || !n.Coin.Valid() {
		return n.ChainID, rpcerr.InvalidParams(n.Coin)
	}
	if s.networks.CustomChainExists(n.ChainID, n.Coin) {
		return n.ChainID, rpcerr.UserRejected(n.Coin, rpcerr.MsgChainExists)
	}

	if n.Coin == coin.SOL || n.Coin == coin.FIL {
		if n.ActiveRPCURL() == nil || !s.networks.KnownChainExists(n.ChainID, n.Coin) {
			return n.ChainID, rpcerr.Internal(n.Coin)
		}
		return n.ChainID, s.storeChain(ctx, n)
	}

	if err := s.verifyChainID(ctx, n); err != nil {
		return n.ChainID, err
	}
	return n.ChainID, s.storeChain(ctx, n)
}

func (s *Service) storeChain(ctx context.Context, n shared.NetworkInfo) error {
	if err := s.networks.AddCustomNetwork(ctx, n); err != nil {
		log.Error("jsonrpc: store custom chain", "chainId", n.ChainID, "error", err)
		return rpcerr.Internal(n.Coin)
	}
	return nil
}

// AddEthereumChainForOrigin queues a site's request to add an ETH chain. One
// request per chain and per origin may be pending.
func (s *Service) AddEthereumChainForOrigin(ctx context.Context, n shared.NetworkInfo, origin string) error {
	n.Coin = coin.ETH
	n.ChainID = strings.ToLower(strings.TrimSpace(n.ChainID))
	if n.ChainID == "" {
		return rpcerr.InvalidParams(coin.ETH)
	}
	if s.networks.ChainExists(n.ChainID, coin.ETH) {
		return userRejected(rpcerr.MsgChainExists)
	}
	key, ok := webOrigin(origin)
	if !ok {
		return userRejected(rpcerr.MsgInProgress)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.addChainReqs[n.ChainID]; busy {
		return userRejected(rpcerr.MsgInProgress)
	}
	for _, req := range s.addChainReqs {
		if req.Origin == key {
			return userRejected(rpcerr.MsgInProgress)
		}
	}
	s.addChainReqs[n.ChainID] = AddChainRequest{Origin: key, Network: n.Clone()}
	return nil
}

func (s *Service) GetPendingAddChainRequests() []AddChainRequest {
	s.mu.Lock()
	out := make([]AddChainRequest, 0, len(s.addChainReqs))
	for _, req := range s.addChainReqs {
		out = append(out, req)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Network.ChainID < out[j].Network.ChainID })
	return out
}

// AddEthereumChainRequestCompleted settles a pending add chain request. An
// approved chain is verified against its endpoint before being stored.
// Observers get an empty error message on success.
func (s *Service) AddEthereumChainRequestCompleted(ctx context.Context, chainID string, approved bool) {
	chainID = strings.ToLower(strings.TrimSpace(chainID))
	s.mu.Lock()
	req, ok := s.addChainReqs[chainID]
	s.mu.Unlock()
	if !ok {
		return
	}

	errMsg := ""
	switch {
	case !approved:
		errMsg = rpcerr.MsgUserRejected
	default:
		if err := s.verifyChainID(ctx, req.Network); err != nil {
			_, errMsg, _ = rpcerr.Details(err)
		} else if err := s.storeChain(ctx, req.Network); err != nil {
			errMsg = rpcerr.MsgInternalError
		}
	}

	s.mu.Lock()
	// Reset may have dropped the request while the endpoint was probed.
	_, still := s.addChainReqs[chainID]
	delete(s.addChainReqs, chainID)
	s.mu.Unlock()
	if still {
		s.bus.PublishAddChainCompleted(chainID, errMsg)
	}
}

// AddSwitchEthereumChainRequest queues a site's request to switch its ETH
// chain. A nil channel without error means the origin is already on chainID.
// Otherwise the channel yields nil once the user approves, or a
// UserRejectedRequest error.
func (s *Service) AddSwitchEthereumChainRequest(ctx context.Context, chainID, origin string) (<-chan error, error) {
	chainID = strings.ToLower(strings.TrimSpace(chainID))
	if s.networks.GetNetworkURL(chainID, coin.ETH) == nil {
		return nil, rpcerr.Eth(rpcerr.ProviderUnknownChain, rpcerr.MsgUnknownChain+" "+chainID)
	}
	key, ok := webOrigin(origin)
	if !ok {
		return nil, rpcerr.InvalidParams(coin.ETH)
	}
	if s.networks.GetCurrentChainID(coin.ETH, key) == chainID {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.switchChainReq[key]; busy {
		return nil, userRejected(rpcerr.MsgInProgress)
	}
	req := &switchRequest{chainID: chainID, done: make(chan error, 1)}
	s.switchChainReq[key] = req
	return req.done, nil
}

func (s *Service) GetPendingSwitchChainRequests() []SwitchChainRequest {
	s.mu.Lock()
	out := make([]SwitchChainRequest, 0, len(s.switchChainReq))
	for origin, req := range s.switchChainReq {
		out = append(out, SwitchChainRequest{Origin: origin, ChainID: req.chainID})
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Origin < out[j].Origin })
	return out
}

// NotifySwitchChainRequestProcessed settles the origin's pending switch. An
// unknown origin is ignored.
func (s *Service) NotifySwitchChainRequestProcessed(ctx context.Context, approved bool, origin string) error {
	key, ok := webOrigin(origin)
	if !ok {
		return nil
	}
	s.mu.Lock()
	req, ok := s.switchChainReq[key]
	delete(s.switchChainReq, key)
	s.mu.Unlock()
	if !ok {
		return nil
	}

	if !approved {
		req.finish(userRejected(rpcerr.MsgUserRejected))
		return nil
	}
	switched, err := s.SetNetwork(ctx, req.chainID, coin.ETH, key)
	if err == nil && !switched {
		err = errors.Newf("jsonrpc: chain %s vanished before switch", req.chainID)
	}
	if err != nil {
		req.finish(rpcerr.Internal(coin.ETH))
		return err
	}
	req.finish(nil)
	return nil
}
