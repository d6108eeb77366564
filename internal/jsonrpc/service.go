// Package jsonrpc is the wallet facade: it picks the active network for a
// coin and origin, dispatches to the per coin call builders, resolves names
// and tracks pending add and switch chain requests.
package jsonrpc

import (
	"context"
	"encoding/json"
	"math/big"
	"net/url"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/ens"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/eth"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/events"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/filecoin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/networks"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/nft"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpc"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/shared"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/sns"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/solana"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/ud"
)

// ChainClient is what every coin's call builder offers the facade.
type ChainClient interface {
	Coin() coin.Type
	GetBalance(ctx context.Context, chainID, address string) (string, error)
	Request(ctx context.Context, chainID string, payload []byte) (json.RawMessage, error)
}

type Config struct {
	Networks   *networks.Manager
	Caller     rpc.Caller
	EnsGateway *ens.Gateway
	SimpleHash *nft.SimpleHashClient
	Metadata   *nft.MetadataFetcher
}

type Service struct {
	networks *networks.Manager
	caller   rpc.Caller

	eth     *eth.Client
	sol     *solana.Client
	fil     *filecoin.Client
	clients map[coin.Type]ChainClient

	ens        *ens.Resolver
	ud         *ud.Resolver
	sns        *sns.Resolver
	simpleHash *nft.SimpleHashClient
	metadata   *nft.MetadataFetcher

	bus *events.Bus

	mu             sync.Mutex
	addChainReqs   map[string]AddChainRequest
	switchChainReq map[string]*switchRequest
}

func New(cfg Config) (*Service, error) {
	if cfg.Networks == nil {
		return nil, errors.New("jsonrpc: networks manager is nil")
	}
	if cfg.Caller == nil {
		cfg.Caller = rpc.NewTransport()
	}
	if cfg.EnsGateway == nil {
		cfg.EnsGateway = ens.NewGateway(0)
	}
	if cfg.SimpleHash == nil {
		cfg.SimpleHash = nft.NewSimpleHashClient()
	}
	if cfg.Metadata == nil {
		cfg.Metadata = nft.NewMetadataFetcher("", 0)
	}

	s := &Service{
		networks:       cfg.Networks,
		caller:         cfg.Caller,
		eth:            eth.NewClient(cfg.Caller, cfg.Networks),
		sol:            solana.NewClient(cfg.Caller, cfg.Networks),
		fil:            filecoin.NewClient(cfg.Caller, cfg.Networks),
		simpleHash:     cfg.SimpleHash,
		metadata:       cfg.Metadata,
		bus:            events.NewBus(),
		addChainReqs:   map[string]AddChainRequest{},
		switchChainReq: map[string]*switchRequest{},
	}
	s.clients = map[coin.Type]ChainClient{
		coin.ETH: s.eth,
		coin.SOL: s.sol,
		coin.FIL: s.fil,
	}
	s.ens = ens.NewResolver(s.eth, cfg.EnsGateway, cfg.Networks)
	s.ud = ud.NewResolver(s.eth)
	s.sns = sns.NewResolver(s.sol)
	return s, nil
}

func (s *Service) Events() *events.Bus { return s.bus }

func (s *Service) Eth() *eth.Client { return s.eth }

func (s *Service) Solana() *solana.Client { return s.sol }

func (s *Service) Filecoin() *filecoin.Client { return s.fil }

func (s *Service) client(c coin.Type) (ChainClient, error) {
	cl, ok := s.clients[c]
	if !ok {
		return nil, rpcerr.InvalidParams(c)
	}
	return cl, nil
}

// chainOrCurrent falls back to the coin's globally selected chain.
func (s *Service) chainOrCurrent(c coin.Type, chainID string) string {
	if strings.TrimSpace(chainID) == "" {
		return s.networks.GetCurrentChainID(c, "")
	}
	return chainID
}

// Request forwards a raw JSON-RPC payload to the chain's active endpoint.
func (s *Service) Request(ctx context.Context, c coin.Type, chainID string, payload []byte) (json.RawMessage, error) {
	cl, err := s.client(c)
	if err != nil {
		return nil, err
	}
	return cl.Request(ctx, s.chainOrCurrent(c, chainID), payload)
}

// GetBalance returns the native balance: hex wei for ETH, decimal lamports
// for SOL and decimal attoFIL for FIL.
func (s *Service) GetBalance(ctx context.Context, address string, c coin.Type, chainID string) (string, error) {
	cl, err := s.client(c)
	if err != nil {
		return "", err
	}
	return cl.GetBalance(ctx, s.chainOrCurrent(c, chainID), address)
}

func (s *Service) GetFeeHistory(ctx context.Context, chainID string) (eth.FeeHistory, error) {
	return s.eth.GetFeeHistory(ctx, s.chainOrCurrent(coin.ETH, chainID))
}

func (s *Service) GetBlockNumber(ctx context.Context, chainID string) (*big.Int, error) {
	return s.eth.GetBlockNumber(ctx, s.chainOrCurrent(coin.ETH, chainID))
}

func (s *Service) GetERC20TokenBalance(ctx context.Context, contract, owner, chainID string) (string, error) {
	return s.eth.GetERC20TokenBalance(ctx, chainID, contract, owner)
}

func (s *Service) GetERC20TokenAllowance(ctx context.Context, contract, owner, spender, chainID string) (string, error) {
	return s.eth.GetERC20TokenAllowance(ctx, chainID, contract, owner, spender)
}

func (s *Service) GetERC1155TokenBalance(ctx context.Context, contract, tokenID, owner, chainID string) (string, error) {
	return s.eth.GetERC1155TokenBalance(ctx, chainID, contract, tokenID, owner)
}

// GetCode returns the deployed bytecode at address, "0x" for accounts.
func (s *Service) GetCode(ctx context.Context, address string, c coin.Type, chainID string) (string, error) {
	if c != coin.ETH {
		return "", rpcerr.Eth(rpcerr.ProviderMethodNotSupported, rpcerr.MsgMethodNotSupported)
	}
	return s.eth.GetCode(ctx, s.chainOrCurrent(c, chainID), address)
}

func (s *Service) GetEthNftStandard(ctx context.Context, contract, chainID string, interfaces []string) (*string, error) {
	return s.eth.GetEthNftStandard(ctx, chainID, contract, interfaces)
}

func (s *Service) GetEthTokenInfo(ctx context.Context, contract, chainID string) (eth.TokenInfo, error) {
	return s.eth.GetEthTokenInfo(ctx, chainID, contract)
}

func (s *Service) EthGetLogs(ctx context.Context, chainID string, filter eth.LogFilter) ([]eth.Log, error) {
	return s.eth.EthGetLogs(ctx, chainID, filter)
}

func (s *Service) GetSolanaAccountInfo(ctx context.Context, chainID, pubkey string) (*solana.AccountInfo, error) {
	return s.sol.GetAccountInfo(ctx, s.chainOrCurrent(coin.SOL, chainID), pubkey)
}

func (s *Service) GetFilEstimateGas(ctx context.Context, chainID string, msg filecoin.Message, maxFee string) (filecoin.GasEstimate, error) {
	return s.fil.EstimateGas(ctx, s.chainOrCurrent(coin.FIL, chainID), msg, maxFee)
}

// Networks

func (s *Service) GetNetworkURL(chainID string, c coin.Type) *url.URL {
	return s.networks.GetNetworkURL(chainID, c)
}

func (s *Service) GetAllNetworks(c coin.Type) []shared.NetworkInfo {
	return s.networks.GetAllChains(c)
}

func (s *Service) GetChainIDForOrigin(c coin.Type, origin string) string {
	return s.networks.GetCurrentChainID(c, origin)
}

func (s *Service) GetNetwork(c coin.Type, origin string) (shared.NetworkInfo, bool) {
	return s.networks.GetChain(s.networks.GetCurrentChainID(c, origin), c)
}

// SetNetwork selects chainID for origin. It reports false for chains the
// registry does not know.
func (s *Service) SetNetwork(ctx context.Context, chainID string, c coin.Type, origin string) (bool, error) {
	ok, err := s.networks.SetCurrentChainID(ctx, c, origin, chainID)
	if err != nil || !ok {
		return ok, err
	}
	chainID = strings.ToLower(strings.TrimSpace(chainID))
	log.Info("jsonrpc: chain selected", "coin", c.String(), "chainId", chainID, "origin", origin)
	s.bus.PublishChainChanged(chainID, c, origin)
	if c == coin.ETH {
		if _, err := s.MaybeUpdateIsEip1559(ctx, chainID); err != nil {
			log.Warn("jsonrpc: eip1559 probe failed", "chainId", chainID, "error", err)
		}
	}
	return true, nil
}

func (s *Service) RemoveChain(ctx context.Context, chainID string, c coin.Type) error {
	return s.networks.RemoveCustomNetwork(ctx, chainID, c)
}

func (s *Service) GetHiddenNetworks(c coin.Type) []string {
	return s.networks.GetHiddenNetworks(c)
}

func (s *Service) AddHiddenNetwork(ctx context.Context, c coin.Type, chainID string) error {
	return s.networks.AddHiddenNetwork(ctx, c, chainID)
}

func (s *Service) RemoveHiddenNetwork(ctx context.Context, c coin.Type, chainID string) error {
	return s.networks.RemoveHiddenNetwork(ctx, c, chainID)
}

// MaybeUpdateIsEip1559 probes localhost and custom ETH chains for a base fee
// and stores the result. Observers hear about changes only.
func (s *Service) MaybeUpdateIsEip1559(ctx context.Context, chainID string) (bool, error) {
	chainID = strings.ToLower(strings.TrimSpace(chainID))
	if chainID != networks.LocalhostChainID && !s.networks.CustomChainExists(chainID, coin.ETH) {
		return false, nil
	}
	is, err := s.eth.IsEip1559(ctx, chainID)
	if err != nil {
		return false, err
	}
	if s.networks.IsEip1559Chain(chainID) == is {
		return false, nil
	}
	if err := s.networks.SetEip1559ForCustomChain(ctx, chainID, &is); err != nil {
		return false, err
	}
	s.bus.PublishIsEip1559Changed(chainID, is)
	return true, nil
}

// Reset clears every stored preference, drops pending add chain requests and
// rejects pending switch chain requests.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.networks.Reset(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	pending := s.switchChainReq
	s.addChainReqs = map[string]AddChainRequest{}
	s.switchChainReq = map[string]*switchRequest{}
	s.mu.Unlock()

	for _, req := range pending {
		req.finish(userRejected(rpcerr.MsgUserRejected))
	}
	log.Info("jsonrpc: wallet state reset", "rejectedSwitchRequests", len(pending))
	return nil
}
