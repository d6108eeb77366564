package ens

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/encoding"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/eth"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/networks"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpc"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
)

const (
	RegistryAddress = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"
	// Ensip10InterfaceID is the ERC-165 id of resolve(bytes,bytes).
	Ensip10InterfaceID = "0x9061b923"
	MaxOffchainHops    = 4
)

type Step int

const (
	StepResolveRegistry Step = iota
	StepProbeEnsip10
	StepResolve
	StepOffchainLookup
	StepCallback
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepResolveRegistry:
		return "ResolveRegistry"
	case StepProbeEnsip10:
		return "ProbeEnsip10"
	case StepResolve:
		return "Resolve"
	case StepOffchainLookup:
		return "OffchainLookup"
	case StepCallback:
		return "Callback"
	case StepDone:
		return "Done"
	}
	return "Step(?)"
}

// taskResult is the raw record returned by the resolver. needConsent is set
// when an offchain lookup was required but not yet allowed.
type taskResult struct {
	record      []byte
	needConsent bool
}

// task resolves one record of one domain. Each step issues at most one
// network round trip and picks the next step.
type task struct {
	client  *eth.Client
	gateway *Gateway

	domain        string
	recordCall    []byte
	allowOffchain *bool

	step        Step
	resolver    common.Address
	ensip10     bool
	lookup      *encoding.OffchainLookup
	gatewayData []byte
	hops        int
	result      taskResult

	// trace records visited steps; used by tests.
	trace []Step
}

func newTask(client *eth.Client, gateway *Gateway, domain string, recordCall []byte, allowOffchain *bool) *task {
	return &task{
		client:        client,
		gateway:       gateway,
		domain:        domain,
		recordCall:    recordCall,
		allowOffchain: allowOffchain,
		step:          StepResolveRegistry,
	}
}

func (t *task) run(ctx context.Context) (taskResult, error) {
	for t.step != StepDone {
		if ctx.Err() != nil {
			return taskResult{}, rpcerr.Internal(coin.ETH)
		}
		t.trace = append(t.trace, t.step)

		var err error
		switch t.step {
		case StepResolveRegistry:
			err = t.resolveRegistry(ctx)
		case StepProbeEnsip10:
			err = t.probeEnsip10(ctx)
		case StepResolve:
			err = t.resolve(ctx)
		case StepOffchainLookup:
			err = t.offchainLookup(ctx)
		case StepCallback:
			err = t.callback(ctx)
		default:
			err = errors.Newf("ens: unexpected step %s", t.step)
		}
		if err != nil {
			return taskResult{}, err
		}
	}
	t.trace = append(t.trace, StepDone)
	return t.result, nil
}

func (t *task) call(ctx context.Context, to string, data []byte) ([]byte, error) {
	msg := rpc.CallObject{To: to, Data: encoding.ToHex(data)}
	s, err := t.client.Call(ctx, networks.MainnetChainID, msg, eth.BlockLatest)
	if err != nil {
		return nil, err
	}
	b, err := encoding.HexToBytes(s)
	if err != nil {
		return nil, rpcerr.Parsing(coin.ETH)
	}
	return b, nil
}

func (t *task) resolveRegistry(ctx context.Context) error {
	node := encoding.Namehash(t.domain)
	data, err := encoding.EncodeCall(encoding.Selector("resolver(bytes32)"), []string{"bytes32"}, node)
	if err != nil {
		return rpcerr.InvalidParams(coin.ETH)
	}
	out, err := t.call(ctx, RegistryAddress, data)
	if err != nil {
		return err
	}
	addr, err := encoding.DecodeAddress(out)
	if err != nil {
		return rpcerr.Parsing(coin.ETH)
	}
	if encoding.IsZeroAddress(addr) {
		return rpcerr.Internal(coin.ETH)
	}
	t.resolver = addr
	t.step = StepProbeEnsip10
	return nil
}

func (t *task) probeEnsip10(ctx context.Context) error {
	ok, err := t.client.GetSupportsInterface(ctx, networks.MainnetChainID, t.resolver.Hex(), Ensip10InterfaceID)
	if err != nil {
		return err
	}
	t.ensip10 = ok
	t.step = StepResolve
	return nil
}

func (t *task) resolveCallData() ([]byte, error) {
	if !t.ensip10 {
		return t.recordCall, nil
	}
	name, err := encoding.DNSEncode(t.domain)
	if err != nil {
		return nil, err
	}
	return encoding.EncodeCall(encoding.Selector("resolve(bytes,bytes)"), []string{"bytes", "bytes"}, name, t.recordCall)
}

func (t *task) resolve(ctx context.Context) error {
	data, err := t.resolveCallData()
	if err != nil {
		return rpcerr.InvalidParams(coin.ETH)
	}
	out, err := t.call(ctx, t.resolver.Hex(), data)
	if err != nil {
		return t.handleRevert(err)
	}
	return t.finish(out)
}

// handleRevert moves to the offchain lookup when err is an OffchainLookup
// revert, otherwise err is terminal.
func (t *task) handleRevert(err error) error {
	raw, ok := rpc.RevertData(err)
	if !ok || !strings.HasPrefix(strings.ToLower(raw), encoding.SelectorHex(offchainLookupSig)) {
		return err
	}
	b, herr := encoding.HexToBytes(raw)
	if herr != nil {
		return rpcerr.Parsing(coin.ETH)
	}
	lookup, derr := encoding.DecodeOffchainLookup(b)
	if derr != nil {
		return rpcerr.Parsing(coin.ETH)
	}
	if t.hops >= MaxOffchainHops {
		log.Warn("ens: too many offchain lookups", "domain", t.domain)
		return rpcerr.Internal(coin.ETH)
	}
	if lookup.Sender != t.resolver {
		return rpcerr.Internal(coin.ETH)
	}
	t.lookup = lookup
	t.step = StepOffchainLookup
	return nil
}

const offchainLookupSig = "OffchainLookup(address,string[],bytes,bytes4,bytes)"

func (t *task) offchainLookup(ctx context.Context) error {
	if t.allowOffchain == nil {
		t.result = taskResult{needConsent: true}
		t.step = StepDone
		return nil
	}
	if !*t.allowOffchain {
		return rpcerr.Internal(coin.ETH)
	}
	t.hops++
	data, err := t.gateway.Fetch(ctx, t.lookup.URLs, t.lookup.Sender.Hex(), t.lookup.CallData)
	if err != nil {
		return rpcerr.Internal(coin.ETH)
	}
	t.gatewayData = data
	t.step = StepCallback
	return nil
}

func (t *task) callback(ctx context.Context) error {
	data, err := encoding.EncodeCall(t.lookup.CallbackFunction[:], []string{"bytes", "bytes"}, t.gatewayData, t.lookup.ExtraData)
	if err != nil {
		return rpcerr.Internal(coin.ETH)
	}
	out, err := t.call(ctx, t.lookup.Sender.Hex(), data)
	if err != nil {
		return t.handleRevert(err)
	}
	return t.finish(out)
}

// finish unwraps the resolve(bytes,bytes) envelope when it was used.
func (t *task) finish(out []byte) error {
	if t.ensip10 && len(out) > 0 {
		inner, err := encoding.DecodeBytes(out)
		if err != nil {
			return rpcerr.Parsing(coin.ETH)
		}
		out = inner
	}
	t.result = taskResult{record: out}
	t.step = StepDone
	return nil
}
