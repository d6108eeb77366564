package rpctest

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/encoding"
)

// Endpoints maps chain ids of one coin to URLs. It satisfies rpc.Endpoints.
type Endpoints struct {
	Coin coin.Type
	URLs map[string]*url.URL
}

func (e Endpoints) GetNetworkURL(chainID string, c coin.Type) *url.URL {
	if c != e.Coin {
		return nil
	}
	return e.URLs[chainID]
}

// EthEndpoints points every chain id at the server.
func (s *Server) EthEndpoints(chainIDs ...string) Endpoints {
	e := Endpoints{Coin: coin.ETH, URLs: map[string]*url.URL{}}
	for _, id := range chainIDs {
		e.URLs[id] = s.Endpoint()
	}
	return e
}

// ABIHex packs values as an abi tuple and returns 0x hex.
func ABIHex(t testing.TB, types []string, values ...any) string {
	t.Helper()
	args, err := encoding.Arguments(types...)
	require.NoError(t, err)
	b, err := args.Pack(values...)
	require.NoError(t, err)
	return encoding.ToHex(b)
}
