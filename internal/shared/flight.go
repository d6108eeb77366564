package shared

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
)

// DefaultFlightTimeout bounds a coalesced lookup when Flight.Timeout is zero.
const DefaultFlightTimeout = time.Minute

// Flight coalesces concurrent lookups that share a key.
//
// The shared lookup runs on a context detached from every caller and bounded
// by Timeout, so one caller going away never fails the others. A caller whose
// own context ends stops waiting and gets the Coin family's internal error,
// the same error the transport returns for a cancelled request.
type Flight[T any] struct {
	Coin    coin.Type
	Timeout time.Duration

	group singleflight.Group
}

func (f *Flight[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (T, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultFlightTimeout
	}
	ch := f.group.DoChan(key, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return fn(runCtx)
	})

	var zero T
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	case <-ctx.Done():
		return zero, rpcerr.Internal(f.Coin)
	}
}
