// Package events delivers wallet notifications to subscribers owned by a
// single service instance.
package events

import (
	"sync"

	"github.com/google/uuid"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
)

// Observer receives network notifications. Calls are synchronous on the
// publishing goroutine, so implementations must not block.
type Observer interface {
	ChainChangedEvent(chainID string, c coin.Type, origin string)
	OnAddEthereumChainRequestCompleted(chainID, errMsg string)
	OnIsEip1559Changed(chainID string, isEip1559 bool)
}

// ObserverFuncs adapts optional funcs to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	ChainChanged      func(chainID string, c coin.Type, origin string)
	AddChainCompleted func(chainID, errMsg string)
	IsEip1559Changed  func(chainID string, isEip1559 bool)
}

func (f ObserverFuncs) ChainChangedEvent(chainID string, c coin.Type, origin string) {
	if f.ChainChanged != nil {
		f.ChainChanged(chainID, c, origin)
	}
}

func (f ObserverFuncs) OnAddEthereumChainRequestCompleted(chainID, errMsg string) {
	if f.AddChainCompleted != nil {
		f.AddChainCompleted(chainID, errMsg)
	}
}

func (f ObserverFuncs) OnIsEip1559Changed(chainID string, isEip1559 bool) {
	if f.IsEip1559Changed != nil {
		f.IsEip1559Changed(chainID, isEip1559)
	}
}

type entry struct {
	id  uuid.UUID
	obs Observer
}

type Bus struct {
	mu   sync.RWMutex
	subs []entry
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	id   uuid.UUID
	bus  *Bus
	once sync.Once
}

func (s *Subscription) ID() uuid.UUID { return s.id }

// Unsubscribe removes the observer. Calling it again is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() { s.bus.remove(s.id) })
}

func (b *Bus) Subscribe(obs Observer) *Subscription {
	id := uuid.New()
	b.mu.Lock()
	b.subs = append(b.subs, entry{id: id, obs: obs})
	b.mu.Unlock()
	return &Subscription{id: id, bus: b}
}

func (b *Bus) remove(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.subs {
		if e.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) snapshot() []Observer {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Observer, len(b.subs))
	for i, e := range b.subs {
		out[i] = e.obs
	}
	return out
}

func (b *Bus) PublishChainChanged(chainID string, c coin.Type, origin string) {
	for _, o := range b.snapshot() {
		o.ChainChangedEvent(chainID, c, origin)
	}
}

func (b *Bus) PublishAddChainCompleted(chainID, errMsg string) {
	for _, o := range b.snapshot() {
		o.OnAddEthereumChainRequestCompleted(chainID, errMsg)
	}
}

func (b *Bus) PublishIsEip1559Changed(chainID string, isEip1559 bool) {
	for _, o := range b.snapshot() {
		o.OnIsEip1559Changed(chainID, isEip1559)
	}
}
