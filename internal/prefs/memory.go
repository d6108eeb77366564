package prefs

import (
	"context"
	"sync"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/constants"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/securefile"
)

// MemoryStore is a Store without persistence.
type MemoryStore struct {
	mu    sync.Mutex
	state State
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: NewState()}
}

func (m *MemoryStore) Load(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s.Clone()
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MemoryStore) Close() error { return nil }

// Open returns the store for a backend name ("file" or "bolt").
func Open(backend, path string) (Store, error) {
	switch backend {
	case "bolt":
		if path == "" {
			p, err := securefile.ResolvePath(constants.AppName, constants.PrefsBoltFile)
			if err != nil {
				return nil, err
			}
			path = p
		}
		return NewBoltStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return NewFileStore(path)
	}
}
