package prefs

import (
	"context"
	"os"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/constants"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/securefile"
)

// FileStore keeps State as a JSON document written atomically.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore uses path, or the per-user config location when path is empty.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		p, err := securefile.ResolvePath(constants.AppName, constants.PrefsFile)
		if err != nil {
			return nil, errors.Wrap(err, "prefs: resolve path")
		}
		path = p
	}
	return &FileStore{path: path}, nil
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load(ctx context.Context) (State, error) {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return NewState(), nil
	}
	if err != nil {
		return State{}, errors.Wrap(err, "prefs: read file")
	}
	return decodeState(b)
}

func (f *FileStore) Save(ctx context.Context, s State) error {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()

	s.normalize()
	if err := securefile.WriteJSON(f.path, s, constants.FilePerm, constants.DirectoryPerm); err != nil {
		return errors.Wrap(err, "prefs: write file")
	}
	return nil
}

func (f *FileStore) Close() error { return nil }
