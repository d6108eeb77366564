package prefs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/constants"
)

const (
	boltBucket   = "prefs"
	boltStateKey = "state"
)

// BoltStore keeps State in a single bbolt key. Useful when several processes
// on the host must not interleave writes: bolt holds an exclusive file lock.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	if path == "" {
		return nil, errors.New("prefs: bolt path can not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirectoryPerm); err != nil {
		return nil, errors.Wrap(err, "prefs: mkdir bolt dir")
	}

	db, err := bolt.Open(path, constants.FilePerm, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errors.New("prefs: cannot obtain database lock, database may be in use by another process")
		}
		return nil, errors.Wrap(err, "prefs: open bolt")
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "prefs: create bucket")
	}
	return &BoltStore{db: db}, nil
}

func (b *BoltStore) Load(ctx context.Context) (State, error) {
	_ = ctx
	var raw []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(boltBucket)).Get([]byte(boltStateKey))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return State{}, errors.Wrap(err, "prefs: bolt view")
	}
	if raw == nil {
		return NewState(), nil
	}
	return decodeState(raw)
}

func (b *BoltStore) Save(ctx context.Context, s State) error {
	_ = ctx
	s.normalize()
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "prefs: marshal state")
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Put([]byte(boltStateKey), raw)
	})
}

func (b *BoltStore) Close() error {
	return b.db.Close()
}
