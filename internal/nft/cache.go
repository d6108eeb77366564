package nft

import (
	"context"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/cockroachdb/errors"
)

// Cache keeps raw API responses keyed by request URL.
type Cache interface {
	Set(key string, entry []byte) error
	Get(key string) ([]byte, error)
}

type BigCache struct {
	cache *bigcache.BigCache
}

// NewBigCache expires every entry ttl after it was written.
func NewBigCache(ctx context.Context, ttl time.Duration) (*BigCache, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Verbose = false
	c, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "nft: create cache")
	}
	return &BigCache{cache: c}, nil
}

func (b *BigCache) Set(key string, entry []byte) error {
	return b.cache.Set(key, entry)
}

func (b *BigCache) Get(key string) ([]byte, error) {
	return b.cache.Get(key)
}

func (b *BigCache) Close() error {
	return b.cache.Close()
}

// noCache never hits.
type noCache struct{}

func (noCache) Set(string, []byte) error { return nil }

func (noCache) Get(string) ([]byte, error) { return nil, bigcache.ErrEntryNotFound }
