package store

import (
	"context"
	"slices"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/singleflight"
)

// CachedStore puts an in-process read cache in front of another KV. Writes go
// through to the backing store first and then evict the cached value, so the
// cache never holds data the store does not.
type CachedStore struct {
	next  KV
	cache *ristretto.Cache[string, []byte]
	group singleflight.Group
	// writes counts Set and Remove calls; a load that raced a write is not
	// cached.
	writes atomic.Uint64
}

type cachedValue struct {
	value []byte
	ok    bool
}

// NewCachedStore wraps next with a cache holding at most maxCostBytes of
// values.
func NewCachedStore(next KV, maxCostBytes int64) (*CachedStore, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: max(maxCostBytes/100*10, 1000),
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &CachedStore{next: next, cache: c}, nil
}

func (c *CachedStore) Get(
	ctx context.Context,
	key string,
) ([]byte, bool, error) {
	if v, found := c.cache.Get(key); found {
		return slices.Clone(v), true, nil
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		gen := c.writes.Load()

		v, ok, err := c.next.Get(ctx, key)
		if err != nil {
			return nil, err
		}

		if ok && c.writes.Load() == gen {
			c.cache.Set(key, v, int64(len(v))+1)
		}

		return cachedValue{value: v, ok: ok}, nil
	})
	if err != nil {
		return nil, false, err
	}

	cv, _ := res.(cachedValue)

	return slices.Clone(cv.value), cv.ok, nil
}

func (c *CachedStore) Set(ctx context.Context, key string, value []byte) error {
	c.writes.Add(1)
	c.cache.Del(key)

	err := c.next.Set(ctx, key, value)

	c.writes.Add(1)
	c.cache.Del(key)

	return err
}

func (c *CachedStore) Remove(ctx context.Context, key string) error {
	c.writes.Add(1)
	c.cache.Del(key)

	err := c.next.Remove(ctx, key)

	c.writes.Add(1)
	c.cache.Del(key)

	return err
}

func (c *CachedStore) ListKeys(ctx context.Context) ([]string, error) {
	return c.next.ListKeys(ctx)
}

// Purge drops every cached value without touching the backing store.
func (c *CachedStore) Purge() {
	c.cache.Clear()
}

func (c *CachedStore) Close() error {
	c.cache.Close()

	return c.next.Close()
}
