package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Observer receives cache events for metrics. All methods may be called
// concurrently.
type Observer interface {
	CacheHit(key string)
	CacheMiss(key string)
	CacheInvalidation(key string)
}

type entry struct {
	value    interface{}
	storedAt time.Time
}

// Cache is a TTL request cache with in-flight deduplication. Concurrent
// callers of the same key share a single fetch; results for different keys
// resolve independently and possibly out of order. Explicit invalidation
// bypasses freshness.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group

	// now is a clock hook for tests
	now func() time.Time

	observer Observer
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// SetObserver installs an Observer. Must be called before the cache is used
// concurrently.
func (c *Cache) SetObserver(o Observer) {
	c.observer = o
}

func (c *Cache) lookup(key string, ttl time.Duration) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) > ttl {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, storedAt: c.now()}
}

// Do returns the cached value for key if it is fresher than ttl, otherwise
// fetches it. At most one fetch per key is in flight; concurrent callers
// share its result. Fetch errors are not cached.
func (c *Cache) Do(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	if v, ok := c.lookup(key, ttl); ok {
		if c.observer != nil {
			c.observer.CacheHit(key)
		}
		return v, nil
	}
	if c.observer != nil {
		c.observer.CacheMiss(key)
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have finished the fetch while we waited
		// on the flight group.
		if v, ok := c.lookup(key, ttl); ok {
			return v, nil
		}
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Invalidate removes all entries whose key starts with prefix and returns
// how many were removed. Used by mutations to force refetch on the next
// read regardless of freshness.
func (c *Cache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.entries {
		if hasPrefix(k, prefix) {
			delete(c.entries, k)
			n++
		}
	}
	if n > 0 && c.observer != nil {
		c.observer.CacheInvalidation(prefix)
	}
	return n
}

// Len returns the number of cached entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// Get is a typed wrapper over Cache.Do.
func Get[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Do(ctx, key, ttl, func(ctx context.Context) (interface{}, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
