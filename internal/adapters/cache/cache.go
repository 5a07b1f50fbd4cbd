// Package cache implements the in-process discovery cache: TTL-keyed
// entries under an LRU capacity budget, with hit/miss/eviction
// accounting and single-flight coalescing of concurrent misses.
package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/courtside/courtside/pkg/logger"
	"github.com/courtside/courtside/pkg/metrics"
)

// Default cache configuration constants.
const (
	defaultCapacity = 1000
	defaultTTL      = 300 * time.Second
)

// Stats reports cumulative cache accounting.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// HitRate returns hits/(hits+misses), or 0 when nothing was requested yet.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Requests returns the total number of lookups.
func (s Stats) Requests() uint64 { return s.Hits + s.Misses }

// entry is a cached value with its TTL bookkeeping. An entry is visible
// to readers iff now < insertedAt+ttl.
type entry struct {
	value      any
	insertedAt time.Time
	ttl        time.Duration
}

// LRUCache is the in-process cache shared by all discovery requests.
// It is safe for concurrent use. When construction of the backing store
// fails (capacity budget <= 0) the cache degrades to always-miss rather
// than failing requests.
type LRUCache struct {
	mu        sync.Mutex
	entries   *lru.Cache[string, *entry]
	skipEvict int // explicit removals in flight; guarded by mu

	flight singleflight.Group

	capacity int
	ttl      time.Duration
	clock    func() time.Time
	log      logger.Logger

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache with configuration options.
func New(opts ...Option) *LRUCache {
	c := &LRUCache{
		capacity: defaultCapacity,
		ttl:      defaultTTL,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get().Named("cache")
	}

	if c.capacity > 0 {
		inner, err := lru.NewWithEvict[string, *entry](c.capacity, c.onEvict)
		if err == nil {
			c.entries = inner
		}
	}
	if c.entries == nil {
		// Degraded: every get is a miss, every set a no-op. Discovery
		// requests must keep working without the cache.
		c.log.Warn(context.Background(), "cache unavailable; degrading to always-miss",
			logger.Int("capacity", c.capacity))
	}

	return c
}

// onEvict runs inside Add/Remove while c.mu is held. Explicit removals
// (Delete, DeleteByPrefix, TTL expiry) must not count as LRU evictions.
func (c *LRUCache) onEvict(string, *entry) {
	if c.skipEvict > 0 {
		c.skipEvict--
		return
	}
	c.evictions.Add(1)
	metrics.RecordCacheEviction()
}

// Get returns the cached value for key, counting a hit or miss. Access
// refreshes the entry's LRU recency. Expired entries are removed lazily
// and reported as misses.
func (c *LRUCache) Get(_ context.Context, key string) (any, bool) {
	v, ok := c.lookup(key)
	if ok {
		c.hits.Add(1)
		metrics.RecordCacheHit()
	} else {
		c.misses.Add(1)
		metrics.RecordCacheMiss()
	}
	return v, ok
}

// lookup reads without touching the hit/miss counters. Used by the
// single-flight path so piggybacking waiters do not double-count.
func (c *LRUCache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries == nil {
		return nil, false
	}
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if !c.clock().Before(e.insertedAt.Add(e.ttl)) {
		c.removeLocked(key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the given TTL. A non-positive ttl
// falls back to the configured default. Insertion past the capacity
// budget evicts the least-recently-accessed entries.
func (c *LRUCache) Set(_ context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries == nil {
		return
	}
	c.entries.Add(key, &entry{value: value, insertedAt: c.clock(), ttl: ttl})
	metrics.UpdateCachedEntries(c.entries.Len())
}

// Delete removes a single entry. Removing an absent key is a no-op.
func (c *LRUCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(key)
}

// DeleteByPrefix removes every entry whose key starts with prefix and
// returns the number removed.
func (c *LRUCache) DeleteByPrefix(_ context.Context, prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries == nil {
		return 0
	}
	removed := 0
	for _, key := range c.entries.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.removeLocked(key)
			removed++
		}
	}
	return removed
}

// removeLocked removes key without counting an LRU eviction. Caller
// must hold c.mu.
func (c *LRUCache) removeLocked(key string) {
	if c.entries == nil || !c.entries.Contains(key) {
		return
	}
	c.skipEvict++
	c.entries.Remove(key)
	metrics.UpdateCachedEntries(c.entries.Len())
}

// GetOrLoad returns the cached value for key, or runs load to produce
// it. Concurrent misses for the same key are coalesced into a single
// load shared by all waiters. The second return reports whether the
// value came from cache without running load for this caller.
func (c *LRUCache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(ctx context.Context) (any, error)) (any, bool, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, true, nil
	}

	v, err, _ := c.flight.Do(key, func() (any, error) {
		// A concurrent leader may have populated the entry while this
		// caller was queued behind the flight lock.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		// Commit only after a fully successful load.
		c.Set(ctx, key, v, ttl)
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, false, nil
}

// Len returns the current number of live entries.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		return 0
	}
	return c.entries.Len()
}

// Stats returns cumulative hit/miss/eviction counters.
func (c *LRUCache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
