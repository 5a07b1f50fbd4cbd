package cache

import (
	"time"

	"github.com/courtside/courtside/pkg/logger"
)

// Option applies a configuration option to the LRUCache.
type Option func(*LRUCache)

// WithCapacity sets the entry-count budget. A non-positive capacity
// leaves the cache in degraded always-miss mode.
func WithCapacity(capacity int) Option {
	return func(c *LRUCache) {
		c.capacity = capacity
	}
}

// WithDefaultTTL sets the TTL applied when Set receives a non-positive one.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *LRUCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source, mainly for TTL tests.
func WithClock(now func() time.Time) Option {
	return func(c *LRUCache) {
		if now != nil {
			c.clock = now
		}
	}
}

// WithLogger sets a custom logger for the cache.
func WithLogger(log logger.Logger) Option {
	return func(c *LRUCache) {
		if log != nil {
			c.log = log
		}
	}
}
