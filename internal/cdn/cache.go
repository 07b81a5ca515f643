package cdn

import (
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache memoizes original→final URL decisions so each distinct reference is
// evaluated once per render pass. Keys are xxhash digests of the original
// URL string.
type Cache interface {
	Get(key uint64) (string, bool)
	Add(key uint64, value string)
}

func cacheKey(rawURL string) uint64 {
	return xxhash.Sum64String(rawURL)
}

// mapCache is the default request-scoped cache. It grows monotonically for
// the lifetime of one render pass and is discarded with the rewriter; it is
// not safe for concurrent use.
type mapCache map[uint64]string

func newMapCache() mapCache { return make(mapCache) }

func (c mapCache) Get(key uint64) (string, bool) {
	v, ok := c[key]
	return v, ok
}

func (c mapCache) Add(key uint64, value string) { c[key] = value }

// SharedCache is a concurrency-safe rewrite cache backed by an expirable
// LRU, for workloads where many workers process distinct documents against
// the same configuration (the batch processor). Entries expire so a
// long-lived cache never serves decisions from a superseded configuration
// indefinitely.
type SharedCache struct {
	lru *expirable.LRU[uint64, string]
}

// NewSharedCache returns a SharedCache holding up to size entries for at
// most ttl.
func NewSharedCache(size int, ttl time.Duration) *SharedCache {
	return &SharedCache{lru: expirable.NewLRU[uint64, string](size, nil, ttl)}
}

func (c *SharedCache) Get(key uint64) (string, bool) { return c.lru.Get(key) }

func (c *SharedCache) Add(key uint64, value string) { c.lru.Add(key, value) }

// Purge drops every cached decision.
func (c *SharedCache) Purge() { c.lru.Purge() }
