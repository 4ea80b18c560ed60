package token

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// CacheKey digests raw token text for cache lookups. Tokens are secrets;
// the cache must never key on (or retain) the raw text, so everything
// entering the cache goes through this xxhash64 digest first.
func CacheKey(tokenStr string) uint64 {
	return xxhash.Sum64String(tokenStr)
}

// VerifyCache memoizes verification results keyed by token digest.
// Implementations must be safe for concurrent use. A cache hit skips the
// revocation lookup for the entry's lifetime, so deployments that need
// immediate revocation should keep the TTL short or use NopCache.
type VerifyCache interface {
	Get(key uint64) (*Claims, bool)
	Put(key uint64, claims *Claims, ttl time.Duration)
}

// NopCache satisfies VerifyCache and caches nothing. It is the default and
// the right choice for tests.
type NopCache struct{}

func (NopCache) Get(uint64) (*Claims, bool)         { return nil, false }
func (NopCache) Put(uint64, *Claims, time.Duration) {}

const cacheShardCount = 16

type cacheEntry struct {
	claims    *Claims
	expiresAt time.Time
}

type cacheShard struct {
	mu      sync.Mutex
	entries map[uint64]cacheEntry
}

// ShardedCache is a bounded concurrent verification cache: a fixed shard
// array with a per-shard mutex and per-entry expiry. Expired entries are
// evicted lazily on read and swept on write when a shard hits its bound.
type ShardedCache struct {
	shards      [cacheShardCount]cacheShard
	maxPerShard int
	clock       func() time.Time
}

// NewShardedCache builds a cache bounded at maxEntries across all shards.
// maxEntries <= 0 selects a default of 4096.
func NewShardedCache(maxEntries int) *ShardedCache {
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	perShard := maxEntries / cacheShardCount
	if perShard < 1 {
		perShard = 1
	}

	c := &ShardedCache{
		maxPerShard: perShard,
		clock:       time.Now,
	}
	for i := range c.shards {
		c.shards[i].entries = make(map[uint64]cacheEntry)
	}
	return c
}

func (c *ShardedCache) shard(key uint64) *cacheShard {
	return &c.shards[key%cacheShardCount]
}

func (c *ShardedCache) Get(key uint64) (*Claims, bool) {
	s := c.shard(key)
	now := c.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.After(now) {
		delete(s.entries, key)
		return nil, false
	}
	return entry.claims, true
}

func (c *ShardedCache) Put(key uint64, claims *Claims, ttl time.Duration) {
	if claims == nil || ttl <= 0 {
		return
	}

	s := c.shard(key)
	now := c.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= c.maxPerShard {
		for k, entry := range s.entries {
			if !entry.expiresAt.After(now) {
				delete(s.entries, k)
			}
		}
		// Shard still full of live entries: drop arbitrary ones rather than
		// grow without bound.
		for k := range s.entries {
			if len(s.entries) < c.maxPerShard {
				break
			}
			delete(s.entries, k)
		}
	}

	s.entries[key] = cacheEntry{claims: claims, expiresAt: now.Add(ttl)}
}

// Len reports the live entry count across shards. Intended for tests and
// diagnostics.
func (c *ShardedCache) Len() int {
	total := 0
	for i := range c.shards {
		c.shards[i].mu.Lock()
		total += len(c.shards[i].entries)
		c.shards[i].mu.Unlock()
	}
	return total
}
