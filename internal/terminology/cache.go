package terminology

import (
	"sync"
	"time"

	"github.com/golang/groupcache/lru"

	"medvault/internal/port"
)

type cacheEntry struct {
	suggestions []port.Suggestion
	expiresAt   time.Time
}

// resultCache is a bounded LRU whose entries also expire after a TTL.
type resultCache struct {
	mu  sync.Mutex
	lru *lru.Cache
	ttl time.Duration
}

func newResultCache(size int, ttl time.Duration) *resultCache {
	if size <= 0 {
		return nil
	}
	return &resultCache{lru: lru.New(size), ttl: ttl}
}

func (c *resultCache) get(key string, now time.Time) ([]port.Suggestion, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	entry := v.(cacheEntry)
	if c.ttl > 0 && !now.Before(entry.expiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return entry.suggestions, true
}

func (c *resultCache) put(key string, suggestions []port.Suggestion, now time.Time) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, cacheEntry{suggestions: suggestions, expiresAt: now.Add(c.ttl)})
}
