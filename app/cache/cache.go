// Package cache keeps rendered pages in memory for a short time.
package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// PageCache stores rendered response bodies by key.
type PageCache struct {
	store *ristretto.Cache[string, []byte]
	ttl   time.Duration
}

// New creates a cache holding up to maxBytes of page bodies, each kept for
// ttl. A zero ttl disables caching.
func New(maxBytes int64, ttl time.Duration) (*PageCache, error) {
	store, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 10_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create page cache: %w", err)
	}
	return &PageCache{store: store, ttl: ttl}, nil
}

// Get returns the cached body for key.
func (c *PageCache) Get(key string) ([]byte, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	return c.store.Get(key)
}

// Set caches body under key. The write is visible to Get once Set returns.
func (c *PageCache) Set(key string, body []byte) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.store.SetWithTTL(key, body, int64(len(body)), c.ttl)
	c.store.Wait()
}

// Clear drops every cached page.
func (c *PageCache) Clear() {
	if c == nil {
		return
	}
	c.store.Clear()
}

// Close stops the cache's background goroutines.
func (c *PageCache) Close() {
	if c == nil {
		return
	}
	c.store.Close()
}
