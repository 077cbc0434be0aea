// Package cache provides the in-process prefetch page cache.
package cache

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driven"
)

// Ensure PageCache implements the interface.
var _ driven.PageCache = (*PageCache)(nil)

// PageCache is a bounded ristretto cache of prefetched first pages.
// Every page costs one unit, so capacity is a page count.
type PageCache struct {
	cache *ristretto.Cache[string, domain.StoryPage]
}

// NewPageCache creates a cache holding roughly maxEntries pages.
func NewPageCache(maxEntries int) (*PageCache, error) {
	if maxEntries <= 0 {
		maxEntries = domain.DefaultFeedSettings().PrefetchCacheEntries
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, domain.StoryPage]{
		NumCounters: int64(maxEntries) * 10,
		MaxCost:     int64(maxEntries),
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create page cache: %w", err)
	}
	return &PageCache{cache: c}, nil
}

// Get returns the cached page for key.
func (c *PageCache) Get(key string) (domain.StoryPage, bool) {
	return c.cache.Get(key)
}

// Set stores page under key. The write is applied asynchronously and may be
// rejected by the admission policy.
func (c *PageCache) Set(key string, page domain.StoryPage) {
	c.cache.Set(key, page, 1)
}

// Wait blocks until buffered writes have been applied.
func (c *PageCache) Wait() {
	c.cache.Wait()
}

// Close stops the cache's background goroutines.
func (c *PageCache) Close() {
	c.cache.Close()
}
