package brandsite

import (
	"sync"
	"time"
)

// ContentCache is an in-memory cache of all content blocks with TTL.
// Public page renders read through it; admin saves invalidate it.
type ContentCache struct {
	mu      sync.RWMutex
	blocks  map[string]ContentBlock
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewContentCache creates a ContentCache backed by the given Store.
func NewContentCache(s *Store, ttl time.Duration) *ContentCache {
	return &ContentCache{store: s, ttl: ttl}
}

func (c *ContentCache) valid() bool {
	return c.blocks != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ContentCache) Invalidate() {
	c.mu.Lock()
	c.blocks = nil
	c.mu.Unlock()
}

// ensureLoaded returns the cached block map after ensuring it is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *ContentCache) ensureLoaded() (map[string]ContentBlock, error) {
	c.mu.RLock()
	if c.valid() {
		blocks := c.blocks
		c.mu.RUnlock()
		return blocks, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.blocks, nil
	}
	list, err := c.store.ListContentBlocks()
	if err != nil {
		return nil, err
	}
	blocks := make(map[string]ContentBlock, len(list))
	for _, b := range list {
		blocks[b.Slug] = b
	}
	c.blocks = blocks
	c.fetched = time.Now()
	return blocks, nil
}

// Get returns one content block by slug.
func (c *ContentCache) Get(slug string) (ContentBlock, bool, error) {
	blocks, err := c.ensureLoaded()
	if err != nil {
		return ContentBlock{}, false, err
	}
	b, ok := blocks[slug]
	return b, ok, nil
}

// GetContent returns the stored content for slug, or fallback when the slug
// is absent or the store is unreachable. Pages always have something to show.
func (c *ContentCache) GetContent(slug, fallback string) string {
	b, ok, err := c.Get(slug)
	if err != nil || !ok {
		return fallback
	}
	return b.Content
}
