package leaderboard

import (
	"slices"
	"sync"
)

// DefaultCacheSize bounds a Cache created with a non-positive size.
const DefaultCacheSize = 64

// Cache memoizes boards by selector key, evicting the oldest entry when full.
type Cache struct {
	mu      sync.Mutex
	max     int
	entries map[string][]RankItem
	order   []string
}

// NewCache creates a cache holding at most size boards.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{max: size, entries: make(map[string][]RankItem, size)}
}

// Get returns the board for sel, generating it on a miss. The returned slice
// is a copy; item tag and attribute values are shared and must not be changed.
func (c *Cache) Get(sel Selector) []RankItem {
	key := sel.Key()

	c.mu.Lock()
	if items, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return slices.Clone(items)
	}
	c.mu.Unlock()

	items := Generate(sel)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		if len(c.order) >= c.max {
			delete(c.entries, c.order[0])
			c.order = c.order[1:]
		}
		c.entries[key] = items
		c.order = append(c.order, key)
	}
	return slices.Clone(items)
}

// Len returns the number of cached boards.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
