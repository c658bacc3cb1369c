package terminology

import "sync"

type cacheKey struct {
	code   string
	system string
}

// Cache is a process-lifetime memo of (code, system OID) to resolved display
// text. It is append-only and safe for concurrent parses.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]string
}

// NewCache creates an empty resolution cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]string)}
}

// Get returns the cached display for (code, system), if any.
func (c *Cache) Get(code, system string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	display, ok := c.entries[cacheKey{code: code, system: system}]
	return display, ok
}

// Put records a resolved display. First write wins so concurrent parses
// stay deterministic.
func (c *Cache) Put(code, system, display string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey{code: code, system: system}
	if _, exists := c.entries[key]; !exists {
		c.entries[key] = display
	}
}

// Len reports the number of cached resolutions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
