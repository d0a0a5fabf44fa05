package citation

import "sync"

// Cache is the process-wide citation verification cache of spec.md §3: a
// single map guarded by one mutex, cleared only via Clear. Entries are
// immutable once inserted; Put overwrites rather than mutating in place.
type Cache struct {
	mu      sync.Mutex
	entries map[string]CacheEntry
}

// NewCache constructs an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]CacheEntry)}
}

// Get returns the cached entry for a normalized citation, if present.
func (c *Cache) Get(normalized string) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[normalized]
	return e, ok
}

// Put stores (or replaces) the entry for a normalized citation.
func (c *Cache) Put(normalized string, e CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[normalized] = e
}

// Clear removes all entries. The only way the cache is ever emptied, per
// spec.md §3.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]CacheEntry)
}

// Len reports the number of cached entries (test/observability helper).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
