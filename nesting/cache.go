package nesting

import "sync"

// versionedCache memoizes values computed under one modification stamp.
//
// Every entry belongs to the cache's current version. A lookup with a newer
// version clears the cache before reporting a miss; a lookup with an older
// version (a reader racing a bump) misses without touching the entries.
type versionedCache[K comparable, V any] struct {
	mu      sync.RWMutex
	version uint64
	items   map[K]V
}

func newVersionedCache[K comparable, V any]() *versionedCache[K, V] {
	return &versionedCache[K, V]{items: make(map[K]V)}
}

func (c *versionedCache[K, V]) get(key K, version uint64) (V, bool) {
	c.mu.RLock()
	if c.version == version {
		v, ok := c.items[key]
		c.mu.RUnlock()
		return v, ok
	}
	stale := c.version < version
	c.mu.RUnlock()

	if stale {
		c.mu.Lock()
		c.resetLocked(version)
		c.mu.Unlock()
	}
	var zero V
	return zero, false
}

func (c *versionedCache[K, V]) put(key K, version uint64, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case version < c.version:
		return // computed under a superseded stamp
	case version > c.version:
		c.resetLocked(version)
	}
	c.items[key] = value
}

// resetLocked moves the cache to a newer version, dropping all entries.
// Must hold c.mu for writing.
func (c *versionedCache[K, V]) resetLocked(version uint64) {
	if version <= c.version {
		return
	}
	c.version = version
	clear(c.items)
}

func (c *versionedCache[K, V]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
