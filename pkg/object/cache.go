package object

import (
	"os"
	"strconv"
	"sync"
	"sync/atomic"
)

// Cache configuration flags - can be set via environment variables
var (
	// EnableLookupCache enables caching of prototype chain lookups.
	// Read once at package init; per-realm opt-out via
	// Config.DisableLookupCache.
	EnableLookupCache = getEnvBool("PROTOLITH_ENABLE_LOOKUP_CACHE", true)
)

// getEnvBool reads a boolean environment variable with a default value
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

type lookupKey struct {
	table *PlainObject
	name  string
}

type lookupEntry struct {
	owner        *PlainObject
	epoch        uint64
	startVersion uint32
	ownerVersion uint32
}

// lookupCache memoizes which chain member owned a key the last time it
// was resolved from a given start object. An entry is valid only while
// the realm epoch it was recorded in still holds (any define, delete,
// write or prototype relink bumps the epoch and orphans every cached
// path at once) and while both endpoint shapes still carry the layout
// versions seen at record time. The epoch check is deliberately coarse
// - SetPrototype is rare and allowed to be expensive, resolution is
// not; the shape versions guard the endpoints against layout churn
// within an epoch.
type lookupCache struct {
	mu      sync.RWMutex
	entries map[lookupKey]lookupEntry

	hits   atomic.Uint64
	misses atomic.Uint64
}

func newLookupCache() *lookupCache {
	return &lookupCache{entries: make(map[lookupKey]lookupEntry)}
}

// cachedOwner returns the memoized owning table for (start, name) if
// still valid in the current epoch, nil otherwise.
func (r *Realm) cachedOwner(start *PlainObject, name string, epoch uint64) *PlainObject {
	if r.cache == nil || start == nil {
		return nil
	}
	c := r.cache
	c.mu.RLock()
	e, ok := c.entries[lookupKey{table: start, name: name}]
	c.mu.RUnlock()
	if !ok || e.epoch != epoch ||
		e.startVersion != start.shape.version || e.ownerVersion != e.owner.shape.version {
		c.misses.Add(1)
		return nil
	}
	c.hits.Add(1)
	return e.owner
}

func (c *lookupCache) store(start *PlainObject, name string, owner *PlainObject, epoch uint64) {
	c.mu.Lock()
	// Stale entries from earlier epochs are overwritten in place; a
	// full sweep is not worth it at expected sizes.
	c.entries[lookupKey{table: start, name: name}] = lookupEntry{
		owner:        owner,
		epoch:        epoch,
		startVersion: start.shape.version,
		ownerVersion: owner.shape.version,
	}
	c.mu.Unlock()
}

// CacheStats returns the hit/miss counters of the realm's lookup
// cache. Zeroes when the cache is disabled.
func (r *Realm) CacheStats() (hits, misses uint64) {
	if r.cache == nil {
		return 0, 0
	}
	return r.cache.hits.Load(), r.cache.misses.Load()
}
