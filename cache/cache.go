// Package cache memoizes resolved styles per widget node.
//
// Reads run concurrently, insert-on-miss and eviction are serialized by a
// single lock. The cache never observes widget state itself: callers must
// Invalidate a node after changing its states or attributes.
package cache

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"wss/widget"
)

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      uint64 // served from cache
	Misses    uint64 // computed and stored
	Uncached  uint64 // computed for nodes without identity
	Entries   int    // currently stored
	Evictions uint64 // removed by invalidation
}

type entry[V any] struct {
	value V
	ids   []widget.ID // identities indexing this entry
}

// Cache maps keys to values of type V.
type Cache[V any] struct {
	log *zap.Logger

	mu      sync.RWMutex
	entries map[string]entry[V]
	byID    map[widget.ID]map[string]struct{} // identity -> keys embedding it

	hits, misses, uncached, evictions atomic.Uint64
}

// New creates an empty cache.
func New[V any](log *zap.Logger) *Cache[V] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache[V]{
		log:     log.Named("cache"),
		entries: make(map[string]entry[V]),
		byID:    make(map[widget.ID]map[string]struct{}),
	}
}

// Get returns cached value without computing it.
func (c *Cache[V]) Get(key Key) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key.String()]
	return e.value, ok
}

// GetOrCompute returns cached value for key or stores result of compute.
// Compute runs outside of the lock and may be called more than once for the
// same key by concurrent callers, the first stored value wins.
func (c *Cache[V]) GetOrCompute(key Key, compute func() V) V {
	k := key.String()

	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return e.value
	}

	v := compute()

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[k]; ok {
		c.hits.Add(1)
		return e.value
	}
	c.misses.Add(1)
	ids := append([]widget.ID{key.ID}, key.deps...)
	c.entries[k] = entry[V]{value: v, ids: ids}
	for _, id := range ids {
		c.index(id, k)
	}
	return v
}

// Uncached records a resolution which could not be cached.
func (c *Cache[V]) Uncached() {
	c.uncached.Add(1)
}

// Invalidate evicts every entry whose key embeds the identity, either as the
// node itself or as one of its consulted ancestors. Returns number of evicted
// entries, unknown identity is not an error.
func (c *Cache[V]) Invalidate(id widget.ID) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, ok := c.byID[id]
	if !ok {
		return 0
	}
	n := len(keys)
	for k := range keys {
		for _, other := range c.entries[k].ids {
			c.unindex(other, k)
		}
		delete(c.entries, k)
	}

	c.evictions.Add(uint64(n))
	c.log.Debug("Invalidated", zap.String("id", string(id)), zap.Int("evicted", n))
	return n
}

// Len returns number of stored entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset drops all entries, counters are kept.
func (c *Cache[V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
	c.byID = make(map[widget.ID]map[string]struct{})
}

// Stats returns current counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Uncached:  c.uncached.Load(),
		Entries:   c.Len(),
		Evictions: c.evictions.Load(),
	}
}

func (c *Cache[V]) index(id widget.ID, key string) {
	set, ok := c.byID[id]
	if !ok {
		set = make(map[string]struct{})
		c.byID[id] = set
	}
	set[key] = struct{}{}
}

func (c *Cache[V]) unindex(id widget.ID, key string) {
	set := c.byID[id]
	delete(set, key)
	if len(set) == 0 {
		delete(c.byID, id)
	}
}
