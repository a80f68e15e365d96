package semanticindex

import (
	"container/list"
	"sync"
	"time"

	"github.com/theodags/mantic/internal/types"
)

// shortCircuitWindow is how long a cached entry is served without
// re-reading the on-disk index (spec §4.5).
const shortCircuitWindow = 5 * time.Minute

// Cache is an in-process LRU keyed by project root, capacity 3 by
// default (spec §4.5). Grounded on the teacher's
// internal/semantic/lru_cache.go (container/list-based).
type Cache struct {
	maxSize int
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List
}

type cacheEntry struct {
	root     string
	idx      *types.CacheIndex
	cachedAt time.Time
}

// NewCache creates a Cache with the given capacity (<=0 defaults to 3).
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 3
	}
	return &Cache{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns a cached index for root if present and still within the
// short-circuit window.
func (c *Cache) Get(root string) (*types.CacheIndex, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[root]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*cacheEntry)
	if time.Since(entry.cachedAt) > shortCircuitWindow {
		c.order.Remove(elem)
		delete(c.items, root)
		return nil, false
	}
	c.order.MoveToFront(elem)
	return entry.idx, true
}

// Put stores idx for root, evicting the least-recently-used entry if the
// cache is at capacity.
func (c *Cache) Put(root string, idx *types.CacheIndex) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[root]; ok {
		elem.Value.(*cacheEntry).idx = idx
		elem.Value.(*cacheEntry).cachedAt = time.Now()
		c.order.MoveToFront(elem)
		return
	}

	entry := &cacheEntry{root: root, idx: idx, cachedAt: time.Now()}
	elem := c.order.PushFront(entry)
	c.items[root] = elem

	if c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).root)
		}
	}
}

// Invalidate drops any cached entry for root.
func (c *Cache) Invalidate(root string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[root]; ok {
		c.order.Remove(elem)
		delete(c.items, root)
	}
}
