package cache

import (
	"sync"

	"github.com/aryodp/edgegate/internal/domain"
)

// DatasetCache owns the current dataset for the whole process.
// The refresher is the single writer; query handlers only read.
// Readers see either the fully-old or fully-new dataset, never a mix.
type DatasetCache struct {
	mu      sync.RWMutex
	current *domain.Dataset
}

// New creates an empty cache. Current() returns nil until the first
// Replace (snapshot hydration or refresh).
func New() *DatasetCache {
	return &DatasetCache{}
}

// Current returns the latest dataset, or nil if none was ever loaded.
// It is on the hot path of every query request, so it only takes a
// read lock for the pointer read.
func (c *DatasetCache) Current() *domain.Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.current
}

// Replace swaps in a new dataset wholesale.
func (c *DatasetCache) Replace(ds *domain.Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = ds
}

// Len returns the row count of the current dataset, 0 when empty.
func (c *DatasetCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return 0
	}
	return len(c.current.Rows)
}
