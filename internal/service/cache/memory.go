package cache

import (
	"context"
	"sync"
	"time"
)

var _ SpotCache = (*MemorySpotCache)(nil)

// MemorySpotCache is a process-local SpotCache. Expired entries are dropped on read.
type MemorySpotCache struct {
	mu  sync.RWMutex
	m   map[int64]SpotEntry
	ttl time.Duration
	now func() time.Time
}

type MemoryOption func(*MemorySpotCache)

// WithClock replaces time.Now, for deterministic tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemorySpotCache) { c.now = now }
}

func NewMemorySpotCache(ttl time.Duration, opts ...MemoryOption) *MemorySpotCache {
	c := &MemorySpotCache{m: make(map[int64]SpotEntry), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemorySpotCache) GetSpot(_ context.Context, productID int64) (SpotEntry, bool, error) {
	c.mu.RLock()
	e, ok := c.m[productID]
	c.mu.RUnlock()
	if !ok {
		return SpotEntry{}, false, nil
	}
	if !e.Fresh(c.now(), c.ttl) {
		c.mu.Lock()
		if cur, still := c.m[productID]; still && cur.FetchedAt.Equal(e.FetchedAt) {
			delete(c.m, productID)
		}
		c.mu.Unlock()
		return SpotEntry{}, false, nil
	}
	return e, true, nil
}

// SetSpot stores e. A zero FetchedAt is stamped with the cache clock.
func (c *MemorySpotCache) SetSpot(_ context.Context, productID int64, e SpotEntry) error {
	if e.FetchedAt.IsZero() {
		e.FetchedAt = c.now()
	}
	c.mu.Lock()
	c.m[productID] = e
	c.mu.Unlock()
	return nil
}

// Len counts stored entries, fresh or not.
func (c *MemorySpotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
