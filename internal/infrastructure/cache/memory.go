package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCountCache is the in-process fallback used when no Redis address is
// configured.
type MemoryCountCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	value   int64
	expires time.Time
	valid   bool
}

func NewMemoryCountCache(ttl time.Duration) *MemoryCountCache {
	return &MemoryCountCache{ttl: ttl, now: time.Now}
}

func (c *MemoryCountCache) Get(ctx context.Context) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid || !c.now().Before(c.expires) {
		c.valid = false
		return 0, false, nil
	}
	return c.value, true, nil
}

func (c *MemoryCountCache) Set(ctx context.Context, count int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = count
	c.expires = c.now().Add(c.ttl)
	c.valid = true
	return nil
}

func (c *MemoryCountCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.valid = false
	return nil
}
