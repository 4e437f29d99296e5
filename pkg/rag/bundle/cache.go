package bundle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a loaded bundle stays live before the next request
// triggers a reload.
const DefaultTTL = 24 * time.Hour

// LoadFunc produces a fresh bundle. Returning (nil, nil) means no
// configuration exists; that result is never cached.
type LoadFunc func(ctx context.Context) (*Bundle, error)

// Cache is a single-slot bundle cache. Concurrent misses are collapsed into
// one load via singleflight; every caller of the losing goroutines receives
// the winner's bundle.
type Cache struct {
	load LoadFunc
	ttl  time.Duration

	mu       sync.RWMutex
	slot     *Bundle
	expireAt time.Time

	group singleflight.Group

	// now is swappable for tests
	now func() time.Time
}

func NewCache(load LoadFunc, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		load: load,
		ttl:  ttl,
		now:  time.Now,
	}
}

// flightResult carries the loaded bundle together with whether it was served
// from the slot, so the hit flag survives the singleflight boundary.
type flightResult struct {
	bundle *Bundle
	hit    bool
}

// Get returns the live bundle, loading one if the slot is empty or expired.
// The second return reports whether the bundle came from the cache.
func (c *Cache) Get(ctx context.Context) (*Bundle, bool, error) {
	c.mu.RLock()
	if c.slot != nil && c.now().Before(c.expireAt) {
		b := c.slot
		c.mu.RUnlock()
		return b, true, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("bundle", func() (interface{}, error) {
		// Another caller may have finished loading while we queued.
		c.mu.RLock()
		if c.slot != nil && c.now().Before(c.expireAt) {
			b := c.slot
			c.mu.RUnlock()
			return flightResult{bundle: b, hit: true}, nil
		}
		c.mu.RUnlock()

		b, err := c.load(ctx)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return flightResult{}, nil
		}

		c.mu.Lock()
		c.slot = b
		c.expireAt = c.now().Add(c.ttl)
		c.mu.Unlock()
		return flightResult{bundle: b}, nil
	})
	if err != nil {
		return nil, false, err
	}
	res := v.(flightResult)
	return res.bundle, res.hit, nil
}

// Invalidate drops the cached bundle so the next Get loads fresh state.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.slot = nil
	c.expireAt = time.Time{}
	c.mu.Unlock()
}
