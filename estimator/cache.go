package estimator

import (
	"context"
	"log/slog"
	"sync"
)

// Cache memoizes one estimate for a fixed key (the video path).
//
// The first Get computes the estimate; later calls return the stored
// value until Invalidate is called. Get is safe for concurrent use and
// computes at most once per invalidation.
type Cache struct {
	est Estimator
	key string

	mu     sync.Mutex
	value  Result
	cached bool
}

// NewCache wraps est; key identifies the memoized input (e.g., the video path)
func NewCache(est Estimator, key string) *Cache {
	return &Cache{est: est, key: key}
}

// Get returns the memoized estimate, computing it on first use
func (c *Cache) Get(ctx context.Context) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached {
		return c.value
	}

	result := c.est.Estimate(ctx)
	if ctx.Err() != nil {
		// an interrupted estimate is returned but not memoized
		return result
	}
	c.value = result
	c.cached = true

	slog.Debug("estimator: estimate cached",
		"key", c.key,
		"strategy", c.est.Name(),
		"count", c.value.Count,
		"source", c.value.Source,
	)
	return c.value
}

// Peek returns the memoized estimate without computing it
func (c *Cache) Peek() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.cached
}

// Invalidate drops the memoized estimate; the next Get recomputes it
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cached = false
	c.value = Result{}
	slog.Debug("estimator: cache invalidated", "key", c.key)
}

// Key returns the memoization key
func (c *Cache) Key() string {
	return c.key
}

// Strategy returns the wrapped estimator's name
func (c *Cache) Strategy() string {
	return c.est.Name()
}
