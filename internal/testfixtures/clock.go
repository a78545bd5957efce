package testfixtures

import (
	"sync"
	"time"
)

// Clock is a manually driven time source for deterministic tests.
type Clock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewClock returns a clock pinned to start, or to the shared ReferenceTime
// when start is the zero value.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

// Now returns the instant the clock is pinned to.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Current is an alias for Now that reads better in assertions.
func (c *Clock) Current() time.Time {
	return c.Now()
}

// NowFunc exposes Now as a function suitable for dependency injection. A nil
// clock degrades to the real time source.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set pins the clock to the provided instant.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	updated := c.now
	c.mu.Unlock()
	return updated
}
