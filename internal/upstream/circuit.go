package upstream

import (
	"sync"
	"time"
)

// Circuit tracks rate-limit backoff for a single upstream. The zero value is
// closed and ready to use.
type Circuit struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

// IsOpen reports whether calls must be skipped at now, and until when.
func (c *Circuit) IsOpen(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

// Open blocks calls until resetAt. An earlier reset never shortens an open window.
func (c *Circuit) Open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if resetAt.After(c.resetAt) {
		c.resetAt = resetAt
	}
}

// Trip opens the circuit for the duration carried by a rate-limit error.
func (c *Circuit) Trip(now time.Time, err *RateLimitError) time.Time {
	resetAt := now.Add(err.RetryAfter)
	c.Open(resetAt)
	return resetAt
}

// Reset closes the circuit.
func (c *Circuit) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = time.Time{}
}
