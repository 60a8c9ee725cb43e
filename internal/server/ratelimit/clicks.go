package ratelimit

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// ClickLimiter caps affiliate clicks per key within a fixed window. Each key
// maps to a counter that expires at its window's reset time. Expired counters
// are dropped only by Sweep, which the owner calls or schedules with Start.
type ClickLimiter struct {
	max    int
	window time.Duration
	counts *cache.Cache

	stopOnce sync.Once
	stop     chan struct{}
}

// NewClickLimiter allows limit clicks per key per window.
func NewClickLimiter(limit int, window time.Duration) *ClickLimiter {
	return &ClickLimiter{
		max:    limit,
		window: window,
		counts: cache.New(window, 0),
		stop:   make(chan struct{}),
	}
}

// ClickKey builds the limiter key for a visitor and affiliate code.
func ClickKey(ip, code string) string {
	return ip + "|" + code
}

// CheckAndIncrement counts one click for key and reports whether it is within
// the limit.
func (c *ClickLimiter) CheckAndIncrement(key string) bool {
	for attempt := 0; attempt < 2; attempt++ {
		if err := c.counts.Add(key, 1, c.window); err == nil {
			return c.max >= 1
		}
		n, err := c.counts.IncrementInt(key, 1)
		if err == nil {
			return n <= c.max
		}
		// The counter expired between Add and IncrementInt.
		c.counts.Delete(key)
	}
	return false
}

// Sweep removes expired counters.
func (c *ClickLimiter) Sweep() {
	c.counts.DeleteExpired()
}

// Len returns the number of stored counters, expired or not.
func (c *ClickLimiter) Len() int {
	return c.counts.ItemCount()
}

// Start sweeps every interval until Stop is called.
func (c *ClickLimiter) Start(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop ends the sweep loop started by Start. It is safe to call more than once.
func (c *ClickLimiter) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}
