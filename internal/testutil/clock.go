package testutil

import "sync"

// DefaultUnixTime is the host time a new HostClock starts at.
const DefaultUnixTime int64 = 1_700_000_000

// HostClock is a settable host clock for tests.
//
// It reports the same unix timestamp until Set or Advance moves it, so
// records created in one test carry predictable timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type HostClock struct {
	mu  sync.Mutex
	now int64
}

// NewHostClock creates a clock reading unix. Zero means DefaultUnixTime.
func NewHostClock(unix int64) *HostClock {
	if unix == 0 {
		unix = DefaultUnixTime
	}
	return &HostClock{now: unix}
}

// UnixTimestamp returns the current reading.
func (c *HostClock) UnixTimestamp() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to unix.
func (c *HostClock) Set(unix int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = unix
}

// Advance moves the clock forward by seconds and returns the new reading.
func (c *HostClock) Advance(seconds int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += seconds
	return c.now
}
