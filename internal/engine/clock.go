package engine

import (
	"sync/atomic"
	"time"
)

// Clock is the monotonic logical clock that orders receipts.
//
// Every receipt is stamped with a strictly increasing seq from this clock,
// so the transaction log has one total order that does not depend on wall
// time. The host clock (unix seconds) is separate and only feeds record
// timestamps.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// However, the Engine's single-writer design means only one goroutine
// typically calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
// Used to resume after the last logged receipt.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// SystemClock reads host time from the wall clock.
type SystemClock struct{}

// UnixTimestamp returns the current unix time in seconds.
func (SystemClock) UnixTimestamp() int64 {
	return time.Now().Unix()
}
