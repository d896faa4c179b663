package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostClock_Default(t *testing.T) {
	clock := NewHostClock(0)
	assert.Equal(t, DefaultUnixTime, clock.UnixTimestamp())
}

func TestHostClock_SetAndAdvance(t *testing.T) {
	clock := NewHostClock(100)
	assert.Equal(t, int64(100), clock.UnixTimestamp())

	// Reading does not move the clock
	assert.Equal(t, int64(100), clock.UnixTimestamp())

	assert.Equal(t, int64(160), clock.Advance(60))
	clock.Set(5)
	assert.Equal(t, int64(5), clock.UnixTimestamp())
}

func TestHostClock_ThreadSafe(t *testing.T) {
	clock := NewHostClock(0)

	var wg sync.WaitGroup
	wg.Add(50)
	for i := 0; i < 50; i++ {
		go func() {
			defer wg.Done()
			clock.Advance(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, DefaultUnixTime+50, clock.UnixTimestamp())
}
