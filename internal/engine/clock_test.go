package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_StartsAt(t *testing.T) {
	assert.Equal(t, int64(0), NewClock().Current())
	assert.Equal(t, int64(41), NewClockAt(41).Current())
	assert.Equal(t, int64(42), NewClockAt(41).Next(), "resumed clock continues after start")
}

func TestClock_NextIncrements(t *testing.T) {
	c := NewClock()

	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())
	assert.Equal(t, int64(2), c.Current(), "Current must not advance")
}

func TestClock_ConcurrentNextUnique(t *testing.T) {
	c := NewClock()
	const goroutines = 50
	const calls = 100

	var wg sync.WaitGroup
	seqs := make(chan int64, goroutines*calls)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				seqs <- c.Next()
			}
		}()
	}
	wg.Wait()
	close(seqs)

	seen := make(map[int64]bool)
	for seq := range seqs {
		assert.False(t, seen[seq], "seq %d generated twice", seq)
		seen[seq] = true
	}
	assert.Len(t, seen, goroutines*calls)
}

func TestSystemClock_ReadsWallTime(t *testing.T) {
	before := time.Now().Unix()
	got := SystemClock{}.UnixTimestamp()
	after := time.Now().Unix()

	assert.GreaterOrEqual(t, got, before)
	assert.LessOrEqual(t, got, after)
}
