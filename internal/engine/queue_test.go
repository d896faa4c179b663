package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Calindra/solana-twitter/internal/ir"
)

func testJob(token string) job {
	return job{
		tx:    ir.Transaction{Message: ir.Message{RequestToken: token}},
		reply: make(chan result, 1),
	}
}

func TestJobQueue_FIFO(t *testing.T) {
	q := newJobQueue()

	for _, tok := range []string{"A", "B", "C"} {
		require.True(t, q.Enqueue(testJob(tok)))
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"A", "B", "C"} {
		j, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, j.tx.Message.RequestToken)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestJobQueue_SignalCoalesces(t *testing.T) {
	q := newJobQueue()
	q.Enqueue(testJob("A"))
	q.Enqueue(testJob("B"))

	select {
	case <-q.Wait():
	default:
		t.Fatal("expected a pending signal")
	}

	select {
	case <-q.Wait():
		t.Fatal("signals should coalesce into one")
	default:
	}
}

func TestJobQueue_Close(t *testing.T) {
	q := newJobQueue()
	q.Close()
	q.Close() // idempotent

	assert.False(t, q.Enqueue(testJob("A")), "enqueue after close must fail")

	_, open := <-q.Wait()
	assert.False(t, open, "wait channel closes with the queue")
}

func TestJobQueue_ConcurrentEnqueue(t *testing.T) {
	q := newJobQueue()
	const goroutines = 10
	const perGoroutine = 100

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				q.Enqueue(testJob("x"))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*perGoroutine, q.Len())
}
