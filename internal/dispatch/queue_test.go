package dispatch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestQueue_FIFO(t *testing.T) {
	q := newRequestQueue()

	for _, id := range []string{"A", "B", "C"} {
		require.True(t, q.Enqueue(Request{CorrelationID: id}))
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"A", "B", "C"} {
		got, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, got.CorrelationID)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestRequestQueue_EnqueueAfterClose(t *testing.T) {
	q := newRequestQueue()
	q.Close()
	q.Close() // idempotent

	assert.False(t, q.Enqueue(Request{CorrelationID: "late"}))
	assert.True(t, q.Closed())

	_, open := <-q.Wait()
	assert.False(t, open, "signal channel is closed with the queue")
}

func TestRequestQueue_SignalCoalesces(t *testing.T) {
	q := newRequestQueue()
	q.Enqueue(Request{CorrelationID: "1"})
	q.Enqueue(Request{CorrelationID: "2"})

	<-q.Wait()
	select {
	case <-q.Wait():
		t.Fatal("expected a single coalesced signal")
	default:
	}
	assert.Equal(t, 2, q.Len())
}

func TestRequestQueue_ConcurrentEnqueue(t *testing.T) {
	q := newRequestQueue()
	const goroutines, each = 20, 50

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				q.Enqueue(Request{})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*each, q.Len())
}
