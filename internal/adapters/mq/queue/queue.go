// Package queue carries conflict advisories from the submit path to the
// workers that persist them.
//
// Enqueue never blocks: a full or closed queue rejects the advisory and the
// caller decides what to do with it.
package queue

import (
	"context"
	"sync"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Advisory is the payload type flowing through the queue.
type Advisory = model.Advisory

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an advisory to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, a Advisory) bool

	// Dequeue returns a channel that receives advisories as they become
	// available. The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Advisory

	// Len returns the current number of queued advisories.
	Len(ctx context.Context) int

	// Close stops accepting advisories. Pending ones are still delivered.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan Advisory
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}

	q.items = make(chan Advisory, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds an advisory to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, a Advisory) bool { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return false
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError("context_cancelled")
		return false
	}

	select {
	case q.items <- a:
		metrics.RecordQueueEnqueue()
		q.observe()
		return true
	default:
		metrics.RecordQueueEnqueueError("full")
		return false
	}
}

// Dequeue returns a channel that receives advisories as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Advisory {
	out := make(chan Advisory)
	go func() {
		defer close(out)
		for a := range q.items {
			select {
			case out <- a:
				metrics.RecordQueueDequeue()
				q.observe()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued advisories.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return q.observe()
}

func (q *InMemoryQueue) observe() int {
	size := len(q.items)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close stops accepting advisories. Calling it twice is a no-op.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
