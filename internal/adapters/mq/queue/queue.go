// Package queue defines the contract for enqueuing and consuming efforts.
//
// The intake endpoint enqueues without blocking; a full queue is a
// backpressure signal surfaced to the caller, never a silent drop.
package queue

import (
	"context"
	"sync"

	"github.com/acclaimhq/acclaim/internal/domain/model"
	"github.com/acclaimhq/acclaim/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 10000
)

// Effort is the payload type flowing through the queue.
type Effort = model.Effort

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an effort to the queue.
	// Returns false when the queue is full or closed and the effort was not
	// enqueued.
	Enqueue(ctx context.Context, e Effort) bool

	// Dequeue returns a channel that receives efforts as they become
	// available. The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Effort

	// Len returns the current number of queued efforts.
	Len(ctx context.Context) int

	// Close stops new enqueues. Already-queued efforts remain consumable.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	efforts  chan Effort
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.efforts = make(chan Effort, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds an effort to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Effort) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return false
	}

	select {
	case q.efforts <- e:
		metrics.RecordQueueEnqueue()
		q.publishGauges()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		return false
	default:
		// Queue full: backpressure.
		metrics.RecordQueueEnqueueError()
		return false
	}
}

// Dequeue returns a channel that receives efforts as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Effort {
	out := make(chan Effort)
	go func() {
		defer close(out)
		for e := range q.efforts {
			select {
			case out <- e:
				metrics.RecordQueueDequeue()
				q.publishGauges()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued efforts.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.efforts)
	q.publishGauges()
	return size
}

// Close stops new enqueues. Safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.efforts)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) publishGauges() {
	size := len(q.efforts)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
