// Package queue provides a fixed-capacity FIFO queue with blocking
// enqueue/dequeue semantics. The capacity bound is the backpressure
// mechanism reused by the worker pool intake and the producer/consumer
// pipeline: a fast producer blocks instead of growing memory without
// limit.
package queue

import (
	"fmt"
	"sync"

	ring "github.com/eapache/queue"

	"github.com/jzx17/gotaskpool/pkg/types"
)

// Bounded is a fixed-capacity FIFO queue safe for concurrent use by
// multiple producers and consumers.
//
// Items from a single producer goroutine are dequeued in the order that
// producer enqueued them. Interleaving between producers is unspecified.
// After Close, pending items can still be drained; once empty, Dequeue
// returns types.ErrQueueClosed.
type Bounded[T any] struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	items    *ring.Queue
	capacity int
	closed   bool
}

// NewBounded creates a bounded queue with the given capacity.
// Capacity must be at least 1.
func NewBounded[T any](capacity int) (*Bounded[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("queue capacity must be positive, got %d", capacity)
	}

	q := &Bounded[T]{
		items:    ring.New(),
		capacity: capacity,
	}
	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)
	return q, nil
}

// Enqueue inserts item at the tail, blocking while the queue is full.
// Returns types.ErrQueueClosed if the queue is closed before space
// becomes available.
func (q *Bounded[T]) Enqueue(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.items.Length() >= q.capacity && !q.closed {
		q.notFull.Wait()
	}
	if q.closed {
		return types.ErrQueueClosed
	}

	q.items.Add(item)
	q.notEmpty.Signal()
	return nil
}

// TryEnqueue inserts item without blocking. Returns types.ErrQueueFull
// when the queue is at capacity and types.ErrQueueClosed after Close.
func (q *Bounded[T]) TryEnqueue(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return types.ErrQueueClosed
	}
	if q.items.Length() >= q.capacity {
		return types.ErrQueueFull
	}

	q.items.Add(item)
	q.notEmpty.Signal()
	return nil
}

// Dequeue removes and returns the head item, blocking while the queue
// is empty. After Close, remaining items are still returned in order;
// once drained, Dequeue returns types.ErrQueueClosed.
func (q *Bounded[T]) Dequeue() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.items.Length() == 0 && !q.closed {
		q.notEmpty.Wait()
	}

	var zero T
	if q.items.Length() == 0 {
		return zero, types.ErrQueueClosed
	}

	item := q.items.Remove().(T)
	q.notFull.Signal()
	return item, nil
}

// TryDequeue removes the head item without blocking. Returns
// types.ErrQueueEmpty when nothing is buffered on an open queue and
// types.ErrQueueClosed once the queue is closed and drained.
func (q *Bounded[T]) TryDequeue() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.items.Length() == 0 {
		if q.closed {
			return zero, types.ErrQueueClosed
		}
		return zero, types.ErrQueueEmpty
	}

	item := q.items.Remove().(T)
	q.notFull.Signal()
	return item, nil
}

// Close marks the queue closed and wakes every blocked producer and
// consumer. Blocked and future Enqueue calls fail with
// types.ErrQueueClosed; Dequeue keeps draining buffered items first.
// Close is idempotent.
func (q *Bounded[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.notFull.Broadcast()
	q.notEmpty.Broadcast()
}

// Closed reports whether the queue has been closed.
func (q *Bounded[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of buffered items. The value is a snapshot
// that may be stale as soon as it is returned.
func (q *Bounded[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

// Cap returns the configured capacity.
func (q *Bounded[T]) Cap() int {
	return q.capacity
}
