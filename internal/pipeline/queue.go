package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrQueueClosed is returned by Queue.Pop once the queue is closed and
// drained.
var ErrQueueClosed = errors.New("pipeline: queue closed")

// Queue is an unbounded FIFO for one producer and one consumer. Push never
// blocks.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	notify chan struct{}
}

// NewQueue returns an empty Queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{notify: make(chan struct{}, 1)}
}

// Push appends v. It returns false if the queue has been closed.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, v)
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// Pop removes and returns the oldest item, blocking until one is
// available, the queue is closed and empty, or ctx is done.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	var zero T
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			if len(q.items) == 0 {
				q.items = nil
			}
			q.mu.Unlock()
			return v, nil
		}
		if q.closed {
			q.mu.Unlock()
			return zero, ErrQueueClosed
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops further pushes. Items already queued can still be popped.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.notify)
	}
}

// Outbox is a bounded hand-off that never blocks the sender: when it is
// full the new item is discarded and counted.
type Outbox[T any] struct {
	ch      chan T
	sent    atomic.Uint64
	dropped atomic.Uint64
}

// NewOutbox returns an Outbox holding up to capacity items (minimum 1).
func NewOutbox[T any](capacity int) *Outbox[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Outbox[T]{ch: make(chan T, capacity)}
}

// TrySend enqueues v if there is room and reports whether it did.
func (o *Outbox[T]) TrySend(v T) bool {
	select {
	case o.ch <- v:
		o.sent.Add(1)
		return true
	default:
		o.dropped.Add(1)
		return false
	}
}

// Receive blocks until an item is available or ctx is done.
func (o *Outbox[T]) Receive(ctx context.Context) (T, error) {
	select {
	case v := <-o.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Len returns the number of items waiting.
func (o *Outbox[T]) Len() int { return len(o.ch) }

// Cap returns the capacity.
func (o *Outbox[T]) Cap() int { return cap(o.ch) }

// Sent returns how many items were accepted.
func (o *Outbox[T]) Sent() uint64 { return o.sent.Load() }

// Dropped returns how many items were discarded because the outbox was full.
func (o *Outbox[T]) Dropped() uint64 { return o.dropped.Load() }
