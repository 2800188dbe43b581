// Package queue provides the unbounded FIFO queues that connect the
// OSC goroutines to the device loop.
package queue

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrClosed is returned once a queue has been closed and drained.
var ErrClosed = errors.New("queue closed")

// Queue is an unbounded, single-producer/single-consumer FIFO.
// Push never blocks. Consumers either block on Pop or take a
// non-blocking snapshot with PopAll.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	ready  chan struct{}
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{ready: make(chan struct{}, 1)}
}

// Push appends v to the queue.
func (q *Queue[T]) Push(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	q.items = append(q.items, v)

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return nil
}

// PopAll removes and returns everything queued at the time of the call,
// in arrival order. It returns ErrClosed only when the queue is closed
// and nothing is left to deliver.
func (q *Queue[T]) PopAll() ([]T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		if q.closed {
			return nil, ErrClosed
		}
		return nil, nil
	}
	items := q.items
	q.items = nil
	return items, nil
}

// Pop blocks until an item is available, the queue is closed and empty,
// or ctx is done.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	var zero T
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return v, nil
		}
		if q.closed {
			q.mu.Unlock()
			return zero, ErrClosed
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-q.ready:
		}
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops the queue from accepting new items.
// Items already queued can still be consumed.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.ready)
}
