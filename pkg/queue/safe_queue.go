package queue

import (
	"context"
	"sync"

	"github.com/eapache/queue"
	"github.com/jzx17/gothreadpool/pkg/types"
)

// ErrClosed is returned by Push after Close
var ErrClosed = types.ErrPoolClosed

// SafeQueue is an unbounded, blocking, thread-safe FIFO
type SafeQueue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  *queue.Queue
	closed bool
}

// New creates an empty SafeQueue
func New[T any]() *SafeQueue[T] {
	q := &SafeQueue[T]{
		items: queue.New(),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends v at the tail and wakes one waiting consumer
func (q *SafeQueue[T]) Push(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	q.items.Add(v)
	q.cond.Signal()
	return nil
}

// Pop blocks until an item is available or the queue is closed and empty.
// The boolean is false only for the latter.
func (q *SafeQueue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.items.Length() == 0 && !q.closed {
		q.cond.Wait()
	}

	return q.takeLocked()
}

// PopContext is Pop that also returns when ctx is done. It returns
// ErrClosed once the queue is closed and empty.
func (q *SafeQueue[T]) PopContext(ctx context.Context) (T, error) {
	// A cond var cannot target one waiter, so cancellation wakes them all.
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.items.Length() == 0 && !q.closed {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		q.cond.Wait()
	}

	v, ok := q.takeLocked()
	if !ok {
		return v, ErrClosed
	}
	return v, nil
}

// takeLocked removes the head element. Caller must hold q.mu.
func (q *SafeQueue[T]) takeLocked() (T, bool) {
	if q.items.Length() == 0 {
		var zero T
		return zero, false
	}
	return q.items.Remove().(T), true
}

// TryLen returns the current number of queued items. Diagnostic only.
func (q *SafeQueue[T]) TryLen() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

// Close stops further pushes and wakes every waiting consumer. With drop set,
// all queued items are removed and returned; otherwise consumers keep
// draining them. Close may be called more than once, and a dropping Close
// after a draining one discards whatever is still queued.
func (q *SafeQueue[T]) Close(drop bool) []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true

	var dropped []T
	if drop && q.items.Length() > 0 {
		dropped = make([]T, 0, q.items.Length())
		for q.items.Length() > 0 {
			dropped = append(dropped, q.items.Remove().(T))
		}
	}

	q.cond.Broadcast()
	return dropped
}

// Closed reports whether Close has been called
func (q *SafeQueue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
