// Package channel provides in-memory FIFO channels between the processes of a
// cluster. Delivery is ordered, lossless and never duplicated.
package channel

import (
	"errors"
	"sync"
)

var (
	ErrClosed = errors.New("Channel is closed")
)

// Queue is an unbounded FIFO queue. Push never blocks; Pop blocks until a
// value is available or the queue is closed.
type Queue[T any] struct {
	m      sync.Mutex
	cond   *sync.Cond
	items  []T
	closed bool
}

func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.m)
	return q
}

// Push appends v. It fails with ErrClosed once the queue has been closed.
func (q *Queue[T]) Push(v T) error {
	q.m.Lock()
	defer q.m.Unlock()

	if q.closed {
		return ErrClosed
	}
	q.items = append(q.items, v)
	q.cond.Signal()
	return nil
}

// Pop removes and returns the oldest value. Values pushed before Close are
// still delivered; after that Pop returns ErrClosed.
func (q *Queue[T]) Pop() (v T, err error) {
	q.m.Lock()
	defer q.m.Unlock()

	for len(q.items) == 0 {
		if q.closed {
			return v, ErrClosed
		}
		q.cond.Wait()
	}
	return q.pop(), nil
}

// TryPop is Pop without blocking.
func (q *Queue[T]) TryPop() (v T, ok bool) {
	q.m.Lock()
	defer q.m.Unlock()

	if len(q.items) == 0 {
		return v, false
	}
	return q.pop(), true
}

func (q *Queue[T]) Len() int {
	q.m.Lock()
	defer q.m.Unlock()
	return len(q.items)
}

// Close wakes every blocked Pop. It is safe to call more than once.
func (q *Queue[T]) Close() {
	q.m.Lock()
	defer q.m.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

func (q *Queue[T]) pop() T {
	var zero T
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return v
}
