package gdata

import (
	"context"
	"sync"
)

// Scheduler accepts callbacks for later delivery on the execution context
// that owns it. Implementations must deliver in the order scheduled.
type Scheduler interface {
	Schedule(fn func())
}

// Queue is a FIFO Scheduler. Producers on any goroutine Schedule; the owner
// delivers on its own goroutine with Drain or Run.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	closed  bool
	wake    chan struct{}
}

var _ Scheduler = (*Queue)(nil)

func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Schedule queues fn. Callbacks scheduled after Close are dropped.
func (q *Queue) Schedule(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	q.signal()
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) take() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()

	batch := q.pending
	q.pending = nil
	return batch
}

// Drain runs everything queued so far on the calling goroutine, including
// callbacks scheduled by the callbacks themselves, and reports how many ran.
func (q *Queue) Drain() int {
	n := 0
	for {
		batch := q.take()
		if len(batch) == 0 {
			return n
		}
		for _, fn := range batch {
			fn()
		}
		n += len(batch)
	}
}

// Run delivers callbacks as they arrive until the queue is closed and empty
// or ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	for {
		q.Drain()

		q.mu.Lock()
		done := q.closed && len(q.pending) == 0
		q.mu.Unlock()
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
		}
	}
}

// Close stops the queue accepting callbacks. Run returns once what is
// already queued has been delivered.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.signal()
}
