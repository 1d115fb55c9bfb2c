package engine

import (
	"sync"

	"github.com/roach88/todoflux/internal/ir"
)

// actionQueue is an unbounded, thread-safe FIFO of actions waiting to be
// dispatched.
//
// Enqueue never blocks, so a producer can never deadlock against a
// listener that is itself producing actions. The signal channel lets the
// Run loop wait on the queue and the context at the same time.
type actionQueue struct {
	mu      sync.Mutex
	actions []ir.Action
	closed  bool
	signal  chan struct{} // buffered, size 1; closed by Close
}

func newActionQueue() *actionQueue {
	return &actionQueue{
		actions: make([]ir.Action, 0, 16),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue appends a. Returns false if the queue is closed.
func (q *actionQueue) Enqueue(a ir.Action) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.actions = append(q.actions, a)

	// Non-blocking: the buffer of 1 coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes and returns the front action without blocking.
func (q *actionQueue) TryDequeue() (ir.Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.actions) == 0 {
		return ir.Action{}, false
	}

	a := q.actions[0]
	q.actions[0] = ir.Action{} // release the text for GC
	if len(q.actions) == 1 {
		q.actions = q.actions[:0]
	} else {
		q.actions = q.actions[1:]
	}
	return a, true
}

// Wait returns a channel that fires when actions may be available or the
// queue has been closed.
func (q *actionQueue) Wait() <-chan struct{} {
	return q.signal
}

// Drained reports whether the queue is closed and empty.
func (q *actionQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.actions) == 0
}

// Len returns the number of queued actions.
func (q *actionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

// Close stops further Enqueues and wakes the waiter. Idempotent.
func (q *actionQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
