package testutil

import (
	"sync/atomic"

	"github.com/roach88/todoflux/internal/listener"
)

// Subscriber is anything that accepts change listeners, such as todo.Store.
type Subscriber interface {
	AddListener(event string, fn listener.Func) listener.ID
	RemoveListener(event string, id listener.ID) bool
}

// ChangeCounter counts "change" notifications from a Subscriber.
type ChangeCounter struct {
	src   Subscriber
	id    listener.ID
	count atomic.Int64
}

// NewChangeCounter subscribes a counter to src's change event.
func NewChangeCounter(src Subscriber) *ChangeCounter {
	c := &ChangeCounter{src: src}
	c.id = src.AddListener("change", func() { c.count.Add(1) })
	return c
}

// Count returns the number of notifications seen so far.
func (c *ChangeCounter) Count() int {
	return int(c.count.Load())
}

// Stop unsubscribes the counter. Later notifications are not counted.
func (c *ChangeCounter) Stop() {
	c.src.RemoveListener("change", c.id)
}
