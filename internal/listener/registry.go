// Package listener provides an ordered, per-event registry of change
// listeners.
//
// A Registry is the event capability a store composes instead of
// inheriting from an emitter type. Listeners are identified by the ID
// returned from Add because Go funcs are not comparable.
package listener

import (
	"sync"
)

// ID identifies one listener subscription.
type ID uint64

// Func is invoked when the event it is subscribed to fires.
type Func func()

type entry struct {
	id ID
	fn Func
}

// Registry holds listeners per event name in subscription order.
//
// Thread-safety: all methods are safe for concurrent use. Listeners run
// without the registry lock held, so a listener may add or remove
// listeners (including itself) while the event is firing.
type Registry struct {
	mu     sync.Mutex
	events map[string][]entry
	nextID ID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{events: make(map[string][]entry)}
}

// Add subscribes fn to event and returns its ID.
// Adding the same func twice creates two subscriptions.
func (r *Registry) Add(event string, fn Func) ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.events[event] = append(r.events[event], entry{id: r.nextID, fn: fn})
	return r.nextID
}

// Remove unsubscribes the listener with id from event.
// Returns false if no such subscription exists.
func (r *Registry) Remove(event string, id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.events[event]
	for i, e := range entries {
		if e.id != id {
			continue
		}
		entries = append(entries[:i:i], entries[i+1:]...)
		if len(entries) == 0 {
			delete(r.events, event)
		} else {
			r.events[event] = entries
		}
		return true
	}
	return false
}

// Fire invokes every listener subscribed to event, in subscription order,
// and returns how many ran.
//
// The listener set is captured before the first call: listeners added
// during Fire wait for the next one, listeners removed during Fire are
// still called this time.
func (r *Registry) Fire(event string) int {
	r.mu.Lock()
	snapshot := make([]entry, len(r.events[event]))
	copy(snapshot, r.events[event])
	r.mu.Unlock()

	for _, e := range snapshot {
		e.fn()
	}
	return len(snapshot)
}

// Count returns the number of listeners subscribed to event.
func (r *Registry) Count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events[event])
}
