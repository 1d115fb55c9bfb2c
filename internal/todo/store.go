// Package todo implements the todo list store.
//
// The Store owns the ordered item list. It changes only in response to
// actions delivered by the dispatcher it registered with, and announces
// every change to its listeners.
package todo

import (
	"log/slog"
	"sync"

	"github.com/roach88/todoflux/internal/action"
	"github.com/roach88/todoflux/internal/dispatch"
	"github.com/roach88/todoflux/internal/ir"
	"github.com/roach88/todoflux/internal/listener"
)

// EventChange is the event emitted after every mutation.
const EventChange = "change"

// State describes whether the store is notifying listeners.
type State int

const (
	// StateIdle means no change notification is running.
	StateIdle State = iota

	// StateNotifying means change listeners are being invoked.
	StateNotifying
)

// String returns "idle" or "notifying".
func (s State) String() string {
	if s == StateNotifying {
		return "notifying"
	}
	return "idle"
}

// Registrar is the subset of the dispatcher the Store registers with.
type Registrar interface {
	Register(dispatch.Callback) dispatch.Token
}

// Store holds the todo items.
//
// INVARIANTS:
//   - items only grows, and only in dispatch order
//   - every mutation is followed by exactly one change notification
type Store struct {
	mu    sync.RWMutex
	items []string
	// notifying counts Change calls in progress. A listener that adds an
	// item starts a nested Change inside the outer one.
	notifying int

	listeners *listener.Registry
	token     dispatch.Token
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates an empty Store and registers its callback with r.
func New(r Registrar, opts ...Option) *Store {
	s := &Store{
		listeners: listener.NewRegistry(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.token = r.Register(s.handle)
	return s
}

// DispatchToken returns the token of the Store's dispatcher registration,
// for use with Dispatcher.WaitFor.
func (s *Store) DispatchToken() dispatch.Token {
	return s.token
}

func (s *Store) handle(a ir.Action) {
	switch a.Type {
	case action.TypeAddItem:
		s.AddItem(a.Text)
	default:
		s.logger.Debug("ignoring action", "action_type", a.Type)
	}
}

// AddItem appends text and emits a change.
//
// Application code goes through the action emitter; this entry point
// exists so tests can seed a store without a dispatch.
func (s *Store) AddItem(text string) {
	s.mu.Lock()
	s.items = append(s.items, text)
	n := len(s.items)
	s.mu.Unlock()

	s.logger.Debug("item added", "items", n)
	s.Change()
}

// GetAll returns a copy of the items in insertion order.
func (s *Store) GetAll() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Change notifies every change listener, in subscription order, and
// returns how many were called.
func (s *Store) Change() int {
	s.mu.Lock()
	s.notifying++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.notifying--
		s.mu.Unlock()
	}()

	return s.listeners.Fire(EventChange)
}

// State reports whether a change notification is running. It stays
// StateNotifying until the outermost Change returns.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.notifying > 0 {
		return StateNotifying
	}
	return StateIdle
}

// AddListener subscribes fn to event. Keep the returned ID to remove it.
func (s *Store) AddListener(event string, fn listener.Func) listener.ID {
	return s.listeners.Add(event, fn)
}

// RemoveListener unsubscribes the listener with id from event.
// Removing an unknown listener is a no-op and returns false.
func (s *Store) RemoveListener(event string, id listener.ID) bool {
	return s.listeners.Remove(event, id)
}
