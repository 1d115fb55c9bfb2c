package dispatch

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/todoflux/internal/ir"
)

// Callback receives every dispatched action.
type Callback func(ir.Action)

// registration pairs a callback with the token returned by Register.
type registration struct {
	token Token
	cb    Callback
}

// Dispatcher delivers actions to registered callbacks.
//
// Thread-safety model:
//   - Register, Unregister, Len, IsDispatching, Stats: safe from any goroutine
//   - Dispatch: one dispatch at a time; a second concurrent or nested call
//     is rejected rather than queued
//   - WaitFor: only from inside a callback of the active dispatch
//
// INVARIANTS:
//   - regs is in registration order and never reordered
//   - mu is never held while a callback runs
type Dispatcher struct {
	mu     sync.Mutex
	regs   []registration
	tokens TokenGenerator
	logger *slog.Logger

	// Per-dispatch state, guarded by mu.
	dispatching bool
	current     ir.Action
	pending     map[Token]bool
	handled     map[Token]bool

	dispatched atomic.Uint64
	delivered  atomic.Uint64
	rejected   atomic.Uint64
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTokenGenerator sets the registration token generator.
// Default: UUIDv7Generator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(d *Dispatcher) {
		d.tokens = g
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// New creates a Dispatcher with no registered callbacks.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		tokens: UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register adds cb to the end of the delivery order and returns its token.
// Registering the same callback twice yields two independent registrations.
func (d *Dispatcher) Register(cb Callback) Token {
	token := d.tokens.Generate()

	d.mu.Lock()
	d.regs = append(d.regs, registration{token: token, cb: cb})
	count := len(d.regs)
	d.mu.Unlock()

	d.logger.Debug("callback registered", "token", token, "callbacks", count)
	return token
}

// Unregister removes the callback registered under token.
//
// Unknown tokens (never issued, or already unregistered) are a no-op and
// return false. A callback unregistered during a dispatch is not invoked
// for the rest of that dispatch.
func (d *Dispatcher) Unregister(token Token) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, reg := range d.regs {
		if reg.token == token {
			d.regs = append(d.regs[:i:i], d.regs[i+1:]...)
			d.logger.Debug("callback unregistered", "token", token, "callbacks", len(d.regs))
			return true
		}
	}
	return false
}

// Dispatch delivers a to every registered callback, in registration order,
// on the calling goroutine.
//
// Callbacks registered while the dispatch is running are not invoked for
// it. Dispatching with no callbacks is a no-op. If a callback panics the
// dispatcher leaves the dispatching state before the panic propagates.
//
// Returns a REENTRANT_DISPATCH DispatchError, invoking nothing, if another
// dispatch is in progress.
func (d *Dispatcher) Dispatch(a ir.Action) error {
	d.mu.Lock()
	if d.dispatching {
		d.mu.Unlock()
		d.rejected.Add(1)
		d.logger.Warn("dispatch rejected",
			"action_type", a.Type,
			"reason", "already dispatching",
		)
		return newReentrantError(a)
	}
	order := make([]registration, len(d.regs))
	copy(order, d.regs)
	d.dispatching = true
	d.current = a
	d.pending = make(map[Token]bool, len(order))
	d.handled = make(map[Token]bool, len(order))
	d.mu.Unlock()

	defer d.stopDispatching()

	d.dispatched.Add(1)
	d.logger.Debug("dispatching",
		"action_type", a.Type,
		"callbacks", len(order),
	)

	for _, reg := range order {
		d.mu.Lock()
		skip := d.pending[reg.token] || !d.registeredLocked(reg.token)
		d.mu.Unlock()
		if skip {
			continue
		}
		d.invoke(reg)
	}

	return nil
}

// WaitFor invokes the callbacks registered under tokens for the current
// action, unless they have already run. It must be called from inside a
// callback of the active dispatch.
//
// Errors:
//   - NOT_DISPATCHING: no dispatch is active
//   - UNKNOWN_TOKEN: a token is not registered
//   - CIRCULAR_WAIT: a named callback is still running (it is waiting, directly
//     or indirectly, on the caller)
//
// WaitFor stops at the first error.
func (d *Dispatcher) WaitFor(tokens ...Token) error {
	for _, token := range tokens {
		d.mu.Lock()
		if !d.dispatching {
			d.mu.Unlock()
			return newNotDispatchingError()
		}
		if d.pending[token] {
			done := d.handled[token]
			d.mu.Unlock()
			if !done {
				return newCircularWaitError(token)
			}
			continue
		}
		reg, ok := d.lookupLocked(token)
		d.mu.Unlock()
		if !ok {
			return newUnknownTokenError(token)
		}
		d.invoke(reg)
	}
	return nil
}

// IsDispatching reports whether a dispatch is in progress.
func (d *Dispatcher) IsDispatching() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dispatching
}

// Len returns the number of registered callbacks.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.regs)
}

// invoke runs one callback for the current action, bracketing it with the
// pending/handled bookkeeping WaitFor relies on.
func (d *Dispatcher) invoke(reg registration) {
	d.mu.Lock()
	d.pending[reg.token] = true
	a := d.current
	d.mu.Unlock()

	reg.cb(a)
	d.delivered.Add(1)

	d.mu.Lock()
	d.handled[reg.token] = true
	d.mu.Unlock()
}

func (d *Dispatcher) stopDispatching() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dispatching = false
	d.current = ir.Action{}
	d.pending = nil
	d.handled = nil
}

func (d *Dispatcher) registeredLocked(token Token) bool {
	_, ok := d.lookupLocked(token)
	return ok
}

func (d *Dispatcher) lookupLocked(token Token) (registration, bool) {
	for _, reg := range d.regs {
		if reg.token == token {
			return reg, true
		}
	}
	return registration{}, false
}

// Stats returns dispatch counters.
// Counters are read without the mutex, so values may be slightly
// inconsistent while a dispatch is running.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Dispatched: d.dispatched.Load(),
		Delivered:  d.delivered.Load(),
		Rejected:   d.rejected.Load(),
		Registered: d.Len(),
	}
}

// Stats contains counters for a Dispatcher.
type Stats struct {
	// Dispatched is the number of accepted Dispatch calls.
	Dispatched uint64

	// Delivered is the number of completed callback invocations.
	Delivered uint64

	// Rejected is the number of re-entrant Dispatch calls refused.
	Rejected uint64

	// Registered is the current number of callbacks.
	Registered int
}
