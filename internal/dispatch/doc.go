// Package dispatch implements the todoflux dispatcher: the single point
// through which every action reaches the stores.
//
// # Delivery
//
// Dispatch delivers an action synchronously, on the caller's goroutine, to
// every registered callback in registration order. It returns only after
// the last callback (and every change notification those callbacks emit)
// has returned. There is no queue: ordering across goroutines is the job
// of internal/engine.
//
// # Re-entrancy
//
// A callback must not dispatch. A Dispatch attempted while another is in
// progress fails with a REENTRANT_DISPATCH DispatchError and invokes
// nothing, which guards against notification loops.
//
// # Ordering between stores
//
// WaitFor lets a callback require that other callbacks have already seen
// the current action:
//
//	todoToken := d.Register(todoStore.handle)
//	d.Register(func(a ir.Action) {
//	    if err := d.WaitFor(todoToken); err != nil {
//	        return
//	    }
//	    // todoStore has applied a
//	})
//
// # Tokens
//
// Register returns an opaque Token. UUIDv7Generator is the default;
// SequenceGenerator produces ID_1, ID_2, ... for deterministic tests.
package dispatch
