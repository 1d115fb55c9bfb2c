// Package engine runs dispatches on a single goroutine.
//
// The dispatcher itself is synchronous and refuses a dispatch while
// another is running. Producers that live on other goroutines (a stdin
// reader, a signal handler, a timer) cannot call it directly without
// racing each other, so they Enqueue actions instead and one Run loop
// dispatches them in FIFO order.
//
// SINGLE-WRITER LOOP:
//  1. Producers call Enqueue from any goroutine
//  2. Run dequeues one action at a time
//  3. Each action is dispatched to completion inside a tracing span
//  4. A failed dispatch is logged and the loop moves on
//
// Stop closes the queue; Run dispatches whatever is still queued and then
// returns nil. Cancelling the context returns immediately with ctx.Err().
//
// Clock numbers the dispatches of an engine (the todoflux.dispatch_seq
// span attribute). Journal seq values are assigned by the journal itself.
package engine
