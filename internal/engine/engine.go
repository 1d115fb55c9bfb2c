package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/todoflux/internal/ir"
)

// tracerName identifies spans produced by the engine.
const tracerName = "github.com/roach88/todoflux/internal/engine"

// Dispatcher is what the engine feeds. Implemented by *dispatch.Dispatcher.
type Dispatcher interface {
	Dispatch(ir.Action) error
}

// Engine is the single-writer dispatch loop.
//
// Thread-safety model:
//   - Enqueue(), Stop(), Stats(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
type Engine struct {
	d      Dispatcher
	queue  *actionQueue
	tracer trace.Tracer
	logger *slog.Logger
	clock  *Clock

	processed atomic.Uint64
	failed    atomic.Uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithTracerProvider sets the provider used for dispatch spans.
// Default: the global provider from otel.GetTracerProvider().
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracer = tp.Tracer(tracerName)
	}
}

// WithClock sets the clock that numbers dispatches. Default: NewClock().
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine that dispatches into d.
func New(d Dispatcher, opts ...Option) *Engine {
	e := &Engine{
		d:      d,
		queue:  newActionQueue(),
		tracer: otel.GetTracerProvider().Tracer(tracerName),
		logger: slog.Default(),
		clock:  NewClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enqueue submits a for dispatch by the Run loop.
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(a ir.Action) bool {
	return e.queue.Enqueue(a)
}

// ErrStopped is returned by Dispatch once the engine has been stopped.
var ErrStopped = errors.New("engine: stopped")

// Dispatch enqueues a and returns without waiting for it to be
// dispatched. With it an Engine satisfies action.Dispatcher, so an
// Emitter can feed the loop from any goroutine.
func (e *Engine) Dispatch(a ir.Action) error {
	if !e.Enqueue(a) {
		return ErrStopped
	}
	return nil
}

// Pending returns the number of actions waiting to be dispatched.
func (e *Engine) Pending() int {
	return e.queue.Len()
}

// Run dispatches queued actions until Stop is called and the queue is
// drained (returns nil) or ctx is cancelled (returns ctx.Err()).
//
// A dispatch error is logged with the action's context and the loop
// continues with the next action.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting")

	for {
		if a, ok := e.queue.TryDequeue(); ok {
			e.process(ctx, a)
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// A closed signal channel fires on every receive, so only
			// return once nothing is left to dispatch.
			if e.queue.Drained() {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Run returns after dispatching what is queued.
func (e *Engine) Stop() {
	e.queue.Close()
}

func (e *Engine) process(ctx context.Context, a ir.Action) {
	seq := e.clock.Next()
	_, span := e.tracer.Start(ctx, "dispatch",
		trace.WithAttributes(
			attribute.Int64("todoflux.dispatch_seq", seq),
			attribute.String("todoflux.action_type", string(a.Type)),
			attribute.Int("todoflux.text_length", len(a.Text)),
		),
	)
	defer span.End()

	if err := e.d.Dispatch(a); err != nil {
		e.failed.Add(1)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Error("dispatch failed",
			"dispatch_seq", seq,
			"action_type", a.Type,
			"error", err,
		)
		return
	}

	e.processed.Add(1)
	e.logger.Debug("action dispatched", "dispatch_seq", seq, "action_type", a.Type)
}

// Stats contains counters for an Engine.
type Stats struct {
	Processed uint64
	Failed    uint64
	Pending   int
}

// Stats returns the engine's counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Processed: e.processed.Load(),
		Failed:    e.failed.Load(),
		Pending:   e.queue.Len(),
	}
}
