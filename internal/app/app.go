// Package app wires one dispatcher, its stores and the action emitter
// into an application context.
//
// There are no package-level singletons: every App owns its own
// dispatcher, so tests and tools can run several side by side.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/todoflux/internal/action"
	"github.com/roach88/todoflux/internal/dispatch"
	"github.com/roach88/todoflux/internal/engine"
	"github.com/roach88/todoflux/internal/journal"
	"github.com/roach88/todoflux/internal/todo"
)

// ErrAlreadyRebuilt is returned by a second call to Rebuild.
var ErrAlreadyRebuilt = errors.New("app: store already rebuilt from journal")

// App is the application context.
//
// Registration order on the dispatcher is fixed: the journal recorder
// (if any) first, then the todo store.
type App struct {
	Dispatcher *dispatch.Dispatcher
	Store      *todo.Store
	Emitter    *action.Emitter

	// Journal and Recorder are nil for an in-memory App.
	Journal  *journal.Journal
	Recorder *journal.Recorder

	logger  *slog.Logger
	rebuilt bool
}

type options struct {
	journalPath string
	tokens      dispatch.TokenGenerator
	logger      *slog.Logger
}

// Option configures an App.
type Option func(*options)

// WithJournal persists every action to the SQLite journal at path.
func WithJournal(path string) Option {
	return func(o *options) {
		o.journalPath = path
	}
}

// WithTokenGenerator sets the dispatcher's token generator.
func WithTokenGenerator(g dispatch.TokenGenerator) Option {
	return func(o *options) {
		o.tokens = g
	}
}

// WithLogger sets the logger shared by every component.
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// New builds an App. With WithJournal, the journal is opened and a
// recorder registered; call Rebuild to load the list.
func New(ctx context.Context, opts ...Option) (*App, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	dopts := []dispatch.Option{dispatch.WithLogger(o.logger)}
	if o.tokens != nil {
		dopts = append(dopts, dispatch.WithTokenGenerator(o.tokens))
	}

	a := &App{
		Dispatcher: dispatch.New(dopts...),
		logger:     o.logger,
	}

	if o.journalPath != "" {
		j, err := journal.Open(o.journalPath)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		last, err := j.LastSeq(ctx)
		if err != nil {
			j.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		o.logger.Debug("journal opened", "path", o.journalPath, "last_seq", last)
		a.Journal = j
		a.Recorder = journal.NewRecorder(a.Dispatcher, j, journal.WithLogger(o.logger))
	}

	a.Store = todo.New(a.Dispatcher, todo.WithLogger(o.logger))
	a.Emitter = action.NewEmitter(a.Dispatcher, action.WithLogger(o.logger))
	return a, nil
}

// Rebuild replays the journal into the store without recording the
// replayed actions again. It returns the number of actions replayed and
// may be called once; an in-memory App replays nothing.
func (a *App) Rebuild(ctx context.Context) (int, error) {
	if a.rebuilt {
		return 0, ErrAlreadyRebuilt
	}
	a.rebuilt = true
	if a.Journal == nil {
		return 0, nil
	}

	unmute := a.Recorder.Mute()
	defer unmute()

	n, err := journal.Replay(ctx, a.Journal, a.Dispatcher)
	if err != nil {
		return n, fmt.Errorf("rebuild: %w", err)
	}
	a.logger.Debug("store rebuilt", "actions", n, "items", a.Store.Len())
	return n, nil
}

// Seed adds items when the list is empty. It returns how many were added.
func (a *App) Seed(items []string) (int, error) {
	if a.Store.Len() > 0 {
		return 0, nil
	}
	for i, text := range items {
		if err := a.Emitter.AddItem(text); err != nil {
			return i, fmt.Errorf("seed: %w", err)
		}
	}
	return len(items), nil
}

// NewEngine returns a dispatch loop feeding this App's dispatcher.
func (a *App) NewEngine(opts ...engine.Option) *engine.Engine {
	opts = append([]engine.Option{engine.WithLogger(a.logger)}, opts...)
	return engine.New(a.Dispatcher, opts...)
}

// Close releases the journal, if any.
func (a *App) Close() error {
	if a.Journal == nil {
		return nil
	}
	return a.Journal.Close()
}
