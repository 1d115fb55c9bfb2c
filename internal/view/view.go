// Package view binds a rendered todo list to the store.
//
// A ListView reads the items when it is mounted, re-reads and re-renders
// on every change notification, and stops listening when it is
// unmounted. It never mutates the store; user intents go through a
// Controller, which emits actions.
package view

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/todoflux/internal/listener"
)

// EventChange is the store event a ListView subscribes to.
const EventChange = "change"

// Source is the read side of the store.
type Source interface {
	GetAll() []string
	AddListener(event string, fn listener.Func) listener.ID
	RemoveListener(event string, id listener.ID) bool
}

// ListView renders a Source's items to w.
//
// Thread-safety: Mount and Unmount may be called from any goroutine.
// Renders happen on the goroutine that emits the change.
type ListView struct {
	src      Source
	renderer Renderer
	w        io.Writer
	logger   *slog.Logger

	mu      sync.Mutex
	mounted bool
	id      listener.ID
	items   []string
	renders int
}

// Option configures a ListView.
type Option func(*ListView)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(v *ListView) {
		v.logger = l
	}
}

// NewListView creates an unmounted view of src.
func NewListView(src Source, r Renderer, w io.Writer, opts ...Option) *ListView {
	v := &ListView{
		src:      src,
		renderer: r,
		w:        w,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Mount renders the current items and subscribes to changes.
// Mounting a mounted view is a no-op.
func (v *ListView) Mount() error {
	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return nil
	}
	v.mounted = true
	v.mu.Unlock()

	if err := v.refresh(); err != nil {
		v.mu.Lock()
		v.mounted = false
		v.mu.Unlock()
		return fmt.Errorf("mount: %w", err)
	}

	id := v.src.AddListener(EventChange, v.onChange)
	v.mu.Lock()
	v.id = id
	v.mu.Unlock()
	return nil
}

// Unmount stops listening for changes. Unmounting an unmounted view is a
// no-op.
func (v *ListView) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.mounted {
		return
	}
	v.src.RemoveListener(EventChange, v.id)
	v.mounted = false
	v.id = 0
}

// Mounted reports whether the view is listening for changes.
func (v *ListView) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}

// Items returns the items as of the last render.
func (v *ListView) Items() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.items))
	copy(out, v.items)
	return out
}

// Renders returns how many times the view has rendered.
func (v *ListView) Renders() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.renders
}

func (v *ListView) onChange() {
	if err := v.refresh(); err != nil {
		v.logger.Error("render failed", "error", err)
	}
}

func (v *ListView) refresh() error {
	items := v.src.GetAll()

	v.mu.Lock()
	v.items = items
	v.renders++
	v.mu.Unlock()

	return v.renderer.Render(v.w, items)
}
