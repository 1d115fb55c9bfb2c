// Package action declares the closed set of action types the todo store
// understands and the emitter that turns UI intents into dispatched
// actions.
package action

import (
	"fmt"
	"log/slog"

	"github.com/roach88/todoflux/internal/ir"
)

// TypeAddItem appends the action's text to the item list.
const TypeAddItem ir.ActionType = "ADD_ITEM"

var known = []ir.ActionType{TypeAddItem}

// Known reports whether t is one of the recognized action types.
func Known(t ir.ActionType) bool {
	for _, k := range known {
		if k == t {
			return true
		}
	}
	return false
}

// Types returns the recognized action types in declaration order.
func Types() []ir.ActionType {
	out := make([]ir.ActionType, len(known))
	copy(out, known)
	return out
}

// Dispatcher is the subset of the dispatcher an Emitter needs.
type Dispatcher interface {
	Dispatch(ir.Action) error
}

// Emitter builds actions and hands them to the dispatcher.
// It holds no state of its own.
type Emitter struct {
	d      Dispatcher
	logger *slog.Logger
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EmitterOption {
	return func(e *Emitter) {
		e.logger = l
	}
}

// NewEmitter creates an Emitter that dispatches through d.
func NewEmitter(d Dispatcher, opts ...EmitterOption) *Emitter {
	e := &Emitter{d: d, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddItem dispatches an ADD_ITEM action carrying text.
//
// The text is not validated; an empty string is dispatched as-is. The
// only error is a dispatch rejected because another one is in progress.
func (e *Emitter) AddItem(text string) error {
	return e.emit(ir.Action{Type: TypeAddItem, Text: text})
}

func (e *Emitter) emit(a ir.Action) error {
	e.logger.Debug("emitting action", "action_type", a.Type)
	if err := e.d.Dispatch(a); err != nil {
		return fmt.Errorf("emit %s: %w", a.Type, err)
	}
	return nil
}
