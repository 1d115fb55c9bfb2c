package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/todoflux/internal/action"
	"github.com/roach88/todoflux/internal/dispatch"
	"github.com/roach88/todoflux/internal/ir"
	"github.com/roach88/todoflux/internal/journal"
	"github.com/roach88/todoflux/internal/listener"
	"github.com/roach88/todoflux/internal/testutil"
	"github.com/roach88/todoflux/internal/todo"
	"github.com/roach88/todoflux/internal/view"
)

// Harness holds the components of one scenario run.
//
// Registration order on the dispatcher is journal recorder, tracer,
// store, so a dispatch event always precedes the change it causes.
type Harness struct {
	d          *dispatch.Dispatcher
	store      *todo.Store
	emitter    *action.Emitter
	controller *view.Controller
	view       *view.ListView
	clock      *testutil.DeterministicClock
	logger     *slog.Logger

	result   *Result
	rendered bytes.Buffer
}

// Run executes a scenario against fresh components and an in-memory
// journal, then evaluates its assertions.
//
// The returned error reports a harness failure (a step that could not be
// executed); assertion failures are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	j, err := journal.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer j.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := dispatch.New(
		dispatch.WithTokenGenerator(dispatch.NewSequenceGenerator("")),
		dispatch.WithLogger(logger),
	)

	h := &Harness{
		d:      d,
		clock:  testutil.NewDeterministicClock(),
		logger: logger,
		result: NewResult(),
	}

	journal.NewRecorder(d, j, journal.WithLogger(logger))
	d.Register(h.traceDispatch)
	h.store = todo.New(d, todo.WithLogger(logger))
	h.store.AddListener(todo.EventChange, h.traceChange)
	h.emitter = action.NewEmitter(d, action.WithLogger(logger))
	h.controller = view.NewController(h.emitter)
	h.view = view.NewListView(h.store, traceRenderer{h}, &h.rendered, view.WithLogger(logger))

	for i, step := range scenario.Steps {
		if err := h.execute(step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	h.view.Unmount()

	h.result.Items = h.store.GetAll()
	h.result.Rendered = h.rendered.String()

	actx := &AssertionContext{Journal: j, Ctx: context.Background()}
	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions, actx) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

func (h *Harness) execute(step Step) error {
	switch {
	case step.AddItem != nil:
		return h.emitter.AddItem(*step.AddItem)
	case step.NewItem:
		return h.controller.NewItem()
	case step.Dispatch != nil:
		return h.d.Dispatch(step.Dispatch.Action())
	case step.Nested != nil:
		return h.nested(*step.Nested)
	case step.MountView:
		return h.view.Mount()
	case step.UnmountView:
		h.view.Unmount()
		return nil
	}
	return fmt.Errorf("no step kind set")
}

// nested adds n.Outer and, from the first change notification that
// follows, tries to add n.Inner.
func (h *Harness) nested(n NestedStep) error {
	var id listener.ID
	id = h.store.AddListener(todo.EventChange, func() {
		h.store.RemoveListener(todo.EventChange, id)
		inner := ir.Action{Type: action.TypeAddItem, Text: n.Inner}
		if err := h.emitter.AddItem(n.Inner); err != nil {
			h.traceRejected(inner, err)
		}
	})
	return h.emitter.AddItem(n.Outer)
}

func (h *Harness) traceDispatch(a ir.Action) {
	h.result.add(TraceEvent{
		Type:       EventDispatch,
		Seq:        h.clock.Next(),
		ActionType: string(a.Type),
		Text:       a.Text,
	})
	h.logger.Info("dispatch traced", "action_type", a.Type)
}

func (h *Harness) traceChange() {
	h.result.add(TraceEvent{
		Type:      EventChange,
		Seq:       h.clock.Next(),
		ItemCount: h.store.Len(),
	})
}

func (h *Harness) traceRejected(a ir.Action, err error) {
	code := "UNKNOWN"
	var de *dispatch.DispatchError
	if errors.As(err, &de) {
		code = string(de.Code)
	}
	h.result.add(TraceEvent{
		Type:       EventRejected,
		Seq:        h.clock.Next(),
		ActionType: string(a.Type),
		Text:       a.Text,
		ErrorCode:  code,
	})
	h.logger.Info("dispatch rejected", "action_type", a.Type, "error_code", code)
}

// traceRenderer records a render event and keeps only the latest output.
type traceRenderer struct {
	h *Harness
}

func (r traceRenderer) Render(w io.Writer, items []string) error {
	r.h.result.add(TraceEvent{
		Type:      EventRender,
		Seq:       r.h.clock.Next(),
		ItemCount: len(items),
	})
	r.h.rendered.Reset()
	return view.TextRenderer{}.Render(w, items)
}
