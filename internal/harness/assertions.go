package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/todoflux/internal/dispatch"
	"github.com/roach88/todoflux/internal/journal"
	"github.com/roach88/todoflux/internal/todo"
)

// AssertionContext provides what state assertions need beyond the trace.
type AssertionContext struct {
	Journal *journal.Journal
	Ctx     context.Context
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			switch ev.Type {
			case EventDispatch, EventRejected:
				fmt.Fprintf(&buf, "  [%d] %s %s %q\n", ev.Seq, ev.Type, ev.ActionType, ev.Text)
			default:
				fmt.Fprintf(&buf, "  [%d] %s items=%d\n", ev.Seq, ev.Type, ev.ItemCount)
			}
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages. An empty slice means all passed.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a, actx); err != nil {
			failures = append(failures, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertItems:
		return assertItems(result, a)
	case AssertChangeCount:
		return assertEventCount(result.Trace, AssertChangeCount, EventChange, a.Count)
	case AssertRejectedCount:
		return assertEventCount(result.Trace, AssertRejectedCount, EventRejected, a.Count)
	case AssertTraceCount:
		return assertTraceCount(result.Trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(result.Trace, a)
	case AssertRendered:
		return assertRendered(result, a)
	case AssertReplayMatches:
		return assertReplayMatches(result, actx)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertItems(result *Result, a Assertion) error {
	want := a.Items
	if want == nil {
		want = []string{}
	}
	if slices.Equal(want, result.Items) {
		return nil
	}
	return &AssertionError{
		Type:     AssertItems,
		Expected: fmt.Sprintf("%q", want),
		Actual:   fmt.Sprintf("%q", result.Items),
		Trace:    result.Trace,
	}
}

func assertEventCount(trace []TraceEvent, assertType, eventType string, want int) error {
	count := 0
	for _, ev := range trace {
		if ev.Type == eventType {
			count++
		}
	}
	if count == want {
		return nil
	}
	return &AssertionError{
		Type:     assertType,
		Expected: fmt.Sprintf("%d %s events", want, eventType),
		Actual:   fmt.Sprintf("%d %s events", count, eventType),
		Trace:    trace,
	}
}

// assertTraceCount counts dispatch events of one action type.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Type == EventDispatch && ev.ActionType == a.ActionType {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d dispatches of %s", a.Count, a.ActionType),
		Actual:   fmt.Sprintf("%d dispatches", count),
		Trace:    trace,
	}
}

// assertTraceOrder checks that the texts were dispatched in the given
// order. Other dispatches may come in between.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, ev := range trace {
		if next == len(a.Texts) {
			break
		}
		if ev.Type == EventDispatch && ev.Text == a.Texts[next] {
			next++
		}
	}
	if next == len(a.Texts) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("dispatches in order: %q", a.Texts),
		Actual:   fmt.Sprintf("missing %q after position %d", a.Texts[next], next),
		Trace:    trace,
	}
}

func assertRendered(result *Result, a Assertion) error {
	if result.Rendered == *a.Output {
		return nil
	}
	return &AssertionError{
		Type:     AssertRendered,
		Expected: fmt.Sprintf("%q", *a.Output),
		Actual:   fmt.Sprintf("%q", result.Rendered),
	}
}

// assertReplayMatches rebuilds a fresh store from the journal and
// compares it with the live one.
func assertReplayMatches(result *Result, actx *AssertionContext) error {
	if actx == nil || actx.Journal == nil {
		return fmt.Errorf("replay_matches requires a journal")
	}

	d := dispatch.New(dispatch.WithTokenGenerator(dispatch.NewSequenceGenerator("replay-")))
	rebuilt := todo.New(d)
	if _, err := journal.Replay(actx.Ctx, actx.Journal, d); err != nil {
		return fmt.Errorf("rebuild from journal: %w", err)
	}

	got := rebuilt.GetAll()
	if slices.Equal(got, result.Items) {
		return nil
	}
	return &AssertionError{
		Type:     AssertReplayMatches,
		Expected: fmt.Sprintf("%q", result.Items),
		Actual:   fmt.Sprintf("%q (rebuilt from journal)", got),
	}
}
