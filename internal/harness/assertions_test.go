package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todoflux/internal/ir"
	"github.com/roach88/todoflux/internal/journal"
)

func dispatched(seq int64, typ, text string) TraceEvent {
	return TraceEvent{Type: EventDispatch, Seq: seq, ActionType: typ, Text: text}
}

func changed(seq int64, count int) TraceEvent {
	return TraceEvent{Type: EventChange, Seq: seq, ItemCount: count}
}

func sampleResult() *Result {
	result := NewResult()
	result.Trace = []TraceEvent{
		dispatched(1, "ADD_ITEM", "a"),
		changed(2, 1),
		dispatched(3, "REMOVE_ITEM", "a"),
		dispatched(4, "ADD_ITEM", "b"),
		changed(5, 2),
		{Type: EventRejected, Seq: 6, ActionType: "ADD_ITEM", Text: "c", ErrorCode: "REENTRANT_DISPATCH"},
	}
	result.Items = []string{"a", "b"}
	result.Rendered = "1. a\n2. b\n"
	return result
}

func TestEvaluate_Passing(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
	}{
		{"items", Assertion{Type: AssertItems, Items: []string{"a", "b"}}},
		{"change_count", Assertion{Type: AssertChangeCount, Count: 2}},
		{"rejected_count", Assertion{Type: AssertRejectedCount, Count: 1}},
		{"trace_count", Assertion{Type: AssertTraceCount, ActionType: "ADD_ITEM", Count: 2}},
		{"trace_count_zero", Assertion{Type: AssertTraceCount, ActionType: "CLEAR", Count: 0}},
		{"trace_order", Assertion{Type: AssertTraceOrder, Texts: []string{"a", "b"}}},
		{"trace_order_any_action_type", Assertion{Type: AssertTraceOrder, Texts: []string{"a", "a", "b"}}},
		{"rendered", Assertion{Type: AssertRendered, Output: text("1. a\n2. b\n")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, evaluate(sampleResult(), tt.assertion, nil))
		})
	}
}

func TestEvaluate_Failing(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantType  string
		wantMsg   string
	}{
		{"items_wrong_order", Assertion{Type: AssertItems, Items: []string{"b", "a"}}, AssertItems, `["a" "b"]`},
		{"change_count", Assertion{Type: AssertChangeCount, Count: 3}, AssertChangeCount, "2 change events"},
		{"rejected_count", Assertion{Type: AssertRejectedCount, Count: 0}, AssertRejectedCount, "1 rejected events"},
		{"trace_count", Assertion{Type: AssertTraceCount, ActionType: "REMOVE_ITEM", Count: 2}, AssertTraceCount, "1 dispatches"},
		{"trace_order", Assertion{Type: AssertTraceOrder, Texts: []string{"b", "a"}}, AssertTraceOrder, `missing "a" after position 1`},
		{"trace_order_rejected_not_dispatched", Assertion{Type: AssertTraceOrder, Texts: []string{"c"}}, AssertTraceOrder, `missing "c"`},
		{"rendered", Assertion{Type: AssertRendered, Output: text("(empty)\n")}, AssertRendered, `"1. a\n2. b\n"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := evaluate(sampleResult(), tt.assertion, nil)
			require.Error(t, err)

			var ae *AssertionError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.wantType, ae.Type)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestEvaluate_ItemsEmpty(t *testing.T) {
	result := NewResult()
	assert.NoError(t, evaluate(result, Assertion{Type: AssertItems}, nil))
	assert.NoError(t, evaluate(result, Assertion{Type: AssertItems, Items: []string{}}, nil))
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	failures := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertItems, Items: []string{"a", "b"}},
		{Type: AssertChangeCount, Count: 2},
	}, nil)
	assert.Empty(t, failures)
}

func TestEvaluateAssertions_SomeFail(t *testing.T) {
	failures := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertItems, Items: []string{"a", "b"}},
		{Type: AssertChangeCount, Count: 5},
		{Type: AssertRejectedCount, Count: 1},
	}, nil)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "assertion 1 (change_count)")
}

func TestEvaluateAssertions_UnknownType(t *testing.T) {
	failures := EvaluateAssertions(sampleResult(), []Assertion{{Type: "final_state"}}, nil)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], `unknown assertion type "final_state"`)
}

func TestAssertionError_ErrorFormat(t *testing.T) {
	err := &AssertionError{
		Type:     AssertChangeCount,
		Expected: "2 change events",
		Actual:   "1 change events",
		Trace: []TraceEvent{
			dispatched(1, "ADD_ITEM", "buy milk"),
			changed(2, 1),
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: change_count")
	assert.Contains(t, msg, "Expected: 2 change events")
	assert.Contains(t, msg, "Actual: 1 change events")
	assert.Contains(t, msg, `[1] dispatch ADD_ITEM "buy milk"`)
	assert.Contains(t, msg, "[2] change items=1")
}

func TestReplayMatches_WithoutJournal(t *testing.T) {
	err := evaluate(sampleResult(), Assertion{Type: AssertReplayMatches}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a journal")
}

func TestReplayMatches_AgainstJournal(t *testing.T) {
	ctx := context.Background()
	j, err := journal.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	for i, a := range []ir.Action{
		{Type: "ADD_ITEM", Text: "a"},
		{Type: "REMOVE_ITEM", Text: "a"},
		{Type: "ADD_ITEM", Text: "b"},
	} {
		rec, err := ir.NewActionRecord(a, int64(i+1))
		require.NoError(t, err)
		require.NoError(t, j.Append(ctx, rec))
	}
	actx := &AssertionContext{Journal: j, Ctx: ctx}

	assert.NoError(t, evaluate(sampleResult(), Assertion{Type: AssertReplayMatches}, actx))

	diverged := sampleResult()
	diverged.Items = []string{"a"}
	err = evaluate(diverged, Assertion{Type: AssertReplayMatches}, actx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rebuilt from journal")
}
