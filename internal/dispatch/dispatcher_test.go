package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todoflux/internal/ir"
)

func newTestDispatcher() *Dispatcher {
	return New(WithTokenGenerator(NewSequenceGenerator("")))
}

var addMilk = ir.Action{Type: "ADD_ITEM", Text: "buy milk"}

func TestDispatcher_DeliversInRegistrationOrder(t *testing.T) {
	d := newTestDispatcher()

	var calls []string
	d.Register(func(a ir.Action) { calls = append(calls, "first:"+a.Text) })
	d.Register(func(a ir.Action) { calls = append(calls, "second:"+a.Text) })
	d.Register(func(a ir.Action) { calls = append(calls, "third:"+a.Text) })

	require.NoError(t, d.Dispatch(addMilk))

	assert.Equal(t, []string{"first:buy milk", "second:buy milk", "third:buy milk"}, calls)
}

func TestDispatcher_NoCallbacksIsNoop(t *testing.T) {
	d := newTestDispatcher()

	require.NoError(t, d.Dispatch(addMilk))
	assert.False(t, d.IsDispatching())
	assert.Equal(t, uint64(1), d.Stats().Dispatched)
	assert.Equal(t, uint64(0), d.Stats().Delivered)
}

func TestDispatcher_DuplicateCallbackGetsDistinctTokens(t *testing.T) {
	d := newTestDispatcher()

	count := 0
	cb := func(ir.Action) { count++ }

	t1 := d.Register(cb)
	t2 := d.Register(cb)
	require.NotEqual(t, t1, t2)

	require.NoError(t, d.Dispatch(addMilk))
	assert.Equal(t, 2, count)

	assert.True(t, d.Unregister(t1))
	require.NoError(t, d.Dispatch(addMilk))
	assert.Equal(t, 3, count, "remaining registration still receives actions")
}

func TestDispatcher_UnregisterUnknownToken(t *testing.T) {
	d := newTestDispatcher()
	token := d.Register(func(ir.Action) {})

	assert.False(t, d.Unregister("ID_999"))
	assert.True(t, d.Unregister(token))
	assert.False(t, d.Unregister(token), "second unregister is a no-op")
	assert.Equal(t, 0, d.Len())
}

func TestDispatcher_ReentrantDispatchFails(t *testing.T) {
	d := newTestDispatcher()

	var items []string
	var innerErr error
	d.Register(func(a ir.Action) {
		items = append(items, a.Text)
		if a.Text == "outer" {
			innerErr = d.Dispatch(ir.Action{Type: "ADD_ITEM", Text: "inner"})
		}
	})

	require.NoError(t, d.Dispatch(ir.Action{Type: "ADD_ITEM", Text: "outer"}))

	require.Error(t, innerErr)
	assert.True(t, IsReentrantError(innerErr))
	assert.Contains(t, innerErr.Error(), "REENTRANT_DISPATCH")
	assert.Equal(t, []string{"outer"}, items, "inner dispatch must not reach any callback")
	assert.Equal(t, uint64(1), d.Stats().Rejected)

	// The dispatcher is usable again afterwards.
	require.NoError(t, d.Dispatch(ir.Action{Type: "ADD_ITEM", Text: "after"}))
	assert.Equal(t, []string{"outer", "after"}, items)
}

func TestDispatcher_IsDispatching(t *testing.T) {
	d := newTestDispatcher()

	var during bool
	d.Register(func(ir.Action) { during = d.IsDispatching() })

	assert.False(t, d.IsDispatching())
	require.NoError(t, d.Dispatch(addMilk))
	assert.True(t, during)
	assert.False(t, d.IsDispatching())
}

func TestDispatcher_PanicResetsState(t *testing.T) {
	d := newTestDispatcher()
	token := d.Register(func(ir.Action) { panic("boom") })

	assert.PanicsWithValue(t, "boom", func() {
		_ = d.Dispatch(addMilk)
	})
	assert.False(t, d.IsDispatching())

	// A later dispatch is not mistaken for a re-entrant one.
	d.Unregister(token)
	d.Register(func(ir.Action) {})
	assert.NoError(t, d.Dispatch(addMilk))
}

func TestDispatcher_UnregisterDuringDispatch(t *testing.T) {
	d := newTestDispatcher()

	var calls []string
	var second Token
	d.Register(func(ir.Action) {
		calls = append(calls, "first")
		d.Unregister(second)
	})
	second = d.Register(func(ir.Action) { calls = append(calls, "second") })

	require.NoError(t, d.Dispatch(addMilk))
	assert.Equal(t, []string{"first"}, calls)
}

func TestDispatcher_RegisterDuringDispatch(t *testing.T) {
	d := newTestDispatcher()

	var calls []string
	d.Register(func(ir.Action) {
		calls = append(calls, "first")
		d.Register(func(ir.Action) { calls = append(calls, "late") })
	})

	require.NoError(t, d.Dispatch(addMilk))
	assert.Equal(t, []string{"first"}, calls, "late registration waits for the next dispatch")

	calls = nil
	require.NoError(t, d.Dispatch(addMilk))
	assert.Equal(t, []string{"first", "late"}, calls)
}

func TestDispatcher_ActionIsCopiedPerCallback(t *testing.T) {
	d := newTestDispatcher()

	var seen []string
	d.Register(func(a ir.Action) {
		a.Text = "mutated"
	})
	d.Register(func(a ir.Action) { seen = append(seen, a.Text) })

	require.NoError(t, d.Dispatch(addMilk))
	assert.Equal(t, []string{"buy milk"}, seen)
}

func TestDispatcher_WaitForRunsDependencyFirst(t *testing.T) {
	d := newTestDispatcher()

	var calls []string
	var storeToken Token
	d.Register(func(ir.Action) {
		require.NoError(t, d.WaitFor(storeToken))
		calls = append(calls, "view")
	})
	storeToken = d.Register(func(ir.Action) { calls = append(calls, "store") })

	require.NoError(t, d.Dispatch(addMilk))
	assert.Equal(t, []string{"store", "view"}, calls, "store runs once, before the waiter")
}

func TestDispatcher_WaitForAlreadyHandled(t *testing.T) {
	d := newTestDispatcher()

	count := 0
	first := d.Register(func(ir.Action) { count++ })
	d.Register(func(ir.Action) {
		require.NoError(t, d.WaitFor(first))
	})

	require.NoError(t, d.Dispatch(addMilk))
	assert.Equal(t, 1, count)
}

func TestDispatcher_WaitForErrors(t *testing.T) {
	t.Run("not dispatching", func(t *testing.T) {
		d := newTestDispatcher()
		token := d.Register(func(ir.Action) {})

		err := d.WaitFor(token)
		assert.True(t, IsNotDispatchingError(err))
	})

	t.Run("unknown token", func(t *testing.T) {
		d := newTestDispatcher()
		var err error
		d.Register(func(ir.Action) { err = d.WaitFor("ID_42") })

		require.NoError(t, d.Dispatch(addMilk))
		assert.True(t, IsUnknownTokenError(err))
		assert.Contains(t, err.Error(), "token=ID_42")
	})

	t.Run("circular", func(t *testing.T) {
		d := newTestDispatcher()
		var a, b Token
		var errA, errB error
		a = d.Register(func(ir.Action) { errA = d.WaitFor(b) })
		b = d.Register(func(ir.Action) { errB = d.WaitFor(a) })

		require.NoError(t, d.Dispatch(addMilk))
		assert.NoError(t, errA)
		assert.True(t, IsCircularWaitError(errB))
	})

	t.Run("self", func(t *testing.T) {
		d := newTestDispatcher()
		var self Token
		var err error
		self = d.Register(func(ir.Action) { err = d.WaitFor(self) })

		require.NoError(t, d.Dispatch(addMilk))
		assert.True(t, IsCircularWaitError(err))
	})
}

func TestDispatcher_Stats(t *testing.T) {
	d := newTestDispatcher()
	d.Register(func(ir.Action) {})
	d.Register(func(ir.Action) {})

	require.NoError(t, d.Dispatch(addMilk))
	require.NoError(t, d.Dispatch(addMilk))

	stats := d.Stats()
	assert.Equal(t, uint64(2), stats.Dispatched)
	assert.Equal(t, uint64(4), stats.Delivered)
	assert.Equal(t, uint64(0), stats.Rejected)
	assert.Equal(t, 2, stats.Registered)
}
