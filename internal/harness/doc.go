// Package harness runs todo list scenarios and checks their traces.
//
// A scenario drives a fresh dispatcher, store, emitter and journal
// through a list of steps, records everything that happens as a trace,
// and evaluates assertions against the trace and the final items.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: buy_milk
//	description: "Adding one item notifies listeners once"
//	steps:
//	  - add_item: "buy milk"
//	  - dispatch: { action_type: REMOVE_ITEM, text: "buy milk" }
//	  - nested: { outer: "a", inner: "b" }
//	  - mount_view: true
//	  - new_item: true
//	  - unmount_view: true
//	assertions:
//	  - type: items
//	    items: ["buy milk", "a", "new item"]
//	  - type: change_count
//	    count: 3
//	  - type: rejected_count
//	    count: 1
//	  - type: replay_matches
//
// Exactly one step kind must be set per step. A nested step adds outer
// and then, from inside the resulting change notification, tries to add
// inner; the dispatcher rejects it and the trace records a rejected
// event.
//
// # Trace
//
// Trace events are stamped with seq from a DeterministicClock and are
// one of: dispatch, change, render, rejected. Golden files hold the
// trace as RFC 8785 canonical JSON, so a run is byte-for-byte
// reproducible.
package harness
