// Package testutil holds deterministic helpers shared by tests and the
// scenario harness: a resettable logical clock and a change counter.
package testutil
