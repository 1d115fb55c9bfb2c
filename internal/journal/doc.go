// Package journal provides a SQLite-backed, append-only log of every
// dispatched action.
//
// The journal is what lets a todo list outlive the process: a Recorder
// appends each action as it is dispatched, and Replay feeds the log back
// through a fresh dispatcher to rebuild the stores.
//
// # Ordering
//
//   - seq is assigned by the journal (AppendNext), never from wall time,
//     and is unique even when several processes share the file
//   - Reads are ordered by seq ASC, id ASC COLLATE BINARY
//   - Replaying the same journal always produces the same store state
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - _txlock=immediate: Transactions take the write lock when they begin
//
// Record IDs are computed by ir.ActionID, so appending the same record
// twice is a no-op.
package journal
