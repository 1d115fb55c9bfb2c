package journal

import (
	"context"
	"fmt"

	"github.com/roach88/todoflux/internal/ir"
)

// Dispatcher is what Replay feeds records into.
type Dispatcher interface {
	Dispatch(ir.Action) error
}

// Replay dispatches every journal record into d, in journal order, and
// returns how many were dispatched.
//
// Replay stops at the first dispatch error or when ctx is cancelled.
// Callers that also record into j must mute the Recorder first.
func Replay(ctx context.Context, j *Journal, d Dispatcher) (int, error) {
	records, err := j.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("replay: %w", err)
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return i, fmt.Errorf("replay: %w", err)
		}
		if err := d.Dispatch(rec.Action); err != nil {
			return i, fmt.Errorf("replay seq %d: %w", rec.Seq, err)
		}
	}
	return len(records), nil
}
