package journal

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/todoflux/internal/dispatch"
	"github.com/roach88/todoflux/internal/ir"
)

// Registrar is the subset of the dispatcher a Recorder registers with.
type Registrar interface {
	Register(dispatch.Callback) dispatch.Token
}

// Recorder is a dispatcher callback that appends every dispatched action
// to a journal, recognized or not.
//
// Seq values come from the journal itself (see AppendNext), so several
// processes may record into one file. A failed append is logged and
// counted; it never interrupts the dispatch that triggered it.
type Recorder struct {
	j      *Journal
	logger *slog.Logger
	token  dispatch.Token

	muted    atomic.Bool
	recorded atomic.Uint64
	failed   atomic.Uint64
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = l
	}
}

// NewRecorder registers a Recorder with reg. Register it before any
// store so the journal sees each action before the stores react to it.
func NewRecorder(reg Registrar, j *Journal, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		j:      j,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.token = reg.Register(r.record)
	return r
}

// Token returns the Recorder's dispatcher registration token.
func (r *Recorder) Token() dispatch.Token {
	return r.token
}

// Mute stops recording until the returned func is called.
// Replay uses it so rebuilt actions are not appended a second time.
func (r *Recorder) Mute() (unmute func()) {
	r.muted.Store(true)
	return func() { r.muted.Store(false) }
}

// Recorded returns the number of actions appended.
func (r *Recorder) Recorded() uint64 {
	return r.recorded.Load()
}

// Failed returns the number of actions that could not be appended.
func (r *Recorder) Failed() uint64 {
	return r.failed.Load()
}

func (r *Recorder) record(a ir.Action) {
	if r.muted.Load() {
		return
	}

	rec, err := r.j.AppendNext(context.Background(), a)
	if err != nil {
		r.failed.Add(1)
		r.logger.Error("failed to record action",
			"action_type", a.Type,
			"error", err,
		)
		return
	}

	r.recorded.Add(1)
	r.logger.Debug("action recorded", "action_type", a.Type, "seq", rec.Seq, "id", rec.ID)
}
