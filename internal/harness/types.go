package harness

// Trace event types.
const (
	EventDispatch = "dispatch"
	EventChange   = "change"
	EventRender   = "render"
	EventRejected = "rejected"
)

// TraceEvent is one observation made while a scenario runs.
type TraceEvent struct {
	Type       string `json:"type"`
	Seq        int64  `json:"seq"`
	ActionType string `json:"action_type,omitempty"` // dispatch, rejected
	Text       string `json:"text,omitempty"`        // dispatch, rejected
	ItemCount  int    `json:"item_count,omitempty"`  // change, render
	ErrorCode  string `json:"error_code,omitempty"`  // rejected
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Trace holds every event in the order it happened.
	Trace []TraceEvent `json:"trace"`

	// Errors holds assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Items is the store's final item list.
	Items []string `json:"items"`

	// Rendered is the view's most recent render output.
	Rendered string `json:"rendered,omitempty"`
}

// NewResult creates a passing result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Items:  []string{},
	}
}

// AddError records an assertion failure and marks the result failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) add(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
