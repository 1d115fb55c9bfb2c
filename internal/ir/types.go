package ir

import "fmt"

// ActionType names a kind of action. The closed set of kinds a store
// understands is declared by the package that owns those stores; an
// ActionType outside that set is legal and simply ignored by them.
type ActionType string

// Action is an immutable description of an intended state change.
//
// Actions are passed by value so a callback can never change what the
// next callback in the same dispatch observes.
type Action struct {
	Type ActionType `json:"action_type"`
	Text string     `json:"text"`
}

// String returns a short human-readable form used in logs and traces.
func (a Action) String() string {
	return fmt.Sprintf("%s(%q)", a.Type, a.Text)
}

// ActionRecord is an action as persisted in the journal.
type ActionRecord struct {
	ID            string `json:"id"`  // Content-addressed hash
	Seq           int64  `json:"seq"` // Logical clock
	Action        Action `json:"action"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// NewActionRecord stamps an action with seq and its content-addressed ID.
func NewActionRecord(a Action, seq int64) (ActionRecord, error) {
	id, err := ActionID(a, seq)
	if err != nil {
		return ActionRecord{}, err
	}
	return ActionRecord{
		ID:            id,
		Seq:           seq,
		Action:        a,
		EngineVersion: EngineVersion,
		IRVersion:     IRVersion,
	}, nil
}
