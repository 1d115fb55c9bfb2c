package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/todoflux/internal/ir"
)

// Scenario is one scripted run of the todo list.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario shows.
	Description string `yaml:"description"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are evaluated after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is a single scenario step. Exactly one field must be set.
type Step struct {
	// AddItem emits ADD_ITEM with this text through the action emitter.
	AddItem *string `yaml:"add_item,omitempty"`

	// NewItem presses the view's "new item" button.
	NewItem bool `yaml:"new_item,omitempty"`

	// Dispatch sends a raw action straight to the dispatcher.
	Dispatch *ActionStep `yaml:"dispatch,omitempty"`

	// Nested adds Outer and tries to add Inner from the change listener.
	Nested *NestedStep `yaml:"nested,omitempty"`

	// MountView mounts a text list view on the store.
	MountView bool `yaml:"mount_view,omitempty"`

	// UnmountView unmounts it.
	UnmountView bool `yaml:"unmount_view,omitempty"`
}

// ActionStep is a raw action.
type ActionStep struct {
	ActionType string `yaml:"action_type"`
	Text       string `yaml:"text"`
}

// Action converts the step to an ir.Action.
func (a ActionStep) Action() ir.Action {
	return ir.Action{Type: ir.ActionType(a.ActionType), Text: a.Text}
}

// NestedStep describes a dispatch attempted from inside a dispatch.
type NestedStep struct {
	Outer string `yaml:"outer"`
	Inner string `yaml:"inner"`
}

// kinds returns the names of the step kinds that are set.
func (s Step) kinds() []string {
	var kinds []string
	if s.AddItem != nil {
		kinds = append(kinds, "add_item")
	}
	if s.NewItem {
		kinds = append(kinds, "new_item")
	}
	if s.Dispatch != nil {
		kinds = append(kinds, "dispatch")
	}
	if s.Nested != nil {
		kinds = append(kinds, "nested")
	}
	if s.MountView {
		kinds = append(kinds, "mount_view")
	}
	if s.UnmountView {
		kinds = append(kinds, "unmount_view")
	}
	return kinds
}

// Assertion checks the trace or final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Items is the expected final list (items).
	Items []string `yaml:"items,omitempty"`

	// Count is the expected number of occurrences
	// (change_count, rejected_count, trace_count).
	Count int `yaml:"count,omitempty"`

	// ActionType selects dispatch events (trace_count).
	ActionType string `yaml:"action_type,omitempty"`

	// Texts are dispatched texts that must appear in this order (trace_order).
	Texts []string `yaml:"texts,omitempty"`

	// Output is the expected last render (rendered).
	Output *string `yaml:"output,omitempty"`
}

// Assertion type constants.
const (
	AssertItems         = "items"
	AssertChangeCount   = "change_count"
	AssertRejectedCount = "rejected_count"
	AssertTraceCount    = "trace_count"
	AssertTraceOrder    = "trace_order"
	AssertRendered      = "rendered"
	AssertReplayMatches = "replay_matches"
)

// LoadScenario reads and validates a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// ScenarioFiles lists the .yaml and .yml files directly in dir, sorted
// by path. filter is a filepath.Match pattern tested against the file
// name without its extension ("view_*" matches view_lifecycle.yaml);
// empty matches everything.
func ScenarioFiles(dir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("bad filter %q: %w", filter, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if filter != "" {
			if ok, _ := filepath.Match(filter, strings.TrimSuffix(entry.Name(), ext)); !ok {
				continue
			}
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// LoadDir loads every scenario ScenarioFiles lists. The first file that
// fails to load fails the whole call, with its file name in the error.
func LoadDir(dir, filter string) ([]*Scenario, error) {
	paths, err := ScenarioFiles(dir, filter)
	if err != nil {
		return nil, err
	}

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		switch kinds := step.kinds(); len(kinds) {
		case 0:
			return fmt.Errorf("steps[%d]: no step kind set", i)
		case 1:
		default:
			return fmt.Errorf("steps[%d]: exactly one step kind allowed, got %v", i, kinds)
		}
		if step.Dispatch != nil && step.Dispatch.ActionType == "" {
			return fmt.Errorf("steps[%d].dispatch: action_type is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertItems, AssertReplayMatches:
	case AssertChangeCount, AssertRejectedCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertTraceCount:
		if a.ActionType == "" {
			return fmt.Errorf("assertions[%d]: action_type is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertTraceOrder:
		if len(a.Texts) == 0 {
			return fmt.Errorf("assertions[%d]: texts list is required for trace_order", index)
		}
	case AssertRendered:
		if a.Output == nil {
			return fmt.Errorf("assertions[%d]: output is required for rendered", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
