package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGoldenScenarios runs every scenario in testdata/scenarios and
// compares its trace with testdata/golden/{name}.golden.
func TestGoldenScenarios(t *testing.T) {
	scenarios, err := LoadDir(filepath.Join("testdata", "scenarios"), "")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestAssertGolden_FromResult(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "buy_milk.yaml"))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NoError(t, AssertGolden(t, "buy_milk", result))
}

func TestMarshalTrace_Canonical(t *testing.T) {
	result := NewResult()
	result.add(TraceEvent{Type: EventDispatch, Seq: 1, ActionType: "ADD_ITEM", Text: ""})
	result.add(TraceEvent{Type: EventRender, Seq: 2, ItemCount: 0})
	result.add(TraceEvent{Type: EventRejected, Seq: 3, ActionType: "ADD_ITEM", Text: "x", ErrorCode: "REENTRANT_DISPATCH"})

	got, err := MarshalTrace("canonical", result)
	require.NoError(t, err)

	want := `{"scenario_name":"canonical","trace":[` +
		`{"action_type":"ADD_ITEM","seq":1,"text":"","type":"dispatch"},` +
		`{"item_count":0,"seq":2,"type":"render"},` +
		`{"action_type":"ADD_ITEM","error_code":"REENTRANT_DISPATCH","seq":3,"text":"x","type":"rejected"}]}`
	assert.Equal(t, want, string(got))
}

func TestMarshalTrace_Deterministic(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "view_lifecycle.yaml"))
	require.NoError(t, err)

	var outputs []string
	for i := 0; i < 5; i++ {
		result, err := Run(scenario)
		require.NoError(t, err)
		out, err := MarshalTrace(scenario.Name, result)
		require.NoError(t, err)
		outputs = append(outputs, string(out))
	}
	for i := 1; i < len(outputs); i++ {
		assert.Equal(t, outputs[0], outputs[i], "run %d differs", i)
	}
}
