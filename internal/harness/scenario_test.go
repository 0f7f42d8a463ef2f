package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes content to a scenario file in a temp dir.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
backends: [json]
flow:
  - invoke: saveDocument
    args: { docName: todo, text: buy milk }
  - invoke: findDocument
    args: { docName: todo }
    expect:
      text: buy milk
assertions:
  - type: names
    names: [todo]
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, []string{"json"}, scenario.TargetBackends())
	require.Len(t, scenario.Flow, 2)
	assert.Equal(t, "saveDocument", scenario.Flow[0].Invoke)
	assert.Equal(t, "buy milk", scenario.Flow[0].Args["text"])
	require.NotNil(t, scenario.Flow[1].Expect)
	require.NotNil(t, scenario.Flow[1].Expect.Text)
	assert.Equal(t, "buy milk", *scenario.Flow[1].Expect.Text)
	assert.Len(t, scenario.Assertions, 1)
}

func TestScenario_DefaultBackends(t *testing.T) {
	s := &Scenario{}
	assert.Equal(t, []string{"sqlite", "json", "archive", BackendMemory}, s.TargetBackends())
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "assertion instead of assertions"
flow:
  - invoke: listDocumentNames
assertion:
  - type: names
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	const flow = `
flow:
  - invoke: listDocumentNames
`
	const assertions = `
assertions:
  - type: final_state
    state: unlocked
`
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"missing name", `description: "d"` + flow + assertions, "name is required"},
		{"missing description", `name: n` + flow + assertions, "description is required"},
		{"missing flow", "name: n\ndescription: d\n" + assertions, "flow list is required"},
		{"missing assertions", "name: n\ndescription: d\n" + flow, "assertions list is required"},
		{"unknown backend", "name: n\ndescription: d\nbackends: [mysql]\n" + flow + assertions, "backends[0]"},
		{"unknown command", "name: n\ndescription: d\nflow:\n  - invoke: format\n" + assertions, `unknown command "format"`},
		{"empty invoke", "name: n\ndescription: d\nflow:\n  - args: {}\n" + assertions, "invoke is required"},
		{"unknown error code", "name: n\ndescription: d\nflow:\n  - invoke: listDocumentNames\n    expect: {error: OOPS}\n" + assertions, `unknown error code "OOPS"`},
		{"reopen with expect", "name: n\ndescription: d\nflow:\n  - invoke: reopen\n    expect: {error: LOCKED}\n" + assertions, "reopen takes no expect"},
		{"bad state", "name: n\ndescription: d" + flow + "assertions:\n  - type: final_state\n    state: open\n", "state must be"},
		{"document without text", "name: n\ndescription: d" + flow + "assertions:\n  - type: document\n    name: todo\n", "name and text are required"},
		{"absent without name", "name: n\ndescription: d" + flow + "assertions:\n  - type: absent\n", "name is required for absent"},
		{"trace_count without command", "name: n\ndescription: d" + flow + "assertions:\n  - type: trace_count\n    count: 1\n", "command is required"},
		{"trace_count negative", "name: n\ndescription: d" + flow + "assertions:\n  - type: trace_count\n    command: crypt\n    count: -1\n", "count must be non-negative"},
		{"trace_count bad outcome", "name: n\ndescription: d" + flow + "assertions:\n  - type: trace_count\n    command: crypt\n    outcome: nope\n", "unknown outcome"},
		{"unknown assertion", "name: n\ndescription: d" + flow + "assertions:\n  - type: vibes\n", "unknown assertion type"},
		{"missing assertion type", "name: n\ndescription: d" + flow + "assertions:\n  - name: x\n", "type is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
