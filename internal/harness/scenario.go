package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/pyro-notes/pyro/internal/docstore"
	"github.com/pyro-notes/pyro/internal/storage"
)

// Scenario defines a store scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Backends lists the stores to run against. If empty, the scenario runs
	// against every storage kind and the in-memory store.
	Backends []string `yaml:"backends,omitempty"`

	// Flow contains the commands to run, in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the trace and the final store.
	Assertions []Assertion `yaml:"assertions"`
}

// FlowStep runs one command.
type FlowStep struct {
	// Invoke is a command wire name (e.g. "saveDocument") or StepReopen.
	Invoke string `yaml:"invoke"`

	// Args are the wire fields of the command.
	Args map[string]any `yaml:"args,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, the step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Error is the expected error code. Empty means success.
	Error string `yaml:"error,omitempty"`

	// Names is the expected listDocumentNames result, if set.
	Names []string `yaml:"names,omitempty"`

	// Text is the expected findDocument text, if set.
	Text *string `yaml:"text,omitempty"`
}

// Assertion validates the trace or the final store.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// State is the expected lock state (final_state).
	State string `yaml:"state,omitempty"`

	// Names is the expected name set (names).
	Names []string `yaml:"names,omitempty"`

	// Name is the document to look up (document, absent).
	Name string `yaml:"name,omitempty"`

	// Text is the expected document text (document).
	Text *string `yaml:"text,omitempty"`

	// Command and Outcome select trace steps (trace_count). An empty Outcome
	// matches every outcome.
	Command string `yaml:"command,omitempty"`
	Outcome string `yaml:"outcome,omitempty"`

	// Count is the expected number of matching steps (trace_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState = "final_state"
	AssertNames      = "names"
	AssertDocument   = "document"
	AssertAbsent     = "absent"
	AssertTraceCount = "trace_count"
)

// StepReopen closes the store and opens it again from disk.
const StepReopen = "reopen"

// BackendMemory selects the in-memory store.
const BackendMemory = "memory"

// OutcomeOK is the trace outcome of a successful step.
const OutcomeOK = "ok"

// commands are the wire names a flow step may invoke.
var commands = []string{"saveDocument", "crypt", "listDocumentNames", "findDocument", "deleteDocument", StepReopen}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
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

// TargetBackends returns the backends the scenario runs against.
func (s *Scenario) TargetBackends() []string {
	if len(s.Backends) > 0 {
		return s.Backends
	}
	backends := make([]string, 0, len(storage.Kinds)+1)
	for _, k := range storage.Kinds {
		backends = append(backends, string(k))
	}
	return append(backends, BackendMemory)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, b := range s.Backends {
		if b == BackendMemory {
			continue
		}
		if _, err := storage.ParseKind(b); err != nil {
			return fmt.Errorf("backends[%d]: %w", i, err)
		}
	}

	for i, step := range s.Flow {
		if step.Invoke == "" {
			return fmt.Errorf("flow[%d]: invoke is required", i)
		}
		if !slices.Contains(commands, step.Invoke) {
			return fmt.Errorf("flow[%d]: unknown command %q", i, step.Invoke)
		}
		if step.Invoke == StepReopen && step.Expect != nil {
			return fmt.Errorf("flow[%d]: reopen takes no expect clause", i)
		}
		if step.Expect != nil && step.Expect.Error != "" && !isCode(step.Expect.Error) {
			return fmt.Errorf("flow[%d].expect: unknown error code %q", i, step.Expect.Error)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalState:
		if a.State != docstore.Locked.String() && a.State != docstore.Unlocked.String() {
			return fmt.Errorf("assertions[%d]: state must be %q or %q for final_state", index, docstore.Locked, docstore.Unlocked)
		}
	case AssertNames:
		// An empty list asserts an empty store.
	case AssertDocument:
		if a.Name == "" || a.Text == nil {
			return fmt.Errorf("assertions[%d]: name and text are required for document", index)
		}
	case AssertAbsent:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for absent", index)
		}
	case AssertTraceCount:
		if a.Command == "" {
			return fmt.Errorf("assertions[%d]: command is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
		if a.Outcome != "" && a.Outcome != OutcomeOK && !isCode(a.Outcome) {
			return fmt.Errorf("assertions[%d]: unknown outcome %q for trace_count", index, a.Outcome)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func isCode(s string) bool {
	return slices.Contains(docstore.Codes, docstore.ErrorCode(s))
}
