package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"

	"github.com/pyro-notes/pyro/internal/docstore"
	"github.com/pyro-notes/pyro/internal/storage"
	"github.com/pyro-notes/pyro/internal/testutil"
)

// Harness runs one scenario against one store.
type Harness struct {
	store  *docstore.Store
	opts   docstore.Options
	logger *slog.Logger
}

// Run executes scenario against backend and returns the result.
//
// File backends keep their artifacts under dir, which should be empty.
// Execution flow:
// 1. Open the store
// 2. Execute flow steps, checking each expect clause
// 3. Evaluate assertions against the trace and the final store
func Run(ctx context.Context, scenario *Scenario, backend, dir string) (*Result, error) {
	opts := docstore.Options{
		Engine: testutil.FastEngine(),
		Logger: testutil.DiscardLogger(),
		OpIDs:  testutil.NewFixedOpIDGenerator(scenario.Name),
	}
	if backend == BackendMemory {
		opts.Backend = storage.NewMemory()
	} else {
		kind, err := storage.ParseKind(backend)
		if err != nil {
			return nil, err
		}
		opts.Kind = kind
		opts.Path = filepath.Join(dir, "documents")
	}

	st, err := docstore.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	h := &Harness{store: st, opts: opts, logger: opts.Logger}
	defer func() { h.store.Close() }()

	result := NewResult()
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	for _, errMsg := range EvaluateAssertions(ctx, result, scenario.Assertions, h.store) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeFlow runs all flow steps and validates expect clauses.
// A step that fails unexpectedly is recorded, not fatal: later steps still
// run so the trace shows the whole scenario.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		event := TraceEvent{Seq: i + 1, Command: step.Invoke, Args: step.Args, Outcome: OutcomeOK}

		if step.Invoke == StepReopen {
			if err := h.reopen(ctx); err != nil {
				return fmt.Errorf("flow step %d: %w", i, err)
			}
		} else {
			cmd, err := decodeStep(step)
			if err == nil {
				var res docstore.Result
				res, err = h.store.Execute(ctx, cmd)
				if err == nil {
					event.Names = res.Names
					if res.Document != nil {
						event.Text = &res.Document.Text
					}
				}
			}
			if err != nil {
				event.Outcome = outcomeOf(err)
			}
		}
		event.State = h.store.State().String()

		for _, msg := range checkExpect(step, event) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Invoke, msg))
		}
		result.Trace = append(result.Trace, event)

		h.logger.Info("flow step completed",
			"step", i,
			"command", step.Invoke,
			"outcome", event.Outcome,
			"state", event.State,
		)
	}
	return nil
}

// reopen closes the store and opens a new one over the same artifacts.
func (h *Harness) reopen(ctx context.Context) error {
	if h.opts.Backend != nil {
		return fmt.Errorf("reopen: the in-memory store does not survive a restart")
	}
	if err := h.store.Close(); err != nil {
		return fmt.Errorf("reopen: %w", err)
	}
	st, err := docstore.Open(ctx, h.opts)
	if err != nil {
		return fmt.Errorf("reopen: %w", err)
	}
	h.store = st
	return nil
}

// decodeStep builds the wire form of step and decodes it, so scenarios go
// through the same decoder as the CLI.
func decodeStep(step FlowStep) (docstore.Command, error) {
	wire := make(map[string]any, len(step.Args)+1)
	maps.Copy(wire, step.Args)
	wire["cmd"] = step.Invoke

	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encode step: %w", err)
	}
	return docstore.DecodeCommand(data)
}

// outcomeOf returns the trace outcome for a failed step.
func outcomeOf(err error) string {
	if code, ok := docstore.CodeOf(err); ok {
		return string(code)
	}
	return "UNEXPECTED: " + err.Error()
}

func checkExpect(step FlowStep, event TraceEvent) []string {
	want := OutcomeOK
	if step.Expect != nil && step.Expect.Error != "" {
		want = step.Expect.Error
	}

	var errs []string
	if event.Outcome != want {
		errs = append(errs, fmt.Sprintf("expected outcome %s, got %s", want, event.Outcome))
	}
	if step.Expect == nil {
		return errs
	}
	if step.Expect.Names != nil && !sameNames(step.Expect.Names, event.Names) {
		errs = append(errs, fmt.Sprintf("expected names %v, got %v", step.Expect.Names, event.Names))
	}
	if step.Expect.Text != nil {
		switch {
		case event.Text == nil:
			errs = append(errs, fmt.Sprintf("expected text %q, got no document", *step.Expect.Text))
		case *event.Text != *step.Expect.Text:
			errs = append(errs, fmt.Sprintf("expected text %q, got %q", *step.Expect.Text, *event.Text))
		}
	}
	return errs
}

// sameNames compares name sets, treating nil and empty alike.
func sameNames(want, got []string) bool {
	w := slices.Sorted(slices.Values(want))
	g := slices.Sorted(slices.Values(got))
	return slices.Equal(w, g)
}
