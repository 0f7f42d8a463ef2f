package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/pyro-notes/pyro/internal/docstore"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %v -> %s (%s)\n", event.Seq, event.Command, event.Args, event.Outcome, event.State)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure messages.
func EvaluateAssertions(ctx context.Context, result *Result, assertions []Assertion, st *docstore.Store) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(ctx, result.Trace, a, st); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(ctx context.Context, trace []TraceEvent, a Assertion, st *docstore.Store) error {
	switch a.Type {
	case AssertFinalState:
		return assertFinalState(trace, a, st)
	case AssertNames:
		return assertNames(ctx, trace, a, st)
	case AssertDocument:
		return assertDocument(ctx, trace, a, st)
	case AssertAbsent:
		return assertAbsent(ctx, trace, a, st)
	case AssertTraceCount:
		return assertTraceCount(trace, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertFinalState(trace []TraceEvent, a Assertion, st *docstore.Store) error {
	if got := st.State().String(); got != a.State {
		return &AssertionError{Type: a.Type, Expected: a.State, Actual: got, Trace: trace}
	}
	return nil
}

func assertNames(ctx context.Context, trace []TraceEvent, a Assertion, st *docstore.Store) error {
	names, err := st.ListDocumentNames(ctx)
	if err != nil {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("names %v", a.Names), Actual: err.Error(), Trace: trace}
	}
	if !sameNames(a.Names, names) {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("names %v", a.Names), Actual: fmt.Sprintf("names %v", names), Trace: trace}
	}
	return nil
}

func assertDocument(ctx context.Context, trace []TraceEvent, a Assertion, st *docstore.Store) error {
	expected := fmt.Sprintf("document %q with text %q", a.Name, *a.Text)
	doc, err := st.FindDocument(ctx, a.Name)
	if err != nil {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: err.Error(), Trace: trace}
	}
	if doc.Text != *a.Text {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: fmt.Sprintf("text %q", doc.Text), Trace: trace}
	}
	return nil
}

func assertAbsent(ctx context.Context, trace []TraceEvent, a Assertion, st *docstore.Store) error {
	_, err := st.FindDocument(ctx, a.Name)
	if docstore.IsCode(err, docstore.CodeDocumentNotFound) {
		return nil
	}
	actual := "document found"
	if err != nil {
		actual = err.Error()
	}
	return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("no document %q", a.Name), Actual: actual, Trace: trace}
}

// assertTraceCount checks how many steps ran the command, optionally with
// the given outcome.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Command == a.Command && (a.Outcome == "" || event.Outcome == a.Outcome) {
			count++
		}
	}
	if count != a.Count {
		what := a.Command
		if a.Outcome != "" {
			what += " with outcome " + a.Outcome
		}
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s %d times", what, a.Count),
			Actual:   fmt.Sprintf("%d times", count),
			Trace:    trace,
		}
	}
	return nil
}
