package harness

// TraceEvent records one flow step and its outcome.
type TraceEvent struct {
	Seq     int            `json:"seq"`
	Command string         `json:"command"`
	Args    map[string]any `json:"args,omitempty"`

	// Outcome is OutcomeOK or the error code the step failed with.
	Outcome string `json:"outcome"`

	// Names and Text hold the listDocumentNames and findDocument results.
	Names []string `json:"names,omitempty"`
	Text  *string  `json:"text,omitempty"`

	// State is the lock state after the step.
	State string `json:"state"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step and assertion matched.
	Pass bool `json:"pass"`

	// Trace contains every flow step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
