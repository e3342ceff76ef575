package harness

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq         int            `json:"seq"`
	Op          string         `json:"op"`
	Target      string         `json:"target,omitempty"`
	Kind        string         `json:"kind,omitempty"`
	Description string         `json:"description,omitempty"`
	Result      map[string]any `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
	Undo        int            `json:"undo"`
	Redo        int            `json:"redo"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions hold.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Refs maps scenario names to the ids they were bound to.
	Refs map[string]string `json:"refs,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Refs:   make(map[string]string),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Ops returns the op of every trace event in order.
func (r *Result) Ops() []string {
	ops := make([]string, len(r.Trace))
	for i, e := range r.Trace {
		ops[i] = e.Op
	}
	return ops
}
