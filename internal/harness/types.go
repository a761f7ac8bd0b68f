package harness

// Outcome is what building and rendering one case produced.
type Outcome struct {
	Name string `json:"name"`

	// ID is the content id; empty when the case failed.
	ID    string `json:"id,omitempty"`
	Kind  string `json:"kind,omitempty"`
	Root  string `json:"root,omitempty"`
	Depth int    `json:"depth"`
	Text  string `json:"text,omitempty"`
	LaTeX string `json:"latex,omitempty"`

	// Error is the error kind when the case failed to build or render.
	Error string `json:"error,omitempty"`
	// Message is the error text.
	Message string `json:"message,omitempty"`
	// LaTeXError is the kind of a LaTeX-only rendering failure.
	LaTeXError string `json:"latex_error,omitempty"`
}

// Failed reports whether the case did not produce an expression.
func (o Outcome) Failed() bool { return o.Error != "" }

// Result is the outcome of a suite execution.
type Result struct {
	// Pass indicates overall suite success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Outcomes holds one entry per case, in suite order.
	Outcomes []Outcome `json:"outcomes"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// BatchID is the batch the successful cases were stored under.
	BatchID string `json:"batch_id,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for suite execution.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []Outcome{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Outcome returns the outcome of the named case.
func (r *Result) Outcome(name string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Name == name {
			return o, true
		}
	}
	return Outcome{}, false
}
