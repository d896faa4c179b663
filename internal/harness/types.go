package harness

// TraceEvent is one flow step as the ledger saw it. Addresses that the
// scenario named are rendered as "$name" so traces stay readable and stable.
type TraceEvent struct {
	Seq         int64          `json:"seq"`
	Signer      string         `json:"signer"`
	Instruction string         `json:"instruction"`
	Args        map[string]any `json:"args,omitempty"`
	Outcome     string         `json:"outcome,omitempty"`
	ErrorCode   int            `json:"error_code,omitempty"`
	Rejected    string         `json:"rejected,omitempty"`
	Result      map[string]any `json:"result,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per flow step, in order.
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

// AddTrace appends a flow step event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
