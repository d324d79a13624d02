package harness

import "github.com/roach88/nestedjson/internal/diff"

// Step outcomes recorded in the trace.
const (
	OutcomeOK = "ok"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int    `json:"seq"`
	Step    string `json:"step"` // "add", "reset" or "save"
	Path    string `json:"path,omitempty"`
	Value   string `json:"value,omitempty"`
	Outcome string `json:"outcome"` // OutcomeOK or an error code
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step met its expectation and every assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Text is the current document serialized after the last step.
	Text string `json:"text"`

	// Stats compares the final current snapshot with the final baseline.
	Stats diff.Stats `json:"stats"`

	// Leaves lists the canonical path of every final leaf.
	Leaves []string `json:"leaves"`

	// Pending lists canonical paths edited since the last save.
	Pending []string `json:"pending"`

	// Writes counts successful saves.
	Writes int `json:"writes"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
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
