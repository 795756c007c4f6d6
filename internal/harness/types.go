package harness

import "github.com/roach88/srcid/internal/ir"

// TraceEvent records one announcement the session accepted.
type TraceEvent struct {
	Seq      int64   `json:"seq"`
	SourceID string  `json:"source_id"`
	Kind     ir.Kind `json:"kind"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Trace lists accepted announcements in acceptance order.
	Trace []TraceEvent `json:"trace"`

	// Resolved holds the final resolution in batch order.
	// Empty when resolution failed.
	Resolved []ir.ResolvedSource `json:"resolved"`

	// ErrorCode is the resolution error code, empty on success.
	ErrorCode string `json:"error_code,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Trace:    []TraceEvent{},
		Resolved: []ir.ResolvedSource{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace records an accepted announcement.
func (r *Result) AddTrace(seq int64, src ir.Source) {
	r.Trace = append(r.Trace, TraceEvent{Seq: seq, SourceID: src.ID, Kind: src.Kind})
}
