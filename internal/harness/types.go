package harness

import (
	"github.com/roach88/shadegraph/internal/diagnostic"
	"github.com/roach88/shadegraph/internal/document"
	"github.com/roach88/shadegraph/internal/pipeline"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Errors contains failed assertion messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Status is StatusOK or StatusFailed for the compilation itself,
	// independent of whether the scenario passed.
	Status string `json:"status"`

	WGSL        string                  `json:"wgsl,omitempty"`
	IR          string                  `json:"ir,omitempty"`
	Diagnostics []diagnostic.Diagnostic `json:"diagnostics"`

	// RunID is set when the run was recorded in a store.
	RunID string `json:"run_id,omitempty"`

	Document *document.Document `json:"-"`
	Compile  *pipeline.Result   `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Errors:      []string{},
		Diagnostics: []diagnostic.Diagnostic{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
