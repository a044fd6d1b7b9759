package harness

import "github.com/roach88/tpgm/internal/store"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expectation held.
	Pass bool `json:"pass"`

	// Unfolded renders the rewritten predicate. Empty when the document
	// has no predicates or the rewrite failed.
	Unfolded string `json:"unfolded,omitempty"`

	// SQL and Params are the compiled WHERE fragment.
	SQL    string `json:"sql,omitempty"`
	Params []any  `json:"params,omitempty"`

	// Matches are the embeddings found in the store.
	Matches []store.Embedding `json:"matches"`

	// Failure is the error that stopped the run, if any.
	Failure string `json:"failure,omitempty"`

	// Errors contains expectation mismatches.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Matches: []store.Embedding{},
		Errors:  []string{},
	}
}

// AddError adds a mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
