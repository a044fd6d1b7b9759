package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/tpgm/internal/codec"
	"github.com/roach88/tpgm/internal/querysql"
	"github.com/roach88/tpgm/internal/rewrite"
	"github.com/roach88/tpgm/internal/store"
)

// errNoVariables is reported when a scenario has nothing to bind.
var errNoVariables = errors.New("no pattern variables")

// Harness is the scenario execution engine.
type Harness struct {
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger passed to the rewriter.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// New creates a Harness. Without WithLogger, logs are discarded.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return New().Run(ctx, scenario)
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the document and rewrite its predicates
// 2. Compile the rewritten predicate to SQL
// 3. Store the document's elements and match the pattern
// 4. Compare the outcome with the scenario's expectations
//
// Failures of the document itself (decoding, rewriting, matching) are part
// of the result; the returned error is reserved for the database.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	result := NewResult()
	failure := h.execute(ctx, st, scenario, result)
	if failure != nil {
		result.Failure = failure.Error()
	}

	h.check(scenario.Expect, failure, result)
	return result, nil
}

func (h *Harness) execute(ctx context.Context, st *store.Store, s *Scenario, result *Result) error {
	doc, err := codec.Load(s.Document)
	if err != nil {
		return err
	}

	variables := s.Variables
	if len(variables) == 0 {
		variables = doc.PatternVariables()
	}

	where := doc.Predicate()
	if where != nil {
		where, err = rewrite.New(rewrite.WithLogger(h.logger)).Globals(where, variables)
		if err != nil {
			return err
		}
		result.Unfolded = where.String()

		sql, params, err := querysql.NewSQLCompiler().Compile(where)
		if err != nil {
			return err
		}
		result.SQL = sql
		result.Params = params
	}

	bindings := scenarioBindings(s, doc, variables)
	if len(bindings) == 0 {
		return errNoVariables
	}

	if err := st.PutElements(ctx, doc.Elements); err != nil {
		return err
	}
	matches, err := st.Match(ctx, bindings, where)
	if err != nil {
		return err
	}
	result.Matches = matches

	h.logger.Debug("scenario executed",
		"scenario", s.Name,
		"elements", len(doc.Elements),
		"matches", len(matches),
	)
	return nil
}

// scenarioBindings keeps the document's labeled bindings unless the
// scenario overrides the variables.
func scenarioBindings(s *Scenario, doc *codec.Document, variables []string) []store.Binding {
	if len(s.Variables) == 0 && len(doc.Bindings) > 0 {
		return doc.Bindings
	}
	bindings := make([]store.Binding, len(variables))
	for i, v := range variables {
		bindings[i] = store.Binding{Variable: v}
	}
	return bindings
}

func (h *Harness) check(e Expect, failure error, result *Result) {
	if e.Error != "" {
		switch {
		case failure == nil:
			result.AddError(fmt.Sprintf("expected error containing %q, run succeeded", e.Error))
		case !strings.Contains(failure.Error(), e.Error):
			result.AddError(fmt.Sprintf("expected error containing %q, got %q", e.Error, failure.Error()))
		}
		return
	}
	if failure != nil {
		result.AddError(fmt.Sprintf("unexpected error: %v", failure))
		return
	}

	if e.Unfolded != "" && e.Unfolded != result.Unfolded {
		result.AddError(fmt.Sprintf("unfolded: expected %q, got %q", e.Unfolded, result.Unfolded))
	}
	if e.SQL != "" && e.SQL != result.SQL {
		result.AddError(fmt.Sprintf("sql: expected %q, got %q", e.SQL, result.SQL))
	}
	if e.Matches != nil {
		if !slices.EqualFunc(e.Matches, result.Matches, func(a, b store.Embedding) bool { return maps.Equal(a, b) }) {
			result.AddError(fmt.Sprintf("matches: expected %v, got %v", e.Matches, result.Matches))
		}
	}
}
