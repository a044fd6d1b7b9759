// Package rewrite removes global time selectors from whole predicate trees.
//
// It is the compiler step between building a query predicate and handing it
// to a backend: every comparison that mentions the pattern-wide scope is
// replaced by an equivalent formula over the pattern's variables.
package rewrite

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/tpgm/internal/predicate"
	"github.com/roach88/tpgm/internal/temporal"
)

// DefaultMaxComparisons bounds the number of comparisons in a rewritten tree.
// Each unfolded comparison grows linearly with the variable count.
const DefaultMaxComparisons = 10000

// Rewriter rewrites predicate trees. A Rewriter holds no per-call state and
// may be reused.
type Rewriter struct {
	logger         *slog.Logger
	maxComparisons int
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Rewriter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaxComparisons sets the comparison quota for a rewritten tree.
// Values below 1 disable the quota.
func WithMaxComparisons(n int) Option {
	return func(r *Rewriter) {
		r.maxComparisons = n
	}
}

// New creates a Rewriter. Without WithLogger, logs are discarded.
func New(opts ...Option) *Rewriter {
	r := &Rewriter{
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxComparisons: DefaultMaxComparisons,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ComparisonsExceededError is returned when a rewritten tree holds more
// comparisons than the configured quota.
type ComparisonsExceededError struct {
	Comparisons int
	Limit       int
}

func (e *ComparisonsExceededError) Error() string {
	return fmt.Sprintf("rewritten predicate has %d comparisons, limit is %d", e.Comparisons, e.Limit)
}

// Globals returns p with every global selector eliminated, given the
// ordered variables of the enclosing pattern. The input is not modified;
// subtrees without global selectors are shared with the result.
func (r *Rewriter) Globals(p predicate.Predicate, variables []string) (predicate.Predicate, error) {
	if p == nil {
		return nil, fmt.Errorf("cannot rewrite nil predicate")
	}
	if len(variables) == 0 && p.IsGlobal() {
		return nil, fmt.Errorf("rewrite %s: %w", p, temporal.ErrNoVariables)
	}
	out, err := r.rewrite(p, variables)
	if err != nil {
		return nil, err
	}
	if r.maxComparisons > 0 {
		if n := CountComparisons(out); n > r.maxComparisons {
			return nil, &ComparisonsExceededError{Comparisons: n, Limit: r.maxComparisons}
		}
	}
	return out, nil
}

func (r *Rewriter) rewrite(p predicate.Predicate, variables []string) (predicate.Predicate, error) {
	if !p.IsGlobal() {
		return p, nil
	}

	switch pred := p.(type) {
	case predicate.And:
		left, right, err := r.rewritePair(pred.Left, pred.Right, variables)
		if err != nil {
			return nil, err
		}
		return predicate.NewAnd(left, right), nil
	case predicate.Or:
		left, right, err := r.rewritePair(pred.Left, pred.Right, variables)
		if err != nil {
			return nil, err
		}
		return predicate.NewOr(left, right), nil
	case predicate.Not:
		inner, err := r.rewrite(pred.Operand, variables)
		if err != nil {
			return nil, err
		}
		return predicate.NewNot(inner), nil
	case predicate.Comparison:
		return r.comparison(pred, variables)
	default:
		return nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (r *Rewriter) rewritePair(left, right predicate.Predicate, variables []string) (predicate.Predicate, predicate.Predicate, error) {
	l, err := r.rewrite(left, variables)
	if err != nil {
		return nil, nil, err
	}
	rr, err := r.rewrite(right, variables)
	if err != nil {
		return nil, nil, err
	}
	return l, rr, nil
}

// comparison rewrites a single comparison:
//   - global selector on the left: unfold against the localized right side
//   - global selector on the right only: switch sides, then unfold
//   - globals nested in terms: structural replacement on both sides
func (r *Rewriter) comparison(c predicate.Comparison, variables []string) (predicate.Predicate, error) {
	if sel, ok := globalSelector(c.Lhs); ok {
		return r.unfold(sel, c.Op, localize(c.Rhs, variables), variables)
	}
	if sel, ok := globalSelector(c.Rhs); ok {
		switched := c.SwitchSides()
		r.logger.Debug("switching sides of comparison", "comparison", c.String())
		return r.unfold(sel, switched.Op, localize(switched.Rhs, variables), variables)
	}

	out := predicate.NewComparison(localize(c.Lhs, variables), c.Op, localize(c.Rhs, variables))
	r.logger.Debug("replaced nested global selectors",
		"comparison", c.String(),
		"result", out.String(),
	)
	return out, nil
}

func (r *Rewriter) unfold(sel temporal.Selector, op predicate.Comparator, rhs predicate.Comparable, variables []string) (predicate.Predicate, error) {
	out, err := sel.Unfold(op, rhs, variables)
	if err != nil {
		return nil, fmt.Errorf("rewrite %s %s %s: %w", sel, op, rhs, err)
	}
	r.logger.Debug("unfolded global comparison",
		"selector", sel.String(),
		"comparator", op.String(),
		"variables", len(variables),
		"comparisons", CountComparisons(out),
	)
	return out, nil
}

// globalSelector reports whether c is itself a global selector.
func globalSelector(c predicate.Comparable) (temporal.Selector, bool) {
	sel, ok := c.(temporal.Selector)
	return sel, ok && sel.IsGlobal()
}

// localize replaces global selectors nested in a time operand.
// Other operands are returned unchanged.
func localize(c predicate.Comparable, variables []string) predicate.Comparable {
	tp, ok := c.(temporal.TimePoint)
	if !ok || !tp.IsGlobal() {
		return c
	}
	return tp.ReplaceGlobalByLocal(variables)
}

// CountComparisons returns the number of Comparison leaves in p.
func CountComparisons(p predicate.Predicate) int {
	switch pred := p.(type) {
	case predicate.And:
		return CountComparisons(pred.Left) + CountComparisons(pred.Right)
	case predicate.Or:
		return CountComparisons(pred.Left) + CountComparisons(pred.Right)
	case predicate.Not:
		return CountComparisons(pred.Operand)
	case predicate.Comparison:
		return 1
	default:
		return 0
	}
}
