package temporal

import (
	"fmt"

	"github.com/roach88/tpgm/internal/predicate"
)

// quantifier ranges over the pattern variables.
type quantifier int

const (
	exists quantifier = iota // left-deep OR of local comparisons
	forAll                   // left-deep AND of local comparisons
)

// unfoldRules maps a comparator to the quantifier that expresses
// "global.field op rhs" for start fields (global = MAX) and end fields
// (global = MIN). EQ is handled separately.
var unfoldRules = map[predicate.Comparator]struct{ start, end quantifier }{
	predicate.NEQ: {start: forAll, end: forAll},
	predicate.LT:  {start: forAll, end: exists},
	predicate.LTE: {start: forAll, end: exists},
	predicate.GT:  {start: exists, end: forAll},
	predicate.GTE: {start: exists, end: forAll},
}

// UnfoldGlobal rewrites "global.field op rhs" into an equivalent predicate
// over the local selectors of variables.
func UnfoldGlobal(field TimeField, op predicate.Comparator, rhs predicate.Comparable, variables []string) (predicate.Predicate, error) {
	return GlobalSelector(field).Unfold(op, rhs, variables)
}

// Unfold rewrites the comparison "s op rhs" so that it uses local selectors
// only. A local selector yields the plain comparison.
//
// For a global selector, with v ranging over variables:
//
//	op   start field (MAX)              end field (MIN)
//	=    ∃v v=rhs ∧ ∀v v<=rhs           ∃v v=rhs ∧ ∀v v>=rhs
//	!=   ∀v v!=rhs                      ∀v v!=rhs
//	<    ∀v v<rhs                       ∃v v<rhs
//	<=   ∀v v<=rhs                      ∃v v<=rhs
//	>    ∃v v>rhs                       ∀v v>rhs
//	>=   ∃v v>=rhs                      ∀v v>=rhs
//
// The EQ case holds because the maximum (minimum) equals rhs iff some
// element attains rhs and no element lies above (below) it. NEQ requires
// every element to differ from rhs, which is stricter than the aggregate.
func (s Selector) Unfold(op predicate.Comparator, rhs predicate.Comparable, variables []string) (predicate.Predicate, error) {
	if s.Scope != Global {
		return predicate.NewComparison(s, op, rhs), nil
	}
	if len(variables) == 0 {
		return nil, fmt.Errorf("unfold %s %s %s: %w", s, op, rhs, ErrNoVariables)
	}

	if op == predicate.EQ {
		bound := predicate.GTE
		if s.Field.IsStart() {
			bound = predicate.LTE
		}
		witness, err := s.quantify(exists, predicate.EQ, rhs, variables)
		if err != nil {
			return nil, err
		}
		limit, err := s.quantify(forAll, bound, rhs, variables)
		if err != nil {
			return nil, err
		}
		return predicate.NewAnd(witness, limit), nil
	}

	rule, ok := unfoldRules[op]
	if !ok {
		return nil, fmt.Errorf("unfold %s: %w: %s", s, ErrUnsupportedComparator, op)
	}
	q := rule.end
	if s.Field.IsStart() {
		q = rule.start
	}
	return s.quantify(q, op, rhs, variables)
}

// quantify builds the chain of "v.field op rhs" over variables, joined by
// OR (exists) or AND (forAll). One variable yields the bare comparison.
func (s Selector) quantify(q quantifier, op predicate.Comparator, rhs predicate.Comparable, variables []string) (predicate.Predicate, error) {
	leaves := make([]predicate.Predicate, len(variables))
	for i, v := range variables {
		leaves[i] = predicate.NewComparison(NewSelector(v, s.Field), op, rhs)
	}
	if q == exists {
		return predicate.AnyOf(leaves...)
	}
	return predicate.AllOf(leaves...)
}
