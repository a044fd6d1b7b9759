package predicate

import (
	"errors"
	"fmt"
	"slices"
)

// ErrEmptyChain is returned by AllOf and AnyOf for an empty predicate list.
var ErrEmptyChain = errors.New("predicate chain requires at least one predicate")

// Comparable is an operand of a Comparison.
//
// The temporal package implements it for time points; PropertySelector and
// Literal implement it for plain property comparisons.
type Comparable interface {
	// Variables returns the distinct query variables the operand references,
	// sorted.
	Variables() []string

	// IsGlobal reports whether the operand references the pattern-wide scope.
	IsGlobal() bool

	// Equal reports structural equality with another operand.
	Equal(other Comparable) bool

	String() string
}

// Temporal is a Comparable denoting a point in time or a duration.
type Temporal interface {
	Comparable
	Temporal() // Marker method - time-valued operands only
}

// Predicate is a node of the boolean predicate tree.
//
// This is a sealed interface - only And, Or, Not and Comparison implement it.
type Predicate interface {
	// Variables returns the distinct query variables referenced anywhere in
	// the tree, sorted.
	Variables() []string

	// IsGlobal reports whether any comparison in the tree references the
	// pattern-wide scope.
	IsGlobal() bool

	String() string

	predicateNode() // Marker method - seals interface to this package
}

// And is the conjunction of two predicates.
type And struct {
	Left  Predicate
	Right Predicate
}

func (And) predicateNode() {}

// NewAnd creates the conjunction of left and right.
func NewAnd(left, right Predicate) And {
	return And{Left: left, Right: right}
}

func (a And) Variables() []string {
	return UnionVariables(a.Left.Variables(), a.Right.Variables())
}

func (a And) IsGlobal() bool {
	return a.Left.IsGlobal() || a.Right.IsGlobal()
}

func (a And) String() string {
	return fmt.Sprintf("(%s AND %s)", a.Left, a.Right)
}

// Or is the disjunction of two predicates.
type Or struct {
	Left  Predicate
	Right Predicate
}

func (Or) predicateNode() {}

// NewOr creates the disjunction of left and right.
func NewOr(left, right Predicate) Or {
	return Or{Left: left, Right: right}
}

func (o Or) Variables() []string {
	return UnionVariables(o.Left.Variables(), o.Right.Variables())
}

func (o Or) IsGlobal() bool {
	return o.Left.IsGlobal() || o.Right.IsGlobal()
}

func (o Or) String() string {
	return fmt.Sprintf("(%s OR %s)", o.Left, o.Right)
}

// Not is the negation of a predicate.
type Not struct {
	Operand Predicate
}

func (Not) predicateNode() {}

// NewNot creates the negation of p.
func NewNot(p Predicate) Not {
	return Not{Operand: p}
}

func (n Not) Variables() []string {
	return n.Operand.Variables()
}

func (n Not) IsGlobal() bool {
	return n.Operand.IsGlobal()
}

func (n Not) String() string {
	return fmt.Sprintf("NOT %s", n.Operand)
}

// Comparison relates two operands with a Comparator.
type Comparison struct {
	Lhs Comparable
	Op  Comparator
	Rhs Comparable
}

func (Comparison) predicateNode() {}

// NewComparison creates the comparison lhs op rhs.
func NewComparison(lhs Comparable, op Comparator, rhs Comparable) Comparison {
	return Comparison{Lhs: lhs, Op: op, Rhs: rhs}
}

func (c Comparison) Variables() []string {
	return UnionVariables(c.Lhs.Variables(), c.Rhs.Variables())
}

func (c Comparison) IsGlobal() bool {
	return c.Lhs.IsGlobal() || c.Rhs.IsGlobal()
}

// IsTemporal reports whether either operand is time-valued.
func (c Comparison) IsTemporal() bool {
	_, l := c.Lhs.(Temporal)
	_, r := c.Rhs.(Temporal)
	return l || r
}

// SwitchSides returns the equivalent comparison with swapped operands.
func (c Comparison) SwitchSides() Comparison {
	return Comparison{Lhs: c.Rhs, Op: c.Op.SwitchSides(), Rhs: c.Lhs}
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.Lhs, c.Op, c.Rhs)
}

// AllOf chains predicates into a left-deep conjunction.
// A single predicate is returned as-is.
func AllOf(ps ...Predicate) (Predicate, error) {
	return chain(ps, func(l, r Predicate) Predicate { return And{Left: l, Right: r} })
}

// AnyOf chains predicates into a left-deep disjunction.
// A single predicate is returned as-is.
func AnyOf(ps ...Predicate) (Predicate, error) {
	return chain(ps, func(l, r Predicate) Predicate { return Or{Left: l, Right: r} })
}

func chain(ps []Predicate, join func(l, r Predicate) Predicate) (Predicate, error) {
	if len(ps) == 0 {
		return nil, ErrEmptyChain
	}
	acc := ps[0]
	for _, p := range ps[1:] {
		acc = join(acc, p)
	}
	return acc, nil
}

// Equal reports structural equality of two predicate trees.
// Operands are compared with Comparable.Equal.
func Equal(p, q Predicate) bool {
	switch a := p.(type) {
	case And:
		b, ok := q.(And)
		return ok && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case Or:
		b, ok := q.(Or)
		return ok && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case Not:
		b, ok := q.(Not)
		return ok && Equal(a.Operand, b.Operand)
	case Comparison:
		b, ok := q.(Comparison)
		return ok && a.Op == b.Op && a.Lhs.Equal(b.Lhs) && a.Rhs.Equal(b.Rhs)
	default:
		return p == nil && q == nil
	}
}

// UnionVariables merges variable lists into one sorted, duplicate-free list.
func UnionVariables(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
