package predicate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidComparator is returned when a string names no known comparator.
var ErrInvalidComparator = errors.New("invalid comparator")

// Comparator is a relational operator in a Comparison.
type Comparator int

const (
	EQ Comparator = iota
	NEQ
	LT
	LTE
	GT
	GTE
)

// Comparators lists every comparator in declaration order.
var Comparators = []Comparator{EQ, NEQ, LT, LTE, GT, GTE}

// SwitchSides returns the comparator that keeps a comparison equivalent
// after its operands are swapped: a < b  <=>  b > a.
//
// SwitchSides is an involution.
func (c Comparator) SwitchSides() Comparator {
	switch c {
	case LT:
		return GT
	case LTE:
		return GTE
	case GT:
		return LT
	case GTE:
		return LTE
	default:
		// EQ and NEQ are symmetric
		return c
	}
}

// String renders the comparator symbol.
func (c Comparator) String() string {
	switch c {
	case EQ:
		return "="
	case NEQ:
		return "!="
	case LT:
		return "<"
	case LTE:
		return "<="
	case GT:
		return ">"
	case GTE:
		return ">="
	default:
		return fmt.Sprintf("Comparator(%d)", int(c))
	}
}

// Valid reports whether c is one of the six declared comparators.
func (c Comparator) Valid() bool {
	return c >= EQ && c <= GTE
}

// ParseComparator parses a comparator symbol or name.
// Accepts =, ==, !=, <>, <, <=, >, >= and eq, neq, lt, lte, gt, gte
// (case-insensitive, surrounding whitespace ignored).
func ParseComparator(s string) (Comparator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "=", "==", "eq":
		return EQ, nil
	case "!=", "<>", "neq":
		return NEQ, nil
	case "<", "lt":
		return LT, nil
	case "<=", "lte":
		return LTE, nil
	case ">", "gt":
		return GT, nil
	case ">=", "gte":
		return GTE, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidComparator, s)
	}
}
