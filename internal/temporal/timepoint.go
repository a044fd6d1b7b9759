package temporal

import "github.com/roach88/tpgm/internal/predicate"

// TimePoint is a point in time, possibly symbolic.
//
// This is a sealed interface - only Constant, Literal, Selector, Min, Max and
// Duration implement it. Backends switch over the variants exhaustively.
type TimePoint interface {
	predicate.Temporal

	// Evaluate returns the value in epoch milliseconds and true when the
	// point is statically determinable, false otherwise.
	Evaluate() (int64, bool)

	// ContainsSelectorType reports whether a selector on field is reachable.
	ContainsSelectorType(field TimeField) bool

	// ReplaceGlobalByLocal substitutes every global selector by its
	// definition over variables. Points without a global selector are
	// returned unchanged.
	ReplaceGlobalByLocal(variables []string) TimePoint

	timePoint() // Marker method - seals interface to this package
}

// Equal reports structural equality of two time points.
// Min and Max arguments compare as multisets.
func Equal(a, b TimePoint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// Variable returns the single variable a time point is bound to. Only
// selectors have one; a global selector reports GlobalVariable. Terms and
// constants report false even when all their selectors share a variable.
func Variable(tp TimePoint) (string, bool) {
	if s, ok := tp.(Selector); ok {
		return s.Name(), true
	}
	return "", false
}
