package temporal

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/tpgm/internal/predicate"
)

// Min is the earliest of at least two time points.
type Min struct {
	args []TimePoint
}

// NewMin creates MIN(args...). It fails with ErrTooFewArguments for fewer
// than two arguments. The argument slice is copied.
func NewMin(args ...TimePoint) (Min, error) {
	if len(args) < 2 {
		return Min{}, fmt.Errorf("MIN: %w (got %d)", ErrTooFewArguments, len(args))
	}
	return Min{args: slices.Clone(args)}, nil
}

// MustMin is like NewMin but panics on error.
func MustMin(args ...TimePoint) Min {
	m, err := NewMin(args...)
	if err != nil {
		panic(err)
	}
	return m
}

// Max is the latest of at least two time points.
type Max struct {
	args []TimePoint
}

// NewMax creates MAX(args...). It fails with ErrTooFewArguments for fewer
// than two arguments. The argument slice is copied.
func NewMax(args ...TimePoint) (Max, error) {
	if len(args) < 2 {
		return Max{}, fmt.Errorf("MAX: %w (got %d)", ErrTooFewArguments, len(args))
	}
	return Max{args: slices.Clone(args)}, nil
}

// MustMax is like NewMax but panics on error.
func MustMax(args ...TimePoint) Max {
	m, err := NewMax(args...)
	if err != nil {
		panic(err)
	}
	return m
}

func (Min) timePoint() {}
func (Min) Temporal()  {}
func (Max) timePoint() {}
func (Max) Temporal()  {}

// Args returns a copy of the arguments.
func (m Min) Args() []TimePoint { return slices.Clone(m.args) }

// Args returns a copy of the arguments.
func (m Max) Args() []TimePoint { return slices.Clone(m.args) }

// WithArgs returns a new MIN over args; m is unchanged.
func (m Min) WithArgs(args ...TimePoint) (Min, error) { return NewMin(args...) }

// WithArgs returns a new MAX over args; m is unchanged.
func (m Max) WithArgs(args ...TimePoint) (Max, error) { return NewMax(args...) }

// Evaluate returns the smallest argument value if every argument evaluates.
func (m Min) Evaluate() (int64, bool) {
	return fold(m.args, func(acc, v int64) bool { return v < acc })
}

// Evaluate returns the largest argument value if every argument evaluates.
func (m Max) Evaluate() (int64, bool) {
	return fold(m.args, func(acc, v int64) bool { return v > acc })
}

func (m Min) Variables() []string { return argVariables(m.args) }
func (m Max) Variables() []string { return argVariables(m.args) }

func (m Min) ContainsSelectorType(field TimeField) bool { return argsContain(m.args, field) }
func (m Max) ContainsSelectorType(field TimeField) bool { return argsContain(m.args, field) }

func (m Min) IsGlobal() bool { return argsGlobal(m.args) }
func (m Max) IsGlobal() bool { return argsGlobal(m.args) }

func (m Min) ReplaceGlobalByLocal(variables []string) TimePoint {
	args, changed := replaceArgs(m.args, variables)
	if !changed {
		return m
	}
	return Min{args: args}
}

func (m Max) ReplaceGlobalByLocal(variables []string) TimePoint {
	args, changed := replaceArgs(m.args, variables)
	if !changed {
		return m
	}
	return Max{args: args}
}

func (m Min) Equal(other predicate.Comparable) bool {
	o, ok := other.(Min)
	return ok && sameMultiset(m.args, o.args)
}

func (m Max) Equal(other predicate.Comparable) bool {
	o, ok := other.(Max)
	return ok && sameMultiset(m.args, o.args)
}

func (m Min) String() string { return render("MIN", m.args) }
func (m Max) String() string { return render("MAX", m.args) }

// fold evaluates args and keeps the value for which better(acc, v) holds.
// Stops at the first unevaluable argument.
func fold(args []TimePoint, better func(acc, v int64) bool) (int64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	var acc int64
	for i, arg := range args {
		v, ok := arg.Evaluate()
		if !ok {
			return 0, false
		}
		if i == 0 || better(acc, v) {
			acc = v
		}
	}
	return acc, true
}

func argVariables(args []TimePoint) []string {
	lists := make([][]string, len(args))
	for i, arg := range args {
		lists[i] = arg.Variables()
	}
	return predicate.UnionVariables(lists...)
}

func argsContain(args []TimePoint, field TimeField) bool {
	for _, arg := range args {
		if arg.ContainsSelectorType(field) {
			return true
		}
	}
	return false
}

func argsGlobal(args []TimePoint) bool {
	for _, arg := range args {
		if arg.IsGlobal() {
			return true
		}
	}
	return false
}

// replaceArgs applies ReplaceGlobalByLocal to every argument and reports
// whether any argument changed.
func replaceArgs(args []TimePoint, variables []string) ([]TimePoint, bool) {
	if !argsGlobal(args) {
		return args, false
	}
	out := make([]TimePoint, len(args))
	for i, arg := range args {
		out[i] = arg.ReplaceGlobalByLocal(variables)
	}
	return out, true
}

// sameMultiset reports whether a and b hold equal elements with equal
// multiplicities, in any order.
func sameMultiset(a, b []TimePoint) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, x := range a {
		found := false
		for j, y := range b {
			if !used[j] && x.Equal(y) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func render(operator string, args []TimePoint) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return operator + "(" + strings.Join(parts, ", ") + ")"
}
