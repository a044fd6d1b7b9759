package temporal

import (
	"fmt"

	"github.com/roach88/tpgm/internal/predicate"
)

// Duration is the signed length of the interval [From, To]. Both ends must
// be non-nil; build it with NewDuration. The zero value is not usable.
type Duration struct {
	From TimePoint
	To   TimePoint
}

// NewDuration creates the duration of the interval from..to. It fails with
// ErrNilTimePoint if either end is nil.
func NewDuration(from, to TimePoint) (Duration, error) {
	if from == nil || to == nil {
		return Duration{}, fmt.Errorf("Duration: %w", ErrNilTimePoint)
	}
	return Duration{From: from, To: to}, nil
}

// MustDuration is like NewDuration but panics on error.
func MustDuration(from, to TimePoint) Duration {
	d, err := NewDuration(from, to)
	if err != nil {
		panic(err)
	}
	return d
}

func (Duration) timePoint() {}
func (Duration) Temporal()  {}

// Evaluate returns To - From if both ends evaluate and the difference fits
// in an int64.
func (d Duration) Evaluate() (int64, bool) {
	if d.From == nil || d.To == nil {
		return 0, false
	}
	from, ok := d.From.Evaluate()
	if !ok {
		return 0, false
	}
	to, ok := d.To.Evaluate()
	if !ok {
		return 0, false
	}
	diff := to - from
	// Overflow iff the operands differ in sign and the result's sign
	// differs from to's.
	if (to >= 0) != (from >= 0) && (diff >= 0) != (to >= 0) {
		return 0, false
	}
	return diff, true
}

func (d Duration) Variables() []string {
	return predicate.UnionVariables(d.From.Variables(), d.To.Variables())
}

func (d Duration) ContainsSelectorType(field TimeField) bool {
	return d.From.ContainsSelectorType(field) || d.To.ContainsSelectorType(field)
}

func (d Duration) IsGlobal() bool {
	return d.From.IsGlobal() || d.To.IsGlobal()
}

func (d Duration) ReplaceGlobalByLocal(variables []string) TimePoint {
	if !d.IsGlobal() {
		return d
	}
	return Duration{
		From: d.From.ReplaceGlobalByLocal(variables),
		To:   d.To.ReplaceGlobalByLocal(variables),
	}
}

func (d Duration) Equal(other predicate.Comparable) bool {
	o, ok := other.(Duration)
	return ok && Equal(d.From, o.From) && Equal(d.To, o.To)
}

func (d Duration) String() string {
	return fmt.Sprintf("Duration(%s, %s)", d.From, d.To)
}
