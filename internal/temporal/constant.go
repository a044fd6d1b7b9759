package temporal

import (
	"fmt"

	"github.com/roach88/tpgm/internal/predicate"
)

// Millisecond multiples used to build constants.
const (
	MillisPerSecond int64 = 1000
	MillisPerMinute       = 60 * MillisPerSecond
	MillisPerHour         = 60 * MillisPerMinute
	MillisPerDay          = 24 * MillisPerHour
)

// Constant is a duration magnitude in milliseconds, not an absolute time.
type Constant struct {
	Millis int64
}

// NewConstant creates a constant of millis milliseconds.
func NewConstant(millis int64) Constant {
	return Constant{Millis: millis}
}

// ConstantOf creates a constant from calendar-free components.
// Components may be negative or exceed their natural range.
func ConstantOf(days, hours, minutes, seconds, millis int) Constant {
	sum := int64(millis)
	sum += MillisPerSecond * int64(seconds)
	sum += MillisPerMinute * int64(minutes)
	sum += MillisPerHour * int64(hours)
	sum += MillisPerDay * int64(days)
	return Constant{Millis: sum}
}

func (Constant) timePoint() {}
func (Constant) Temporal()  {}

func (c Constant) Evaluate() (int64, bool) {
	return c.Millis, true
}

func (Constant) Variables() []string { return nil }

func (Constant) ContainsSelectorType(TimeField) bool { return false }

func (Constant) IsGlobal() bool { return false }

func (c Constant) ReplaceGlobalByLocal([]string) TimePoint { return c }

func (c Constant) Equal(other predicate.Comparable) bool {
	o, ok := other.(Constant)
	return ok && o.Millis == c.Millis
}

func (c Constant) String() string {
	return fmt.Sprintf("Constant(%d)", c.Millis)
}
