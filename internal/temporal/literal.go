package temporal

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/tpgm/internal/predicate"
)

// NowToken is the literal string denoting the construction instant.
const NowToken = "now"

// literalLayouts are tried in order by ParseLiteral. Fractional seconds
// after the seconds field are accepted by the first layout.
var literalLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// renderLayout drops the fractional part when the milliseconds are zero.
const renderLayout = "2006-01-02T15:04:05.999"

// Literal is an absolute UTC timestamp in epoch milliseconds.
type Literal struct {
	Millis int64
}

// NewLiteral creates the literal millis milliseconds after the epoch.
func NewLiteral(millis int64) Literal {
	return Literal{Millis: millis}
}

// LiteralOf creates a literal from UTC calendar fields. month is 1-12.
// Out-of-range fields are normalized as time.Date does.
func LiteralOf(year, month, day, hour, minute, second, millis int) Literal {
	t := time.Date(year, time.Month(month), day, hour, minute, second,
		millis*int(time.Millisecond), time.UTC)
	return Literal{Millis: t.UnixMilli()}
}

// Now creates a literal holding the current instant. The instant is
// captured immediately, not when the literal is evaluated.
func Now() Literal {
	return Literal{Millis: time.Now().UnixMilli()}
}

// ParseLiteral parses YYYY-MM-DD, YYYY-MM-DDTHH:MM, YYYY-MM-DDTHH:MM:SS
// (optionally with fractional seconds) or "now". Dates without a time are
// midnight. All input is UTC.
func ParseLiteral(s string) (Literal, error) {
	return parseLiteral(s, time.Now)
}

func parseLiteral(s string, now func() time.Time) (Literal, error) {
	trimmed := strings.TrimSpace(s)
	if strings.EqualFold(trimmed, NowToken) {
		return Literal{Millis: now().UnixMilli()}, nil
	}
	for _, layout := range literalLayouts {
		t, err := time.ParseInLocation(layout, trimmed, time.UTC)
		if err == nil {
			return Literal{Millis: t.UnixMilli()}, nil
		}
	}
	return Literal{}, fmt.Errorf("%w: %q", ErrInvalidLiteral, s)
}

// Time returns the literal as a UTC time.
func (l Literal) Time() time.Time {
	return time.UnixMilli(l.Millis).UTC()
}

func (l Literal) Year() int        { return l.Time().Year() }
func (l Literal) Month() int       { return int(l.Time().Month()) }
func (l Literal) Day() int         { return l.Time().Day() }
func (l Literal) Hour() int        { return l.Time().Hour() }
func (l Literal) Minute() int      { return l.Time().Minute() }
func (l Literal) Second() int      { return l.Time().Second() }
func (l Literal) Millisecond() int { return l.Time().Nanosecond() / int(time.Millisecond) }

func (Literal) timePoint() {}
func (Literal) Temporal()  {}

func (l Literal) Evaluate() (int64, bool) {
	return l.Millis, true
}

func (Literal) Variables() []string { return nil }

func (Literal) ContainsSelectorType(TimeField) bool { return false }

func (Literal) IsGlobal() bool { return false }

func (l Literal) ReplaceGlobalByLocal([]string) TimePoint { return l }

func (l Literal) Equal(other predicate.Comparable) bool {
	o, ok := other.(Literal)
	return ok && o.Millis == l.Millis
}

func (l Literal) String() string {
	return l.Time().Format(renderLayout)
}
