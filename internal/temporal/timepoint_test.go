package temporal

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseField(t *testing.T) {
	testCases := []struct {
		input string
		want  TimeField
	}{
		{"val_from", ValFrom},
		{"VAL_TO", ValTo},
		{" Tx_From ", TxFrom},
		{"tx_to", TxTo},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseField(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := ParseField("valid_from")
	require.ErrorIs(t, err, ErrInvalidField)
}

func TestTimeField_IsStart(t *testing.T) {
	assert.True(t, ValFrom.IsStart())
	assert.True(t, TxFrom.IsStart())
	assert.False(t, ValTo.IsStart())
	assert.False(t, TxTo.IsStart())
}

func TestConstant(t *testing.T) {
	c := NewConstant(1000)
	assert.Equal(t, int64(1000), c.Millis)

	days, hours, minutes, seconds, millis := 23, 11, 7, 42, 1
	c2 := ConstantOf(days, hours, minutes, seconds, millis)

	expected := int64(millis + 1000*seconds + (1000*60)*minutes + (1000*60*60)*hours + (1000*60*60*24)*days)
	assert.Equal(t, expected, c2.Millis)

	v, ok := c2.Evaluate()
	require.True(t, ok)
	assert.Equal(t, c2.Millis, v)

	assert.Equal(t, "Constant(1000)", c.String())
	assert.Empty(t, c.Variables())
	assert.False(t, c.IsGlobal())
}

func TestConstantOf_LargeDayCount(t *testing.T) {
	// 30000 days overflows int32 milliseconds
	c := ConstantOf(30000, 0, 0, 0, 0)
	assert.Equal(t, int64(30000)*MillisPerDay, c.Millis)
}

func TestLiteral_MillisInit(t *testing.T) {
	l := NewLiteral(0)
	assert.Equal(t, int64(0), l.Millis)
	assert.Equal(t, 1970, l.Year())
	assert.Equal(t, 1, l.Month())
	assert.Equal(t, 1, l.Day())
	assert.Equal(t, 0, l.Hour())
	assert.Equal(t, 0, l.Minute())
	assert.Equal(t, 0, l.Second())

	l2 := NewLiteral(-1000)
	assert.Equal(t, int64(-1000), l2.Millis)
	assert.Equal(t, 1969, l2.Year())
	assert.Equal(t, 12, l2.Month())
	assert.Equal(t, 31, l2.Day())
	assert.Equal(t, 23, l2.Hour())
	assert.Equal(t, 59, l2.Minute())
	assert.Equal(t, 59, l2.Second())

	v, ok := l2.Evaluate()
	require.True(t, ok)
	assert.Equal(t, int64(-1000), v)
}

func TestParseLiteral(t *testing.T) {
	l, err := ParseLiteral("2020-04-06T15:33:00")
	require.NoError(t, err)
	assert.Equal(t, 2020, l.Year())
	assert.Equal(t, 4, l.Month())
	assert.Equal(t, 6, l.Day())
	assert.Equal(t, 15, l.Hour())
	assert.Equal(t, 33, l.Minute())
	assert.Equal(t, 0, l.Second())

	v, ok := l.Evaluate()
	require.True(t, ok)
	assert.Equal(t, l.Millis, v)

	dateOnly, err := ParseLiteral("2020-04-05")
	require.NoError(t, err)
	assert.Equal(t, 5, dateOnly.Day())
	assert.Equal(t, 0, dateOnly.Hour())
	assert.Equal(t, 0, dateOnly.Minute())
	assert.Equal(t, 0, dateOnly.Second())

	withMillis, err := ParseLiteral("1970-01-01T00:00:01.250")
	require.NoError(t, err)
	assert.Equal(t, int64(1250), withMillis.Millis)
	assert.Equal(t, 250, withMillis.Millisecond())

	_, err = ParseLiteral("06.04.2020")
	require.ErrorIs(t, err, ErrInvalidLiteral)
}

func TestParseLiteral_Now(t *testing.T) {
	fixed := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	l, err := parseLiteral("NOW", func() time.Time { return fixed })
	require.NoError(t, err)
	assert.Equal(t, fixed.UnixMilli(), l.Millis)

	before := time.Now().UnixMilli()
	now, err := ParseLiteral(NowToken)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, now.Millis, before)
	assert.LessOrEqual(t, now.Millis, time.Now().UnixMilli())
}

func TestLiteralOf(t *testing.T) {
	l := LiteralOf(1970, 1, 1, 0, 0, 1, 0)
	assert.Equal(t, int64(1000), l.Millis)

	parsed, err := ParseLiteral("2020-05-06T07:08:09")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(LiteralOf(2020, 5, 6, 7, 8, 9, 0)))
}

func TestLiteral_String(t *testing.T) {
	assert.Equal(t, "2020-04-06T15:33:00", LiteralOf(2020, 4, 6, 15, 33, 0, 0).String())
	assert.Equal(t, "1970-01-01T00:00:00.5", NewLiteral(500).String())
	assert.Equal(t, "1969-12-31T23:59:59", NewLiteral(-1000).String())
}

func TestLiteral_Introspection(t *testing.T) {
	l, err := ParseLiteral("1970-02-01T15:23:05")
	require.NoError(t, err)
	assert.False(t, l.ContainsSelectorType(TxTo))
	assert.False(t, l.IsGlobal())
	assert.Empty(t, l.Variables())

	// Replacement is the identity for atoms.
	assert.Equal(t, TimePoint(l), l.ReplaceGlobalByLocal([]string{"a"}))
	assert.False(t, l.Equal(NewConstant(l.Millis)))
}

func TestSelector(t *testing.T) {
	s := NewSelector("a", TxTo)
	assert.Equal(t, []string{"a"}, s.Variables())
	assert.False(t, s.IsGlobal())
	assert.True(t, s.ContainsSelectorType(TxTo))
	assert.False(t, s.ContainsSelectorType(TxFrom))
	assert.Equal(t, "a.TX_TO", s.String())

	_, ok := s.Evaluate()
	assert.False(t, ok)

	g := GlobalSelector(ValFrom)
	assert.True(t, g.IsGlobal())
	assert.Equal(t, []string{GlobalVariable}, g.Variables())
	assert.Equal(t, GlobalVariable+".VAL_FROM", g.String())
}

func TestSelector_Equal(t *testing.T) {
	assert.True(t, NewSelector("a", ValTo).Equal(NewSelector("a", ValTo)))
	assert.False(t, NewSelector("a", ValTo).Equal(NewSelector("b", ValTo)))
	assert.False(t, NewSelector("a", ValTo).Equal(NewSelector("a", TxTo)))

	// A local variable named like the reported global name is still local.
	assert.False(t, NewSelector(GlobalVariable, ValTo).Equal(GlobalSelector(ValTo)))
	assert.True(t, GlobalSelector(ValTo).Equal(Selector{Scope: Global, Variable: "ignored", Field: ValTo}))
}

func TestParseSelector(t *testing.T) {
	s, err := ParseSelector("a", "VAL_FROM")
	require.NoError(t, err)
	assert.True(t, s.Equal(NewSelector("a", ValFrom)))

	g, err := ParseSelector("", "tx_to")
	require.NoError(t, err)
	assert.True(t, g.IsGlobal())

	_, err = ParseSelector("a", "from")
	require.ErrorIs(t, err, ErrInvalidField)
}

func TestMinMax_TooFewArguments(t *testing.T) {
	_, err := NewMin(NewLiteral(1))
	require.ErrorIs(t, err, ErrTooFewArguments)

	_, err = NewMax()
	require.ErrorIs(t, err, ErrTooFewArguments)

	_, err = MustMin(NewLiteral(1), NewLiteral(2)).WithArgs()
	require.ErrorIs(t, err, ErrTooFewArguments)

	assert.Panics(t, func() { MustMax(NewLiteral(1)) })
}

func TestMinMax_Evaluate(t *testing.T) {
	a, b, c := NewLiteral(30), NewLiteral(-10), NewConstant(20)

	v, ok := MustMin(a, b, c).Evaluate()
	require.True(t, ok)
	assert.Equal(t, int64(-10), v)

	v, ok = MustMax(a, b, c).Evaluate()
	require.True(t, ok)
	assert.Equal(t, int64(30), v)

	_, ok = MustMin(a, NewSelector("x", ValFrom)).Evaluate()
	assert.False(t, ok)

	_, ok = MustMax(GlobalSelector(TxTo), a).Evaluate()
	assert.False(t, ok)
}

func TestMinMax_EqualityIsOrderIndependent(t *testing.T) {
	a := NewSelector("a", ValFrom)
	b := NewLiteral(42)

	assert.True(t, MustMin(a, b).Equal(MustMin(b, a)))
	assert.True(t, MustMax(a, b).Equal(MustMax(b, a)))
	assert.False(t, MustMin(a, b).Equal(MustMax(a, b)))

	// Duplicates count.
	assert.False(t, MustMin(a, a, b).Equal(MustMin(a, b, b)))
	assert.True(t, MustMin(a, b, a).Equal(MustMin(a, a, b)))
}

func TestMinMax_ArgsAreCopies(t *testing.T) {
	args := []TimePoint{NewLiteral(1), NewLiteral(2)}
	m := MustMin(args...)

	args[0] = NewLiteral(100)
	v, _ := m.Evaluate()
	assert.Equal(t, int64(1), v)

	got := m.Args()
	got[1] = NewLiteral(-5)
	v, _ = m.Evaluate()
	assert.Equal(t, int64(1), v)
}

func TestMinMax_Introspection(t *testing.T) {
	m := MustMin(NewSelector("b", ValFrom), MustMax(NewSelector("a", TxTo), NewLiteral(0)), NewSelector("a", ValFrom))

	assert.Equal(t, []string{"a", "b"}, m.Variables())
	assert.True(t, m.ContainsSelectorType(TxTo))
	assert.False(t, m.ContainsSelectorType(TxFrom))
	assert.False(t, m.IsGlobal())
	assert.True(t, MustMax(NewLiteral(0), MustMin(NewLiteral(1), GlobalSelector(TxFrom))).IsGlobal())

	assert.Equal(t, "MIN(b.VAL_FROM, MAX(a.TX_TO, 1970-01-01T00:00:00), a.VAL_FROM)", m.String())
}

func TestDuration(t *testing.T) {
	l1, err := ParseLiteral("1970-01-01T00:00:00")
	require.NoError(t, err)
	l2, err := ParseLiteral("1970-01-01T00:00:01")
	require.NoError(t, err)

	v, ok := MustDuration(l1, l2).Evaluate()
	require.True(t, ok)
	assert.Equal(t, int64(1000), v)

	v, ok = MustDuration(l2, l1).Evaluate()
	require.True(t, ok)
	assert.Equal(t, int64(-1000), v)
}

func TestDuration_Selectors(t *testing.T) {
	l1, err := ParseLiteral("1979-04-11T00:12:12")
	require.NoError(t, err)
	s1 := NewSelector("a", TxTo)

	d := MustDuration(l1, s1)
	_, ok := d.Evaluate()
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, d.Variables())
	assert.False(t, d.IsGlobal())
	assert.True(t, d.ContainsSelectorType(TxTo))

	d = MustDuration(GlobalSelector(TxFrom), s1)
	assert.True(t, d.IsGlobal())
	assert.Equal(t, []string{GlobalVariable, "a"}, d.Variables())
	assert.Equal(t, "Duration(___global.TX_FROM, a.TX_TO)", d.String())

	assert.True(t, d.Equal(MustDuration(GlobalSelector(TxFrom), s1)))
	assert.False(t, d.Equal(MustDuration(s1, GlobalSelector(TxFrom))))
}

func TestVariable(t *testing.T) {
	a := NewSelector("a", ValFrom)

	tests := []struct {
		name string
		tp   TimePoint
		want string
		ok   bool
	}{
		{"local selector", a, "a", true},
		{"global selector", GlobalSelector(TxTo), GlobalVariable, true},
		{"literal", NewLiteral(0), "", false},
		{"constant", ConstantOf(1, 0, 0, 0, 0), "", false},
		{"min", MustMin(a, NewSelector("a", ValTo)), "", false},
		{"duration", MustDuration(a, NewLiteral(0)), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Variable(tt.tp)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDuration_Overflow(t *testing.T) {
	tests := []struct {
		name     string
		from, to int64
		want     int64
		ok       bool
	}{
		{"full range", math.MinInt64, math.MaxInt64, 0, false},
		{"reverse full range", math.MaxInt64, math.MinInt64, 0, false},
		{"to zero from min", math.MinInt64, 0, 0, false},
		{"max minus minus one", -1, math.MaxInt64, 0, false},
		{"max to zero", math.MaxInt64, 0, -math.MaxInt64, true},
		{"min to minus one", math.MinInt64, -1, math.MaxInt64, true},
		{"same sign extremes", 1, math.MaxInt64, math.MaxInt64 - 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := MustDuration(NewLiteral(tt.from), NewLiteral(tt.to)).Evaluate()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestDuration_NilEnds(t *testing.T) {
	_, err := NewDuration(nil, NewLiteral(0))
	require.ErrorIs(t, err, ErrNilTimePoint)
	_, err = NewDuration(NewLiteral(0), nil)
	require.ErrorIs(t, err, ErrNilTimePoint)

	assert.Panics(t, func() { MustDuration(nil, nil) })

	_, ok := Duration{}.Evaluate()
	assert.False(t, ok)
}
