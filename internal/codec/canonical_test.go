package codec

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tpgm/internal/predicate"
	"github.com/roach88/tpgm/internal/temporal"
)

func TestMarshalCanonical_Golden(t *testing.T) {
	data, err := MarshalCanonical(overlapPredicate())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "overlap_canonical", data)
}

func TestMarshalCanonical_Roundtrip(t *testing.T) {
	p := overlapPredicate()
	data, err := MarshalCanonical(p)
	require.NoError(t, err)

	got, err := UnmarshalCanonical(data)
	require.NoError(t, err)
	assert.True(t, predicate.Equal(p, got), "got %s", got)
}

func TestMarshalCanonical_Strings(t *testing.T) {
	// "e" followed by a combining acute accent normalizes to U+00E9.
	p := predicate.NewComparison(
		predicate.NewPropertySelector("a", "name"), predicate.EQ, predicate.NewLiteral("<Cafe\u0301>\n\"q\""))

	data, err := MarshalCanonical(p)
	require.NoError(t, err)

	want := `{"compare":{"lhs":{"property":{"key":"name","variable":"a"}},"op":"=","rhs":{"value":"<Caf` +
		"\u00e9" + `>\n\"q\""}}}`
	assert.Equal(t, want, string(data))
}

func TestMarshalCanonical_Errors(t *testing.T) {
	_, err := MarshalCanonical(nil)
	require.Error(t, err)

	_, err = MarshalCanonical(predicate.NewComparison(
		predicate.NewPropertySelector("a", "x"), predicate.EQ, predicate.NewLiteral(1.5)))
	require.Error(t, err)

	_, err = UnmarshalCanonical([]byte(`{"compare":{"lhs":{"constant":1.5},"op":"=","rhs":{"constant":1}}}`))
	require.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	a := temporal.NewSelector("a", temporal.ValFrom)
	b := temporal.NewSelector("b", temporal.ValFrom)
	cmp := func(tp temporal.TimePoint) predicate.Predicate {
		return predicate.NewComparison(tp, predicate.LT, temporal.NewLiteral(0))
	}

	ab, err := Fingerprint(cmp(temporal.MustMin(a, b)))
	require.NoError(t, err)
	ba, err := Fingerprint(cmp(temporal.MustMin(b, a)))
	require.NoError(t, err)
	maxAB, err := Fingerprint(cmp(temporal.MustMax(a, b)))
	require.NoError(t, err)

	assert.Len(t, ab, 64)
	assert.Equal(t, ab, ba)
	assert.NotEqual(t, ab, maxAB)

	// Global selectors ignore the stored variable, so do fingerprints.
	g1, err := Fingerprint(cmp(temporal.GlobalSelector(temporal.TxTo)))
	require.NoError(t, err)
	g2, err := Fingerprint(cmp(temporal.Selector{Scope: temporal.Global, Variable: "stale", Field: temporal.TxTo}))
	require.NoError(t, err)
	assert.Equal(t, g1, g2)
}
