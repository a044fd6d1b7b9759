// Package temporal provides the time-point algebra of TPGM graph queries and
// the rewriting that eliminates global time selectors.
//
// Every graph element carries four timestamps (valid-from/to and
// transaction-from/to). A query refers to them through selectors:
//
//	a.val_from     local selector: the valid-from of the element bound to a
//	val_from       global selector: the valid-from of the whole pattern
//
// The global interval of a pattern is the interval during which all of its
// elements exist: the global start is the latest start and the global end
// is the earliest end.
//
//	global.val_from = MAX(v.val_from for v in variables)
//	global.val_to   = MIN(v.val_to   for v in variables)
//
// TIME POINTS:
//
// TimePoint is sealed. Its variants are Constant, Literal, Selector, Min,
// Max and Duration. All of them are immutable values; Min and Max hide their
// argument slices and hand out copies.
//
// Evaluate returns the epoch-millisecond value of a point when it is
// statically known. Selectors never are, so any tree containing one is
// unevaluable:
//
//	v, ok := MustDuration(a, b).Evaluate()
//
// UNFOLDING:
//
// A comparison "global.field op rhs" is rewritten into a quantified formula
// over the local selectors of all pattern variables, see Selector.Unfold.
// ReplaceGlobalByLocal is the structural counterpart used when a global
// selector is nested inside a term.
package temporal
