// Package predicate provides the boolean predicate tree that temporal query
// rewriting produces and consumes.
//
// The tree is the boundary between the query compiler and the temporal core:
//
//	[document] → [predicate tree with global selectors]
//	           → [rewrite] → [predicate tree with local selectors only]
//	           → [SQL backend]
//
// SEALED INTERFACES:
//
// Predicate is sealed using the marker method pattern. Only And, Or, Not and
// Comparison implement it, so backends can switch exhaustively:
//
//	switch p := pred.(type) {
//	case And:
//	case Or:
//	case Not:
//	case Comparison:
//	}
//
// Comparable (the operand of a Comparison) is deliberately open: the temporal
// package supplies the time-valued operands, this package supplies the
// property and literal operands.
//
// BINARY COMBINATORS:
//
// And and Or are binary. Quantifier expansion over a variable list produces
// left-deep chains, built with AllOf and AnyOf:
//
//	AllOf(p, q, r) == And{And{p, q}, r}
package predicate
