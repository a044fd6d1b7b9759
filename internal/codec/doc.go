// Package codec reads query documents and writes canonical encodings of
// predicate trees.
//
// DOCUMENTS:
//
// A document names a query, its pattern variables and a list of predicates
// that are conjoined. It may also carry graph elements and variable
// bindings for the store. YAML and CUE sources share one shape:
//
//	name: overlap
//	variables: [a, b]
//	predicates:
//	  - compare:
//	      lhs: {selector: {field: val_from}}
//	      op: "<"
//	      rhs: {literal: "2020-01-01"}
//
// A selector without a variable is global. Constants are milliseconds or a
// span of days, hours, minutes, seconds and millis; literals are date-times,
// "now", or epoch milliseconds.
//
// CANONICAL FORM:
//
// MarshalCanonical writes a tree in the same node shape as JSON with sorted
// keys, NFC-normalized strings and no floats. Min and Max arguments are
// written in sorted order, so trees that are Equal encode identically and
// share a Fingerprint.
package codec
