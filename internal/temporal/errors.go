package temporal

import "errors"

var (
	// ErrTooFewArguments is returned when a Min or Max term is built with
	// fewer than two arguments.
	ErrTooFewArguments = errors.New("at least two arguments are needed")

	// ErrNilTimePoint is returned when a Duration is built with a nil end.
	ErrNilTimePoint = errors.New("time point must not be nil")

	// ErrInvalidField is returned for a string that names no time field.
	ErrInvalidField = errors.New("invalid time field")

	// ErrInvalidLiteral is returned for a string that is not a time literal.
	ErrInvalidLiteral = errors.New("invalid time literal")

	// ErrNoVariables is returned when a global selector is unfolded over an
	// empty variable list.
	ErrNoVariables = errors.New("unfolding a global selector requires at least one variable")

	// ErrUnsupportedComparator is returned when unfolding meets a comparator
	// outside the six relational operators.
	ErrUnsupportedComparator = errors.New("unsupported comparator")
)
