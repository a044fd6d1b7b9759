package temporal

import (
	"strings"

	"github.com/roach88/tpgm/internal/predicate"
)

// GlobalVariable is the name under which the pattern scope is reported by
// Variables and rendered by String. Selector data never stores it: globality
// is the Scope tag.
const GlobalVariable = "___global"

// Scope tells whether a selector refers to one variable or the whole pattern.
type Scope int

const (
	// Local selectors refer to the element bound to one query variable.
	Local Scope = iota
	// Global selectors refer to the query pattern as a whole.
	Global
)

// Selector references a time field of a graph element (Local) or of the
// whole pattern (Global). Variable is ignored for global selectors.
type Selector struct {
	Scope    Scope
	Variable string
	Field    TimeField
}

// NewSelector creates the local selector variable.field.
func NewSelector(variable string, field TimeField) Selector {
	return Selector{Scope: Local, Variable: variable, Field: field}
}

// GlobalSelector creates the pattern-wide selector on field.
func GlobalSelector(field TimeField) Selector {
	return Selector{Scope: Global, Field: field}
}

// ParseSelector creates a selector from a variable name and a field name.
// An empty variable yields a global selector.
func ParseSelector(variable, field string) (Selector, error) {
	f, err := ParseField(field)
	if err != nil {
		return Selector{}, err
	}
	variable = strings.TrimSpace(variable)
	if variable == "" {
		return GlobalSelector(f), nil
	}
	return NewSelector(variable, f), nil
}

func (Selector) timePoint() {}
func (Selector) Temporal()  {}

// Name returns the selector's variable, or GlobalVariable for the pattern
// scope.
func (s Selector) Name() string {
	if s.Scope == Global {
		return GlobalVariable
	}
	return s.Variable
}

// Evaluate never succeeds: a selector's value depends on bound graph data.
func (Selector) Evaluate() (int64, bool) {
	return 0, false
}

func (s Selector) Variables() []string {
	return []string{s.Name()}
}

func (s Selector) ContainsSelectorType(field TimeField) bool {
	return s.Field == field
}

func (s Selector) IsGlobal() bool {
	return s.Scope == Global
}

// ReplaceGlobalByLocal returns the local definition of a global selector:
// the single local selector for one variable, otherwise MAX over all local
// starts or MIN over all local ends. Local selectors and an empty variable
// list return s.
func (s Selector) ReplaceGlobalByLocal(variables []string) TimePoint {
	if s.Scope != Global || len(variables) == 0 {
		return s
	}
	locals := s.locals(variables)
	if len(locals) == 1 {
		return locals[0]
	}
	if s.Field.IsStart() {
		return Max{args: locals}
	}
	return Min{args: locals}
}

// locals returns the local selectors on s.Field for variables, in order.
func (s Selector) locals(variables []string) []TimePoint {
	out := make([]TimePoint, len(variables))
	for i, v := range variables {
		out[i] = NewSelector(v, s.Field)
	}
	return out
}

func (s Selector) Equal(other predicate.Comparable) bool {
	o, ok := other.(Selector)
	if !ok || o.Scope != s.Scope || o.Field != s.Field {
		return false
	}
	return s.Scope == Global || o.Variable == s.Variable
}

func (s Selector) String() string {
	return s.Name() + "." + s.Field.String()
}
