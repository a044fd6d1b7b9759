package predicate

import (
	"fmt"
	"strconv"
)

// PropertySelector references a property of the element bound to Variable.
type PropertySelector struct {
	Variable string
	Key      string
}

// NewPropertySelector creates the operand variable.key.
func NewPropertySelector(variable, key string) PropertySelector {
	return PropertySelector{Variable: variable, Key: key}
}

func (p PropertySelector) Variables() []string {
	return []string{p.Variable}
}

func (PropertySelector) IsGlobal() bool { return false }

func (p PropertySelector) Equal(other Comparable) bool {
	o, ok := other.(PropertySelector)
	return ok && o == p
}

func (p PropertySelector) String() string {
	return p.Variable + "." + p.Key
}

// Literal is a constant non-temporal value: string, int64 or bool.
type Literal struct {
	Value any
}

// NewLiteral creates a literal operand. An int is stored as int64.
func NewLiteral(v any) Literal {
	if i, ok := v.(int); ok {
		v = int64(i)
	}
	return Literal{Value: v}
}

func (Literal) Variables() []string { return nil }

func (Literal) IsGlobal() bool { return false }

func (l Literal) Equal(other Comparable) bool {
	o, ok := other.(Literal)
	return ok && o.Value == l.Value
}

func (l Literal) String() string {
	switch v := l.Value.(type) {
	case string:
		return strconv.Quote(v)
	case nil:
		return "NULL"
	default:
		return fmt.Sprint(v)
	}
}
