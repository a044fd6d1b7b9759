// Package querysql compiles predicate trees to parameterized SQL for SQLite.
package querysql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/tpgm/internal/predicate"
	"github.com/roach88/tpgm/internal/temporal"
)

// ErrGlobalSelector is returned when a predicate still contains a global
// selector. Rewrite it with the rewrite package before compiling.
var ErrGlobalSelector = errors.New("global selector cannot be compiled to SQL")

// SQLCompiler compiles predicate trees to SQL WHERE fragments.
//
// CRITICAL: All values are parameterized (never interpolated).
type SQLCompiler struct {
	// Column names the column holding field of the element bound to variable.
	Column func(variable string, field temporal.TimeField) string

	// Property returns the expression reading property key of variable,
	// with any parameters it binds.
	Property func(variable, key string) (string, []any)
}

// NewSQLCompiler creates a compiler with the default naming scheme:
// a.val_from → a_val_from, a.name → a_name.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{
		Column:   DefaultColumn,
		Property: DefaultProperty,
	}
}

// DefaultColumn returns "<variable>_<field>" with the field in lower case.
func DefaultColumn(variable string, field temporal.TimeField) string {
	return variable + "_" + strings.ToLower(field.String())
}

// DefaultProperty returns the column "<variable>_<key>".
func DefaultProperty(variable, key string) (string, []any) {
	return variable + "_" + key, nil
}

// Compile converts a predicate to a SQL boolean expression.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(p predicate.Predicate) (string, []any, error) {
	if p == nil {
		return "", nil, fmt.Errorf("cannot compile nil predicate")
	}
	return c.compilePredicate(p)
}

func (c *SQLCompiler) compilePredicate(p predicate.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case predicate.And:
		return c.compileBinary("AND", pred.Left, pred.Right)
	case predicate.Or:
		return c.compileBinary("OR", pred.Left, pred.Right)
	case predicate.Not:
		sql, params, err := c.compilePredicate(pred.Operand)
		if err != nil {
			return "", nil, err
		}
		return "NOT (" + sql + ")", params, nil
	case predicate.Comparison:
		return c.compileComparison(pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileBinary(op string, left, right predicate.Predicate) (string, []any, error) {
	lsql, lparams, err := c.compilePredicate(left)
	if err != nil {
		return "", nil, err
	}
	rsql, rparams, err := c.compilePredicate(right)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("(%s %s %s)", lsql, op, rsql), append(lparams, rparams...), nil
}

func (c *SQLCompiler) compileComparison(cmp predicate.Comparison) (string, []any, error) {
	op, err := sqlOperator(cmp.Op)
	if err != nil {
		return "", nil, err
	}
	lsql, lparams, err := c.compileOperand(cmp.Lhs)
	if err != nil {
		return "", nil, fmt.Errorf("compile %s: %w", cmp, err)
	}
	rsql, rparams, err := c.compileOperand(cmp.Rhs)
	if err != nil {
		return "", nil, fmt.Errorf("compile %s: %w", cmp, err)
	}
	return fmt.Sprintf("%s %s %s", lsql, op, rsql), append(lparams, rparams...), nil
}

// compileOperand compiles a comparison operand.
// CRITICAL: Values are NEVER interpolated - always parameterized.
func (c *SQLCompiler) compileOperand(operand predicate.Comparable) (string, []any, error) {
	switch o := operand.(type) {
	case temporal.Constant:
		return "?", []any{o.Millis}, nil
	case temporal.Literal:
		return "?", []any{o.Millis}, nil
	case temporal.Selector:
		if o.IsGlobal() {
			return "", nil, fmt.Errorf("%w: %s", ErrGlobalSelector, o)
		}
		return c.Column(o.Variable, o.Field), nil, nil
	case temporal.Min:
		return c.compileCall("MIN", o.Args())
	case temporal.Max:
		return c.compileCall("MAX", o.Args())
	case temporal.Duration:
		from, fparams, err := c.compileOperand(o.From)
		if err != nil {
			return "", nil, err
		}
		to, tparams, err := c.compileOperand(o.To)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("(%s - %s)", to, from), append(tparams, fparams...), nil
	case predicate.PropertySelector:
		sql, params := c.Property(o.Variable, o.Key)
		return sql, params, nil
	case predicate.Literal:
		param, err := literalToParam(o)
		if err != nil {
			return "", nil, err
		}
		return "?", []any{param}, nil
	default:
		return "", nil, fmt.Errorf("unsupported operand type: %T", operand)
	}
}

// compileCall compiles a SQLite multi-argument scalar MIN/MAX.
func (c *SQLCompiler) compileCall(fn string, args []temporal.TimePoint) (string, []any, error) {
	parts := make([]string, len(args))
	var params []any
	for i, arg := range args {
		sql, argParams, err := c.compileOperand(arg)
		if err != nil {
			return "", nil, err
		}
		parts[i] = sql
		params = append(params, argParams...)
	}
	return fn + "(" + strings.Join(parts, ", ") + ")", params, nil
}

// sqlOperator maps a comparator to its SQL spelling.
func sqlOperator(op predicate.Comparator) (string, error) {
	switch op {
	case predicate.EQ:
		return "=", nil
	case predicate.NEQ:
		return "<>", nil
	case predicate.LT:
		return "<", nil
	case predicate.LTE:
		return "<=", nil
	case predicate.GT:
		return ">", nil
	case predicate.GTE:
		return ">=", nil
	default:
		return "", fmt.Errorf("unsupported comparator: %s", op)
	}
}

// literalToParam converts a predicate.Literal to a Go native SQL parameter.
// Supports string, integers and bool.
func literalToParam(l predicate.Literal) (any, error) {
	switch v := l.Value.(type) {
	case string:
		return v, nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case bool:
		return v, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported literal type for SQL parameter: %T", l.Value)
	}
}
