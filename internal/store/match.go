package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/tpgm/internal/predicate"
	"github.com/roach88/tpgm/internal/querysql"
	"github.com/roach88/tpgm/internal/temporal"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Match returns every assignment of elements to the bound variables that
// satisfies where. A nil where matches the full cross product.
//
// where must not contain global selectors and may only mention bound
// variables.
func (s *Store) Match(ctx context.Context, bindings []Binding, where predicate.Predicate) ([]Embedding, error) {
	query, params, err := matchQuery(bindings, where)
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("match: query: %w", err)
	}
	defer rows.Close()

	embeddings := []Embedding{}
	ids := make([]string, len(bindings))
	dest := make([]any, len(bindings))
	for i := range ids {
		dest[i] = &ids[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("match: scan: %w", err)
		}
		m := make(Embedding, len(bindings))
		for i, b := range bindings {
			m[b.Variable] = ids[i]
		}
		embeddings = append(embeddings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("match: iterate: %w", err)
	}
	return embeddings, nil
}

// matchQuery builds the SELECT over one elements alias per binding.
func matchQuery(bindings []Binding, where predicate.Predicate) (string, []any, error) {
	if len(bindings) == 0 {
		return "", nil, fmt.Errorf("no bindings")
	}

	bound := make(map[string]bool, len(bindings))
	var (
		selects []string
		froms   []string
		conds   []string
		orders  []string
		params  []any
	)
	for _, b := range bindings {
		if !identifier.MatchString(b.Variable) {
			return "", nil, fmt.Errorf("invalid variable name %q", b.Variable)
		}
		if bound[b.Variable] {
			return "", nil, fmt.Errorf("variable %q bound twice", b.Variable)
		}
		bound[b.Variable] = true

		alias := quoteIdent(b.Variable)
		selects = append(selects, alias+".id")
		froms = append(froms, "elements AS "+alias)
		orders = append(orders, alias+".id COLLATE BINARY ASC")
		if b.Label != "" {
			conds = append(conds, alias+".label = ?")
			params = append(params, b.Label)
		}
	}

	if where != nil {
		if where.IsGlobal() {
			return "", nil, fmt.Errorf("%w: %s", querysql.ErrGlobalSelector, where)
		}
		for _, v := range where.Variables() {
			if !bound[v] {
				return "", nil, fmt.Errorf("predicate mentions unbound variable %q", v)
			}
		}
		if err := checkPropertyKeys(where); err != nil {
			return "", nil, err
		}

		sql, whereParams, err := newCompiler().Compile(where)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, sql)
		params = append(params, whereParams...)
	}

	query := "SELECT " + strings.Join(selects, ", ") +
		" FROM " + strings.Join(froms, " CROSS JOIN ")
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + strings.Join(orders, ", ")
	return query, params, nil
}

// newCompiler maps time fields to alias columns and properties to a JSON
// lookup with a bound path.
func newCompiler() *querysql.SQLCompiler {
	return &querysql.SQLCompiler{
		Column: func(variable string, field temporal.TimeField) string {
			return quoteIdent(variable) + "." + strings.ToLower(field.String())
		},
		Property: func(variable, key string) (string, []any) {
			return "json_extract(" + quoteIdent(variable) + ".properties, ?)", []any{"$." + key}
		},
	}
}

func checkPropertyKeys(p predicate.Predicate) error {
	switch pred := p.(type) {
	case predicate.And:
		if err := checkPropertyKeys(pred.Left); err != nil {
			return err
		}
		return checkPropertyKeys(pred.Right)
	case predicate.Or:
		if err := checkPropertyKeys(pred.Left); err != nil {
			return err
		}
		return checkPropertyKeys(pred.Right)
	case predicate.Not:
		return checkPropertyKeys(pred.Operand)
	case predicate.Comparison:
		for _, operand := range []predicate.Comparable{pred.Lhs, pred.Rhs} {
			if ps, ok := operand.(predicate.PropertySelector); ok && !identifier.MatchString(ps.Key) {
				return fmt.Errorf("invalid property key %q", ps.Key)
			}
		}
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
