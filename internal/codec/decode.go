package codec

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"cuelang.org/go/cue/token"

	"github.com/roach88/tpgm/internal/predicate"
	"github.com/roach88/tpgm/internal/store"
	"github.com/roach88/tpgm/internal/temporal"
)

// Document is a decoded query document.
type Document struct {
	Name       string
	Variables  []string
	Bindings   []store.Binding
	Predicates []predicate.Predicate
	Elements   []store.Element
}

// Predicate returns the conjunction of the document's predicates, or nil
// when it has none.
func (d *Document) Predicate() predicate.Predicate {
	if len(d.Predicates) == 0 {
		return nil
	}
	p, _ := predicate.AllOf(d.Predicates...)
	return p
}

// PatternVariables returns the variables of the query pattern: the declared
// variables, else the bound variables, else the sorted local variables
// mentioned by the predicates.
func (d *Document) PatternVariables() []string {
	if len(d.Variables) > 0 {
		return slices.Clone(d.Variables)
	}
	if len(d.Bindings) > 0 {
		vars := make([]string, len(d.Bindings))
		for i, b := range d.Bindings {
			vars[i] = b.Variable
		}
		return vars
	}
	var vars []string
	for _, p := range d.Predicates {
		for _, v := range p.Variables() {
			if v != temporal.GlobalVariable {
				vars = append(vars, v)
			}
		}
	}
	return predicate.UnionVariables(vars)
}

// DecodeError reports a malformed node. Path locates the node inside the
// document, e.g. predicates[1].compare.lhs.
type DecodeError struct {
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *DecodeError) Error() string {
	loc := e.Path
	if e.Pos.IsValid() {
		loc = fmt.Sprintf("%s:%d:%d", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
		if e.Path != "" {
			loc += ": " + e.Path
		}
	}
	if loc == "" {
		return e.Message
	}
	return loc + ": " + e.Message
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func errorf(path, format string, args ...any) *DecodeError {
	return &DecodeError{Path: path, Message: fmt.Sprintf(format, args...)}
}

func wrap(path string, err error) *DecodeError {
	var de *DecodeError
	if errors.As(err, &de) {
		return de
	}
	return &DecodeError{Path: path, Message: err.Error(), Err: err}
}

// decodeDocument builds a Document from a generic tree of maps, slices and
// scalars as produced by the YAML and CUE front ends.
func decodeDocument(node any) (*Document, error) {
	m, ok := node.(map[string]any)
	if !ok {
		return nil, errorf("", "document must be a mapping, got %s", kindOf(node))
	}
	if err := allowKeys(m, "", "name", "variables", "bindings", "predicates", "elements"); err != nil {
		return nil, err
	}

	doc := &Document{}
	var err error
	if v, ok := m["name"]; ok {
		if doc.Name, err = stringField(v, "name"); err != nil {
			return nil, err
		}
	}
	if v, ok := m["variables"]; ok {
		items, err := listField(v, "variables")
		if err != nil {
			return nil, err
		}
		for i, item := range items {
			name, err := stringField(item, index("variables", i))
			if err != nil {
				return nil, err
			}
			doc.Variables = append(doc.Variables, name)
		}
	}
	if v, ok := m["bindings"]; ok {
		items, err := listField(v, "bindings")
		if err != nil {
			return nil, err
		}
		for i, item := range items {
			b, err := decodeBinding(item, index("bindings", i))
			if err != nil {
				return nil, err
			}
			doc.Bindings = append(doc.Bindings, b)
		}
	}
	if v, ok := m["predicates"]; ok {
		items, err := listField(v, "predicates")
		if err != nil {
			return nil, err
		}
		for i, item := range items {
			p, err := decodePredicate(item, index("predicates", i))
			if err != nil {
				return nil, err
			}
			doc.Predicates = append(doc.Predicates, p)
		}
	}
	if v, ok := m["elements"]; ok {
		items, err := listField(v, "elements")
		if err != nil {
			return nil, err
		}
		for i, item := range items {
			e, err := decodeElement(item, index("elements", i))
			if err != nil {
				return nil, err
			}
			doc.Elements = append(doc.Elements, e)
		}
	}
	return doc, nil
}

// decodePredicate decodes a node holding exactly one of compare, and, or,
// not.
func decodePredicate(node any, path string) (predicate.Predicate, error) {
	kind, body, err := single(node, path, "compare", "and", "or", "not")
	if err != nil {
		return nil, err
	}
	path += "." + kind

	switch kind {
	case "compare":
		return decodeComparison(body, path)
	case "not":
		p, err := decodePredicate(body, path)
		if err != nil {
			return nil, err
		}
		return predicate.NewNot(p), nil
	default:
		items, err := listField(body, path)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, errorf(path, "needs at least one predicate")
		}
		ps := make([]predicate.Predicate, len(items))
		for i, item := range items {
			if ps[i], err = decodePredicate(item, index(path, i)); err != nil {
				return nil, err
			}
		}
		if kind == "and" {
			return predicate.AllOf(ps...)
		}
		return predicate.AnyOf(ps...)
	}
}

func decodeComparison(node any, path string) (predicate.Predicate, error) {
	m, err := mapField(node, path)
	if err != nil {
		return nil, err
	}
	if err := requireKeys(m, path, "lhs", "op", "rhs"); err != nil {
		return nil, err
	}
	if err := allowKeys(m, path, "lhs", "op", "rhs"); err != nil {
		return nil, err
	}

	lhs, err := decodeOperand(m["lhs"], path+".lhs")
	if err != nil {
		return nil, err
	}
	opText, err := stringField(m["op"], path+".op")
	if err != nil {
		return nil, err
	}
	op, err := predicate.ParseComparator(opText)
	if err != nil {
		return nil, wrap(path+".op", err)
	}
	rhs, err := decodeOperand(m["rhs"], path+".rhs")
	if err != nil {
		return nil, err
	}
	return predicate.NewComparison(lhs, op, rhs), nil
}

// decodeOperand decodes a comparison operand: a time point, a property
// selector or a plain value.
func decodeOperand(node any, path string) (predicate.Comparable, error) {
	kind, body, err := single(node, path,
		"constant", "literal", "selector", "min", "max", "duration", "property", "value")
	if err != nil {
		return nil, err
	}
	base := path
	path += "." + kind

	switch kind {
	case "property":
		m, err := mapField(body, path)
		if err != nil {
			return nil, err
		}
		if err := requireKeys(m, path, "variable", "key"); err != nil {
			return nil, err
		}
		variable, err := stringField(m["variable"], path+".variable")
		if err != nil {
			return nil, err
		}
		key, err := stringField(m["key"], path+".key")
		if err != nil {
			return nil, err
		}
		return predicate.NewPropertySelector(variable, key), nil
	case "value":
		v, err := scalar(body, path)
		if err != nil {
			return nil, err
		}
		return predicate.NewLiteral(v), nil
	default:
		return decodeTimePoint(node, base)
	}
}

func decodeTimePoint(node any, path string) (temporal.TimePoint, error) {
	kind, body, err := single(node, path, "constant", "literal", "selector", "min", "max", "duration")
	if err != nil {
		return nil, err
	}
	path += "." + kind

	switch kind {
	case "constant":
		if m, ok := body.(map[string]any); ok {
			return decodeSpan(m, path)
		}
		ms, err := intField(body, path)
		if err != nil {
			return nil, err
		}
		return temporal.NewConstant(ms), nil
	case "literal":
		ms, err := decodeTime(body, path)
		if err != nil {
			return nil, err
		}
		return temporal.NewLiteral(ms), nil
	case "selector":
		m, err := mapField(body, path)
		if err != nil {
			return nil, err
		}
		if err := requireKeys(m, path, "field"); err != nil {
			return nil, err
		}
		if err := allowKeys(m, path, "variable", "field"); err != nil {
			return nil, err
		}
		field, err := stringField(m["field"], path+".field")
		if err != nil {
			return nil, err
		}
		var variable string
		if v, ok := m["variable"]; ok {
			if variable, err = stringField(v, path+".variable"); err != nil {
				return nil, err
			}
		}
		sel, err := temporal.ParseSelector(variable, field)
		if err != nil {
			return nil, wrap(path, err)
		}
		return sel, nil
	case "min", "max":
		items, err := listField(body, path)
		if err != nil {
			return nil, err
		}
		args := make([]temporal.TimePoint, len(items))
		for i, item := range items {
			if args[i], err = decodeTimePoint(item, index(path, i)); err != nil {
				return nil, err
			}
		}
		if kind == "min" {
			m, err := temporal.NewMin(args...)
			if err != nil {
				return nil, wrap(path, err)
			}
			return m, nil
		}
		m, err := temporal.NewMax(args...)
		if err != nil {
			return nil, wrap(path, err)
		}
		return m, nil
	default:
		m, err := mapField(body, path)
		if err != nil {
			return nil, err
		}
		if err := requireKeys(m, path, "from", "to"); err != nil {
			return nil, err
		}
		from, err := decodeTimePoint(m["from"], path+".from")
		if err != nil {
			return nil, err
		}
		to, err := decodeTimePoint(m["to"], path+".to")
		if err != nil {
			return nil, err
		}
		d, err := temporal.NewDuration(from, to)
		if err != nil {
			return nil, wrap(path, err)
		}
		return d, nil
	}
}

func decodeSpan(m map[string]any, path string) (temporal.Constant, error) {
	if err := allowKeys(m, path, "days", "hours", "minutes", "seconds", "millis"); err != nil {
		return temporal.Constant{}, err
	}
	var parts [5]int
	for i, key := range []string{"days", "hours", "minutes", "seconds", "millis"} {
		v, ok := m[key]
		if !ok {
			continue
		}
		n, err := intField(v, path+"."+key)
		if err != nil {
			return temporal.Constant{}, err
		}
		if n > math.MaxInt32 || n < math.MinInt32 {
			return temporal.Constant{}, errorf(path+"."+key, "%d is out of range", n)
		}
		parts[i] = int(n)
	}
	return temporal.ConstantOf(parts[0], parts[1], parts[2], parts[3], parts[4]), nil
}

// decodeTime accepts epoch milliseconds or a literal string.
func decodeTime(node any, path string) (int64, error) {
	if s, ok := node.(string); ok {
		l, err := temporal.ParseLiteral(s)
		if err != nil {
			return 0, wrap(path, err)
		}
		return l.Millis, nil
	}
	return intField(node, path)
}

func decodeBinding(node any, path string) (store.Binding, error) {
	m, err := mapField(node, path)
	if err != nil {
		return store.Binding{}, err
	}
	if err := requireKeys(m, path, "variable"); err != nil {
		return store.Binding{}, err
	}
	if err := allowKeys(m, path, "variable", "label"); err != nil {
		return store.Binding{}, err
	}
	var b store.Binding
	if b.Variable, err = stringField(m["variable"], path+".variable"); err != nil {
		return store.Binding{}, err
	}
	if v, ok := m["label"]; ok {
		if b.Label, err = stringField(v, path+".label"); err != nil {
			return store.Binding{}, err
		}
	}
	return b, nil
}

func decodeElement(node any, path string) (store.Element, error) {
	m, err := mapField(node, path)
	if err != nil {
		return store.Element{}, err
	}
	if err := requireKeys(m, path, "id", "label"); err != nil {
		return store.Element{}, err
	}
	if err := allowKeys(m, path, "id", "label", "valid", "tx", "properties"); err != nil {
		return store.Element{}, err
	}

	e := store.Element{Valid: store.Unbounded(), Tx: store.Unbounded()}
	if e.ID, err = stringField(m["id"], path+".id"); err != nil {
		return store.Element{}, err
	}
	if e.Label, err = stringField(m["label"], path+".label"); err != nil {
		return store.Element{}, err
	}
	if v, ok := m["valid"]; ok {
		if e.Valid, err = decodeInterval(v, path+".valid"); err != nil {
			return store.Element{}, err
		}
	}
	if v, ok := m["tx"]; ok {
		if e.Tx, err = decodeInterval(v, path+".tx"); err != nil {
			return store.Element{}, err
		}
	}
	if v, ok := m["properties"]; ok {
		props, err := mapField(v, path+".properties")
		if err != nil {
			return store.Element{}, err
		}
		e.Properties = make(map[string]any, len(props))
		for k, pv := range props {
			if e.Properties[k], err = normalize(pv, path+".properties."+k); err != nil {
				return store.Element{}, err
			}
		}
	}
	return e, nil
}

func decodeInterval(node any, path string) (store.Interval, error) {
	m, err := mapField(node, path)
	if err != nil {
		return store.Interval{}, err
	}
	if err := allowKeys(m, path, "from", "to"); err != nil {
		return store.Interval{}, err
	}
	iv := store.Unbounded()
	if v, ok := m["from"]; ok {
		if iv.From, err = decodeTime(v, path+".from"); err != nil {
			return store.Interval{}, err
		}
	}
	if v, ok := m["to"]; ok {
		if iv.To, err = decodeTime(v, path+".to"); err != nil {
			return store.Interval{}, err
		}
	}
	if err := iv.Validate(); err != nil {
		return store.Interval{}, wrap(path, err)
	}
	return iv, nil
}

// single checks that node is a mapping with exactly one key out of kinds.
func single(node any, path string, kinds ...string) (string, any, error) {
	m, ok := node.(map[string]any)
	if !ok {
		return "", nil, errorf(path, "expected one of %v, got %s", kinds, kindOf(node))
	}
	if len(m) != 1 {
		return "", nil, errorf(path, "expected exactly one of %v, got %d keys", kinds, len(m))
	}
	var (
		kind string
		body any
	)
	for k, v := range m {
		kind, body = k, v
	}
	if !slices.Contains(kinds, kind) {
		return "", nil, errorf(path, "unknown node %q, expected one of %v", kind, kinds)
	}
	return kind, body, nil
}

func allowKeys(m map[string]any, path string, allowed ...string) error {
	var unknown []string
	for k := range m {
		if !slices.Contains(allowed, k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errorf(path, "unknown keys %v", unknown)
	}
	return nil
}

func requireKeys(m map[string]any, path string, required ...string) error {
	for _, k := range required {
		if _, ok := m[k]; !ok {
			return errorf(path, "missing %q", k)
		}
	}
	return nil
}

func mapField(node any, path string) (map[string]any, error) {
	m, ok := node.(map[string]any)
	if !ok {
		return nil, errorf(path, "expected a mapping, got %s", kindOf(node))
	}
	return m, nil
}

func listField(node any, path string) ([]any, error) {
	l, ok := node.([]any)
	if !ok {
		return nil, errorf(path, "expected a list, got %s", kindOf(node))
	}
	return l, nil
}

func stringField(node any, path string) (string, error) {
	s, ok := node.(string)
	if !ok {
		return "", errorf(path, "expected a string, got %s", kindOf(node))
	}
	return s, nil
}

func intField(node any, path string) (int64, error) {
	switch n := node.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, errorf(path, "%d is out of range", n)
		}
		return int64(n), nil
	default:
		return 0, errorf(path, "expected an integer, got %s", kindOf(node))
	}
}

// scalar accepts a string, integer, bool or null value.
func scalar(node any, path string) (any, error) {
	switch v := node.(type) {
	case nil, string, bool:
		return v, nil
	default:
		return intField(node, path)
	}
}

// normalize converts a property value to the store's value types.
func normalize(node any, path string) (any, error) {
	switch v := node.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			var err error
			if out[i], err = normalize(item, index(path, i)); err != nil {
				return nil, err
			}
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			var err error
			if out[k], err = normalize(item, path+"."+k); err != nil {
				return nil, err
			}
		}
		return out, nil
	case float64:
		return v, nil
	default:
		return scalar(node, path)
	}
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func kindOf(node any) string {
	switch node.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "mapping"
	case []any:
		return "list"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64, uint64:
		return "integer"
	case float64:
		return "float"
	default:
		return fmt.Sprintf("%T", node)
	}
}
