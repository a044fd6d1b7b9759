package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/tpgm/internal/predicate"
	"github.com/roach88/tpgm/internal/temporal"
)

// MarshalCanonical encodes a predicate tree as canonical JSON.
//
// The encoding uses the document node shape with:
//  1. Object keys sorted (all keys are ASCII, so byte order equals the
//     RFC 8785 UTF-16 order)
//  2. No HTML escaping
//  3. NFC-normalized strings
//  4. Times as epoch milliseconds
//  5. Min and Max arguments sorted by their encoding
//  6. No floats (returns error)
func MarshalCanonical(p predicate.Predicate) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("cannot marshal nil predicate")
	}
	var buf bytes.Buffer
	if err := writePredicate(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalCanonical decodes a tree written by MarshalCanonical. Any JSON in
// the document node shape is accepted.
func UnmarshalCanonical(data []byte) (predicate.Predicate, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var node any
	if err := dec.Decode(&node); err != nil {
		return nil, &DecodeError{Message: fmt.Sprintf("json: %v", err), Err: err}
	}
	node, err := fromJSONNumbers(node)
	if err != nil {
		return nil, err
	}
	return decodePredicate(node, "$")
}

func writePredicate(buf *bytes.Buffer, p predicate.Predicate) error {
	switch pred := p.(type) {
	case predicate.And:
		return writeBinary(buf, "and", pred.Left, pred.Right)
	case predicate.Or:
		return writeBinary(buf, "or", pred.Left, pred.Right)
	case predicate.Not:
		buf.WriteString(`{"not":`)
		if err := writePredicate(buf, pred.Operand); err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	case predicate.Comparison:
		buf.WriteString(`{"compare":{"lhs":`)
		if err := writeOperand(buf, pred.Lhs); err != nil {
			return err
		}
		buf.WriteString(`,"op":`)
		writeString(buf, pred.Op.String())
		buf.WriteString(`,"rhs":`)
		if err := writeOperand(buf, pred.Rhs); err != nil {
			return err
		}
		buf.WriteString("}}")
		return nil
	default:
		return fmt.Errorf("unsupported predicate type for canonical JSON: %T", p)
	}
}

func writeBinary(buf *bytes.Buffer, kind string, left, right predicate.Predicate) error {
	buf.WriteString(`{"` + kind + `":[`)
	if err := writePredicate(buf, left); err != nil {
		return err
	}
	buf.WriteByte(',')
	if err := writePredicate(buf, right); err != nil {
		return err
	}
	buf.WriteString("]}")
	return nil
}

func writeOperand(buf *bytes.Buffer, c predicate.Comparable) error {
	switch o := c.(type) {
	case temporal.Constant:
		fmt.Fprintf(buf, `{"constant":%d}`, o.Millis)
	case temporal.Literal:
		fmt.Fprintf(buf, `{"literal":%d}`, o.Millis)
	case temporal.Selector:
		buf.WriteString(`{"selector":{"field":`)
		writeString(buf, strings.ToLower(o.Field.String()))
		if !o.IsGlobal() {
			buf.WriteString(`,"variable":`)
			writeString(buf, o.Variable)
		}
		buf.WriteString("}}")
	case temporal.Min:
		return writeTerm(buf, "min", o.Args())
	case temporal.Max:
		return writeTerm(buf, "max", o.Args())
	case temporal.Duration:
		buf.WriteString(`{"duration":{"from":`)
		if err := writeOperand(buf, o.From); err != nil {
			return err
		}
		buf.WriteString(`,"to":`)
		if err := writeOperand(buf, o.To); err != nil {
			return err
		}
		buf.WriteString("}}")
	case predicate.PropertySelector:
		buf.WriteString(`{"property":{"key":`)
		writeString(buf, o.Key)
		buf.WriteString(`,"variable":`)
		writeString(buf, o.Variable)
		buf.WriteString("}}")
	case predicate.Literal:
		buf.WriteString(`{"value":`)
		if err := writeValue(buf, o.Value); err != nil {
			return err
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported operand type for canonical JSON: %T", c)
	}
	return nil
}

// writeTerm writes a Min or Max node with its argument encodings sorted,
// which makes the encoding independent of argument order.
func writeTerm(buf *bytes.Buffer, kind string, args []temporal.TimePoint) error {
	encoded := make([][]byte, len(args))
	for i, arg := range args {
		var b bytes.Buffer
		if err := writeOperand(&b, arg); err != nil {
			return fmt.Errorf("%s[%d]: %w", kind, i, err)
		}
		encoded[i] = b.Bytes()
	}
	sort.Slice(encoded, func(i, j int) bool {
		return bytes.Compare(encoded[i], encoded[j]) < 0
	})

	buf.WriteString(`{"` + kind + `":[`)
	buf.Write(bytes.Join(encoded, []byte(",")))
	buf.WriteString("]}")
	return nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case string:
		writeString(buf, val)
	case bool:
		fmt.Fprintf(buf, "%t", val)
	case int:
		fmt.Fprintf(buf, "%d", val)
	case int64:
		fmt.Fprintf(buf, "%d", val)
	case float32, float64:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return fmt.Errorf("unsupported value type for canonical JSON: %T", v)
	}
	return nil
}

// writeString writes a JSON string with NFC normalization and without HTML
// escaping. U+2028 and U+2029 are written literally.
func writeString(buf *bytes.Buffer, s string) {
	normalized := norm.NFC.String(s)

	buf.WriteByte('"')
	for _, r := range normalized {
		switch {
		case r == '"':
			buf.WriteString(`\"`)
		case r == '\\':
			buf.WriteString(`\\`)
		case r == '\b':
			buf.WriteString(`\b`)
		case r == '\f':
			buf.WriteString(`\f`)
		case r == '\n':
			buf.WriteString(`\n`)
		case r == '\r':
			buf.WriteString(`\r`)
		case r == '\t':
			buf.WriteString(`\t`)
		case r < 0x20:
			fmt.Fprintf(buf, `\u%04x`, r)
		default:
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}

// fromJSONNumbers converts json.Number leaves to int64, rejecting floats.
func fromJSONNumbers(node any) (any, error) {
	switch v := node.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, errorf("", "floats are forbidden in canonical JSON: %s", v)
		}
		return n, nil
	case []any:
		for i := range v {
			item, err := fromJSONNumbers(v[i])
			if err != nil {
				return nil, err
			}
			v[i] = item
		}
		return v, nil
	case map[string]any:
		for k := range v {
			item, err := fromJSONNumbers(v[k])
			if err != nil {
				return nil, err
			}
			v[k] = item
		}
		return v, nil
	default:
		return v, nil
	}
}
