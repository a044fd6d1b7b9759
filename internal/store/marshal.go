package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalProperties converts element properties to JSON TEXT for storage.
// Go's json.Marshal sorts map keys, so output is deterministic.
func marshalProperties(props map[string]any) (string, error) {
	if len(props) == 0 {
		return "{}", nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(props); err != nil {
		return "", fmt.Errorf("marshal properties: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalProperties parses JSON TEXT to element properties.
// Integers decode to int64 to avoid float64 precision loss for values > 2^53.
func unmarshalProperties(data string) (map[string]any, error) {
	props := map[string]any{}
	if data == "" || data == "{}" {
		return props, nil
	}

	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&props); err != nil {
		return nil, fmt.Errorf("unmarshal properties: %w", err)
	}
	for k, v := range props {
		props[k] = fromNumber(v)
	}
	return props, nil
}

func fromNumber(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		for i := range x {
			x[i] = fromNumber(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = fromNumber(x[k])
		}
		return x
	default:
		return v
	}
}
