package codec

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// DecodeCUE decodes a query document from CUE source. The source is
// unified with the #Document schema and must be concrete.
func DecodeCUE(data []byte, filename string) (*Document, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	doc := schema.LookupPath(cue.ParsePath("#Document")).Unify(v)
	if err := doc.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	node, err := cueToAny(doc)
	if err != nil {
		return nil, err
	}
	return decodeDocument(node)
}

// cueToAny converts a concrete CUE value to maps, slices and scalars.
func cueToAny(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		m := map[string]any{}
		for iter.Next() {
			item, err := cueToAny(iter.Value())
			if err != nil {
				return nil, err
			}
			m[iter.Label()] = item
		}
		return m, nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		l := []any{}
		for iter.Next() {
			item, err := cueToAny(iter.Value())
			if err != nil {
				return nil, err
			}
			l = append(l, item)
		}
		return l, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return s, nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return n, nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return f, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return b, nil
	case cue.NullKind:
		return nil, nil
	default:
		if err := v.Err(); err != nil {
			return nil, formatCUEError(err)
		}
		return nil, &DecodeError{Message: fmt.Sprintf("unsupported CUE value of kind %s", v.Kind()), Pos: v.Pos()}
	}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &DecodeError{Message: err.Error(), Err: err}
	}

	// Return first error with position info
	first := errs[0]
	de := &DecodeError{Message: first.Error(), Err: err}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		de.Pos = positions[0]
	}
	return de
}
