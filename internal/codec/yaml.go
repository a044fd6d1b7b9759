package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DecodeYAML decodes a query document from YAML (or JSON) source.
func DecodeYAML(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var node any
	if err := dec.Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errorf("", "empty document")
		}
		return nil, &DecodeError{Message: fmt.Sprintf("yaml: %v", err), Err: err}
	}

	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errorf("", "expected a single YAML document")
	}

	return decodeDocument(node)
}
