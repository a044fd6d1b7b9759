package codec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads a document from path, choosing the decoder by extension:
// .yaml, .yml and .json decode as YAML, .cue as CUE.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	var doc *Document
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
		doc, err = DecodeYAML(data)
	case ".cue":
		doc, err = DecodeCUE(data, path)
	default:
		return nil, fmt.Errorf("load %s: unsupported file extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}
