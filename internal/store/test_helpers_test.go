package store

import (
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temporary directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestElement creates an element with the given intervals and no
// properties.
func createTestElement(id, label string, valFrom, valTo, txFrom, txTo int64) Element {
	return Element{
		ID:    id,
		Label: label,
		Valid: Interval{From: valFrom, To: valTo},
		Tx:    Interval{From: txFrom, To: txTo},
	}
}
