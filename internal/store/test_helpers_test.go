package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/exprtree/internal/expr"
)

// createTestStore creates a new store in a temporary directory.
// Batch ids are drawn from ids, or from UUIDv7 when none are given.
func createTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")

	var gen IDGenerator = UUIDv7Generator{}
	if len(ids) > 0 {
		gen = NewFixedGenerator(ids...)
	}
	s, err := OpenWith(path, gen)
	if err != nil {
		t.Fatalf("OpenWith() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testRecord builds a record for x with placeholder renderings.
// Takes the builder's (operand, error) pair directly and panics on error.
func testRecord(x expr.Operand, err error) Record {
	if err != nil {
		panic(err)
	}
	rec, err := NewRecord(x, x.String(), "")
	if err != nil {
		panic(err)
	}
	return rec
}
