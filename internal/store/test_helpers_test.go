package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/partialsql/internal/testutil"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// createTestStore creates a new store with deterministic ids and time.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(testutil.NewSequentialIDs().Next),
		WithClock(func() time.Time { return fixedTime }),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// successRecord builds a successful translation record.
func successRecord(digest, where string) Translation {
	return Translation{
		Query:         "data.goals.allow",
		PayloadDigest: digest,
		WhereClause:   where,
	}
}

// failureRecord builds a failed translation record.
func failureRecord(digest, kind string) Translation {
	return Translation{
		Query:         "data.goals.allow",
		PayloadDigest: digest,
		ErrorKind:     kind,
		ErrorMessage:  kind + ": test failure",
	}
}
