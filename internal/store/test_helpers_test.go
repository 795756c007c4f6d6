package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temp directory.
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

// createTestSession registers a session or fails the test.
func createTestSession(t *testing.T, s *Store, id string, seq int64) {
	t.Helper()
	if err := s.WriteSession(context.Background(), id, seq); err != nil {
		t.Fatalf("WriteSession(%q) failed: %v", id, err)
	}
}
