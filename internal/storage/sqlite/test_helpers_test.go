package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

// newTestStore opens an isolated, schema-initialized store under t.TempDir().
// Mirrors the teacher's own newTestStore helper (cmd/bd/test_helpers_test.go):
// every test gets a throwaway database, never a shared or production one.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustCreatePlan creates a plan and fails the test on error.
func mustCreatePlan(t *testing.T, s *Store, slug, title string) {
	t.Helper()
	if _, err := s.CreatePlan(context.Background(), slug, title, "", nil, "tester"); err != nil {
		t.Fatalf("CreatePlan(%q): %v", slug, err)
	}
}

// mustCreateTask creates a task and fails the test on error, returning the
// internal task id.
func mustCreateTask(t *testing.T, s *Store, planSlug, title string) int64 {
	t.Helper()
	id, _, err := s.CreateTask(context.Background(), planSlug, title, "", "tester")
	if err != nil {
		t.Fatalf("CreateTask(%q, %q): %v", planSlug, title, err)
	}
	return id
}
