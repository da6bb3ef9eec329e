package taskerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	withCause := New(StepFailed, "insert failed", fmt.Errorf("UNIQUE constraint"))
	if got, want := withCause.Error(), "StepFailed: insert failed: UNIQUE constraint"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	bare := New(EmptyID, "slug must not be empty", nil)
	if got, want := bare.Error(), "EmptyID: slug must not be empty"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := New(OpenFailed, "open db", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestErrorIsMatchesByKindOnly(t *testing.T) {
	a := New(CycleDetected, "task-a blocks task-b blocks task-a", nil)
	b := Newf(CycleDetected, nil, "different message entirely")

	if !errors.Is(a, b) {
		t.Error("errors.Is should match two *Error values with the same Kind regardless of message")
	}

	c := New(InvalidData, "task-a blocks task-b blocks task-a", nil)
	if errors.Is(a, c) {
		t.Error("errors.Is should not match different Kinds")
	}
}

func TestErrorIsAgainstSentinel(t *testing.T) {
	err := Newf(CycleDetected, nil, "adding edge would create a cycle: %s -> %s", "t1", "t2")
	if !errors.Is(err, Sentinel(CycleDetected)) {
		t.Error("errors.Is should match against Sentinel(CycleDetected)")
	}
	if errors.Is(err, Sentinel(InvalidInput)) {
		t.Error("errors.Is should not match a different sentinel kind")
	}
}

func TestKindOf(t *testing.T) {
	err := New(NotAWorkspace, "no .taskmesh directory found", nil)
	wrapped := fmt.Errorf("discover: %w", err)

	kind, ok := KindOf(wrapped)
	if !ok {
		t.Fatal("KindOf should find the Kind through fmt.Errorf wrapping")
	}
	if kind != NotAWorkspace {
		t.Errorf("KindOf() = %v, want %v", kind, NotAWorkspace)
	}

	if _, ok := KindOf(fmt.Errorf("plain error")); ok {
		t.Error("KindOf should return false for an error that is not a *Error")
	}
}

func TestKindString(t *testing.T) {
	cases := []struct {
		kind Kind
		want string
	}{
		{OpenFailed, "OpenFailed"},
		{CycleDetected, "CycleDetected"},
		{AlreadyInWorkspace, "AlreadyInWorkspace"},
		{Kind(999), "Unknown"},
	}
	for _, c := range cases {
		if got := c.kind.String(); got != c.want {
			t.Errorf("Kind(%d).String() = %q, want %q", c.kind, got, c.want)
		}
	}
}
