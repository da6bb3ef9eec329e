package sqlite

import (
	"context"
	"testing"

	"github.com/taskmesh/taskmesh/internal/taskerr"
	"github.com/taskmesh/taskmesh/internal/types"
)

// StartTask's update is an unconditional WHERE status='open' transition: it
// does not re-validate blockers, so a task may start even with an incomplete
// blocker still outstanding (scheduling which tasks are safe to start is a
// concern for ReadyTasks, not StartTask).
func TestStartTaskSucceedsWithIncompleteBlocker(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreatePlan(t, s, "plan-a", "A")
	blocker := mustCreateTask(t, s, "plan-a", "blocker")
	dependent := mustCreateTask(t, s, "plan-a", "dependent")
	if err := s.AddDependency(ctx, dependent, blocker, "tester"); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}

	if err := s.StartTask(ctx, dependent, "tester"); err != nil {
		t.Fatalf("StartTask: %v", err)
	}
	task, ok, err := s.GetTask(ctx, dependent)
	if err != nil || !ok {
		t.Fatalf("GetTask: ok=%v err=%v", ok, err)
	}
	if task.Status != types.StatusInProgress || task.StartedAt == nil {
		t.Errorf("task after start = %+v, want in_progress with StartedAt set", task)
	}
}

func TestStartTaskRefusedForUnknownTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.StartTask(ctx, 999999, "tester")
	if err == nil {
		t.Fatal("expected error starting a task that does not exist")
	}
	if kind, ok := taskerr.KindOf(err); !ok || kind != taskerr.InvalidData {
		t.Errorf("kind = %v, want InvalidData", kind)
	}
}

func TestStartTaskRefusedWhenNotOpen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreatePlan(t, s, "plan-a", "A")
	id := mustCreateTask(t, s, "plan-a", "task")
	if err := s.StartTask(ctx, id, "tester"); err != nil {
		t.Fatalf("StartTask: %v", err)
	}

	err := s.StartTask(ctx, id, "tester")
	if err == nil {
		t.Fatal("expected error starting an already in_progress task")
	}
}

func TestCompleteTaskRefusedWhenAlreadyCompleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreatePlan(t, s, "plan-a", "A")
	id := mustCreateTask(t, s, "plan-a", "task")
	if err := s.CompleteTask(ctx, id, "tester"); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	err := s.CompleteTask(ctx, id, "tester")
	if err == nil {
		t.Fatal("expected error completing an already completed task")
	}
	if kind, ok := taskerr.KindOf(err); !ok || kind != taskerr.InvalidData {
		t.Errorf("kind = %v, want InvalidData", kind)
	}
}

func TestCompleteTaskFromOpenStampsBothTimestamps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreatePlan(t, s, "plan-a", "A")
	id := mustCreateTask(t, s, "plan-a", "task")

	if err := s.CompleteTask(ctx, id, "tester"); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	task, ok, err := s.GetTask(ctx, id)
	if err != nil || !ok {
		t.Fatalf("GetTask: ok=%v err=%v", ok, err)
	}
	if task.StartedAt == nil || task.CompletedAt == nil {
		t.Errorf("task = %+v, want both StartedAt and CompletedAt set", task)
	}
}

func TestCompleteBulkSkipsAlreadyCompleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreatePlan(t, s, "plan-a", "A")
	id1 := mustCreateTask(t, s, "plan-a", "one")
	id2 := mustCreateTask(t, s, "plan-a", "two")
	if err := s.CompleteTask(ctx, id1, "tester"); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	n, err := s.CompleteBulk(ctx, []int64{id1, id2}, "tester")
	if err != nil {
		t.Fatalf("CompleteBulk: %v", err)
	}
	if n != 1 {
		t.Errorf("CompleteBulk transitioned %d tasks, want 1 (id1 already completed)", n)
	}

	events, err := s.GetEvents(ctx, "plan-a:001", 10)
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	completedCount := 0
	for _, e := range events {
		if e.EventType == "completed" {
			completedCount++
		}
	}
	if completedCount != 1 {
		t.Errorf("got %d 'completed' events for id1, want exactly 1 (no duplicate on the CompleteBulk skip)", completedCount)
	}
}

func TestCompleteBulkRejectsEmptyOrOversized(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CompleteBulk(ctx, nil, "tester"); err == nil {
		t.Error("expected error for empty id list")
	}

	oversized := make([]int64, 1001)
	if _, err := s.CompleteBulk(ctx, oversized, "tester"); err == nil {
		t.Error("expected error for over 1000 ids")
	}
}
