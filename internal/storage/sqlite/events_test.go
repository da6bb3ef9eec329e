package sqlite

import (
	"context"
	"testing"

	"github.com/taskmesh/taskmesh/internal/types"
)

func TestGetEventsOrderedNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreatePlan(t, s, "plan-a", "A")
	id := mustCreateTask(t, s, "plan-a", "task")
	if err := s.StartTask(ctx, id, "alice"); err != nil {
		t.Fatalf("StartTask: %v", err)
	}
	if err := s.CompleteTask(ctx, id, "alice"); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	events, err := s.GetEvents(ctx, "plan-a:001", 10)
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3 (created, started, completed)", len(events))
	}
	// newest first
	if events[0].EventType != "completed" || events[1].EventType != "started" || events[2].EventType != "created" {
		t.Errorf("event order = [%s, %s, %s], want [completed, started, created]",
			events[0].EventType, events[1].EventType, events[2].EventType)
	}
	for _, e := range events {
		if e.EntityType != types.EntityTask {
			t.Errorf("event %+v has EntityType %v, want EntityTask", e, e.EntityType)
		}
		if e.Actor != "alice" && e.EventType != "created" {
			t.Errorf("event %+v actor = %q, want alice", e, e.Actor)
		}
	}
}

func TestGetEventsRespectsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreatePlan(t, s, "plan-a", "A")
	id := mustCreateTask(t, s, "plan-a", "task")
	if err := s.StartTask(ctx, id, "alice"); err != nil {
		t.Fatalf("StartTask: %v", err)
	}
	if err := s.CompleteTask(ctx, id, "alice"); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	events, err := s.GetEvents(ctx, "plan-a:001", 1)
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].EventType != "completed" {
		t.Errorf("events[0].EventType = %q, want completed (newest)", events[0].EventType)
	}
}

func TestGetEventsEmptyForUnknownTask(t *testing.T) {
	s := newTestStore(t)
	events, err := s.GetEvents(context.Background(), "no-such-plan:001", 10)
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}
