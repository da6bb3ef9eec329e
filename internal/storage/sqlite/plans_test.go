package sqlite

import (
	"context"
	"testing"

	"github.com/taskmesh/taskmesh/internal/taskerr"
	"github.com/taskmesh/taskmesh/internal/types"
)

func TestCreatePlan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreatePlan(ctx, "api-migration", "API migration", "move to v2", nil, "alice")
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if p.Slug != "api-migration" || p.Status != types.StatusOpen || p.TaskCounter != 0 {
		t.Errorf("CreatePlan result = %+v, unexpected", p)
	}
}

func TestCreatePlanRejectsBadSlug(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreatePlan(context.Background(), "Bad Slug", "x", "", nil, "alice")
	if err == nil {
		t.Fatal("expected error for invalid slug")
	}
	if kind, ok := taskerr.KindOf(err); !ok || kind != taskerr.InvalidKebabCase {
		t.Errorf("kind = %v, want InvalidKebabCase", kind)
	}
}

func TestCreatePlanDuplicateSlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreatePlan(t, s, "api-migration", "API migration")

	_, err := s.CreatePlan(ctx, "api-migration", "Another", "", nil, "alice")
	if err == nil {
		t.Fatal("expected error for duplicate slug")
	}
	if kind, ok := taskerr.KindOf(err); !ok || kind != taskerr.InvalidData {
		t.Errorf("kind = %v, want InvalidData", kind)
	}
}

func TestGetPlanSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreatePlan(t, s, "api-migration", "API migration")
	mustCreateTask(t, s, "api-migration", "task one")
	id2 := mustCreateTask(t, s, "api-migration", "task two")
	if err := s.CompleteTask(ctx, id2, "alice"); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	summary, ok, err := s.GetPlanSummary(ctx, "api-migration")
	if err != nil {
		t.Fatalf("GetPlanSummary: %v", err)
	}
	if !ok {
		t.Fatal("GetPlanSummary found=false, want true")
	}
	if summary.Tasks.Total != 2 || summary.Tasks.Open != 1 || summary.Tasks.Completed != 1 {
		t.Errorf("task counts = %+v, want Total=2 Open=1 Completed=1", summary.Tasks)
	}
}

func TestGetPlanSummaryNotFound(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.GetPlanSummary(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("GetPlanSummary: %v", err)
	}
	if ok {
		t.Error("found=true, want false for a nonexistent plan")
	}
}

func TestListPlansFilteredByStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreatePlan(t, s, "plan-a", "A")
	mustCreatePlan(t, s, "plan-b", "B")

	open := types.StatusOpen
	plans, err := s.ListPlans(ctx, &open)
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	if len(plans) != 2 {
		t.Errorf("got %d plans, want 2", len(plans))
	}

	inProgress := types.StatusInProgress
	plans, err = s.ListPlans(ctx, &inProgress)
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	if len(plans) != 0 {
		t.Errorf("got %d in_progress plans, want 0", len(plans))
	}
}

func TestUpdatePlanRequiresAField(t *testing.T) {
	s := newTestStore(t)
	mustCreatePlan(t, s, "plan-a", "A")
	err := s.UpdatePlan(context.Background(), "plan-a", nil, nil, "alice")
	if err == nil {
		t.Fatal("expected error when no fields are supplied")
	}
	if kind, ok := taskerr.KindOf(err); !ok || kind != taskerr.InvalidInput {
		t.Errorf("kind = %v, want InvalidInput", kind)
	}
}

func TestUpdatePlanTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreatePlan(t, s, "plan-a", "A")

	newTitle := "Renamed"
	if err := s.UpdatePlan(ctx, "plan-a", &newTitle, nil, "alice"); err != nil {
		t.Fatalf("UpdatePlan: %v", err)
	}

	p, ok, err := s.GetPlanSummary(ctx, "plan-a")
	if err != nil || !ok {
		t.Fatalf("GetPlanSummary: ok=%v err=%v", ok, err)
	}
	if p.Title != "Renamed" {
		t.Errorf("title = %q, want %q", p.Title, "Renamed")
	}
}

func TestDeletePlanCascadesToTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreatePlan(t, s, "plan-a", "A")
	mustCreateTask(t, s, "plan-a", "task one")

	n, err := s.DeletePlan(ctx, "plan-a", "alice")
	if err != nil {
		t.Fatalf("DeletePlan: %v", err)
	}
	if n != 1 {
		t.Errorf("rows deleted = %d, want 1", n)
	}

	tasks, err := s.ListTasks(ctx, nil, nil)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("got %d tasks after cascading delete, want 0", len(tasks))
	}
}

func TestDeletePlanNotFound(t *testing.T) {
	s := newTestStore(t)
	n, err := s.DeletePlan(context.Background(), "does-not-exist", "alice")
	if err != nil {
		t.Fatalf("DeletePlan: %v", err)
	}
	if n != 0 {
		t.Errorf("rows deleted = %d, want 0", n)
	}
}

func TestCreateTaskEventRecorded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreatePlan(t, s, "plan-a", "A")
	mustCreateTask(t, s, "plan-a", "task one")

	events, err := s.GetEvents(ctx, "plan-a:001", 10)
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 1 || events[0].EventType != "created" || events[0].Actor != "tester" {
		t.Errorf("events = %+v, want one 'created' event by tester", events)
	}
}
