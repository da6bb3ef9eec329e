package sqlite

import (
	"context"

	"github.com/taskmesh/taskmesh/internal/clock"
	"github.com/taskmesh/taskmesh/internal/dbexec"
	"github.com/taskmesh/taskmesh/internal/ids"
	"github.com/taskmesh/taskmesh/internal/taskerr"
	"github.com/taskmesh/taskmesh/internal/types"
)

// CreatePlan inserts a new plan (spec L3 create). createdAt, when non-nil,
// overrides the clock — used by import/replay callers; ordinary callers
// pass nil.
func (s *Store) CreatePlan(ctx context.Context, slug, title, description string, createdAt *int64, actor string) (types.Plan, error) {
	if err := ids.ValidateSlug(slug); err != nil {
		return types.Plan{}, err
	}
	if len(title) > 500 {
		return types.Plan{}, taskerr.New(taskerr.InvalidInput, "title exceeds 500 characters", nil)
	}

	now := toUnix(clock.Now())
	ts := now
	if createdAt != nil {
		ts = *createdAt
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO plans (slug, title, description, status, task_counter, created_at, updated_at)
		VALUES (?, ?, ?, 'open', 0, ?, ?)
	`, slug, title, description, ts, ts)
	if err != nil {
		return types.Plan{}, taskerr.New(taskerr.InvalidData, "duplicate plan slug "+slug, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.Plan{}, taskerr.New(taskerr.StepFailed, "read plan id", err)
	}

	recordEvent(ctx, s.db, types.EntityPlan, slug, "created", actor, nil, nil)

	return types.Plan{
		ID: id, Slug: slug, Title: title, Description: description,
		Status: types.StatusOpen, TaskCounter: 0,
		CreatedAt: fromUnix(ts), UpdatedAt: fromUnix(ts),
	}, nil
}

// GetPlanSummary returns a plan plus its task-status aggregate, or false if
// the slug does not resolve.
func (s *Store) GetPlanSummary(ctx context.Context, slug string) (types.PlanSummary, bool, error) {
	p, ok, err := dbexec.QueryOne(ctx, s.db, scanPlan, `
		SELECT `+planColumns+` FROM plans WHERE slug = ?
	`, slug)
	if err != nil || !ok {
		return types.PlanSummary{}, ok, err
	}
	counts, err := s.taskCounts(ctx, p.ID)
	if err != nil {
		return types.PlanSummary{}, false, err
	}
	return types.PlanSummary{Plan: p, Tasks: counts}, true, nil
}

func (s *Store) taskCounts(ctx context.Context, planID int64) (types.TaskCounts, error) {
	type row struct {
		status string
		n      int
	}
	rows, err := dbexec.QueryAll(ctx, s.db, func(r dbexec.Row) (row, error) {
		var out row
		err := r.Scan(&out.status, &out.n)
		return out, err
	}, `SELECT status, COUNT(*) FROM tasks WHERE plan_id = ? GROUP BY status`, planID)
	if err != nil {
		return types.TaskCounts{}, err
	}
	var c types.TaskCounts
	for _, r := range rows {
		c.Total += r.n
		switch types.Status(r.status) {
		case types.StatusOpen:
			c.Open = r.n
		case types.StatusInProgress:
			c.InProgress = r.n
		case types.StatusCompleted:
			c.Completed = r.n
		}
	}
	return c, nil
}

// ListPlans returns every plan summary ordered by insertion, optionally
// filtered by status. A nil filter returns all statuses.
func (s *Store) ListPlans(ctx context.Context, status *types.Status) ([]types.PlanSummary, error) {
	var (
		plans []types.Plan
		err   error
	)
	if status == nil {
		plans, err = dbexec.QueryAll(ctx, s.db, scanPlan, `
			SELECT `+planColumns+` FROM plans ORDER BY created_at ASC
		`)
	} else {
		plans, err = dbexec.QueryAll(ctx, s.db, scanPlan, `
			SELECT `+planColumns+` FROM plans WHERE status = ? ORDER BY created_at ASC
		`, string(*status))
	}
	if err != nil {
		return nil, err
	}

	out := make([]types.PlanSummary, 0, len(plans))
	for _, p := range plans {
		counts, err := s.taskCounts(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, types.PlanSummary{Plan: p, Tasks: counts})
	}
	return out, nil
}

// UpdatePlan updates title and/or description. At least one must be non-nil.
func (s *Store) UpdatePlan(ctx context.Context, slug string, title, description *string, actor string) error {
	if title == nil && description == nil {
		return taskerr.New(taskerr.InvalidInput, "update requires at least one field", nil)
	}
	if title != nil && len(*title) > 500 {
		return taskerr.New(taskerr.InvalidInput, "title exceeds 500 characters", nil)
	}

	now := toUnix(clock.Now())
	switch {
	case title != nil && description != nil:
		_, err := dbexec.Exec(ctx, s.db, `
			UPDATE plans SET title = ?, description = ?, updated_at = ? WHERE slug = ?
		`, 1, *title, *description, now, slug)
		if err != nil {
			return err
		}
	case title != nil:
		_, err := dbexec.Exec(ctx, s.db, `
			UPDATE plans SET title = ?, updated_at = ? WHERE slug = ?
		`, 1, *title, now, slug)
		if err != nil {
			return err
		}
	default:
		_, err := dbexec.Exec(ctx, s.db, `
			UPDATE plans SET description = ?, updated_at = ? WHERE slug = ?
		`, 1, *description, now, slug)
		if err != nil {
			return err
		}
	}
	recordEvent(ctx, s.db, types.EntityPlan, slug, "updated", actor, nil, nil)
	return nil
}

// DeletePlan removes a plan; cascades to its tasks and their dependency
// edges via foreign key ON DELETE CASCADE. Returns the number of plan rows
// removed (0 or 1).
func (s *Store) DeletePlan(ctx context.Context, slug string, actor string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE slug = ?`, slug)
	if err != nil {
		return 0, taskerr.New(taskerr.StepFailed, "delete plan", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, taskerr.New(taskerr.StepFailed, "read rows affected", err)
	}
	if n > 0 {
		recordEvent(ctx, s.db, types.EntityPlan, slug, "deleted", actor, nil, nil)
	}
	return n, nil
}

// MarkExecutionStarted sets status to in_progress and stamps
// execution_started_at iff it is currently null. Idempotent.
func (s *Store) MarkExecutionStarted(ctx context.Context, planID int64) error {
	now := toUnix(clock.Now())
	_, err := s.db.ExecContext(ctx, `
		UPDATE plans SET status = 'in_progress', execution_started_at = ?, updated_at = ?
		WHERE id = ? AND execution_started_at IS NULL
	`, now, now, planID)
	if err != nil {
		return taskerr.New(taskerr.StepFailed, "mark execution started", err)
	}
	return nil
}

func (s *Store) resolvePlanID(ctx context.Context, slug string) (int64, error) {
	id, ok, err := dbexec.QueryOne(ctx, s.db, func(r dbexec.Row) (int64, error) {
		var id int64
		err := r.Scan(&id)
		return id, err
	}, `SELECT id FROM plans WHERE slug = ?`, slug)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, taskerr.Newf(taskerr.InvalidData, nil, "plan %q does not exist", slug)
	}
	return id, nil
}
