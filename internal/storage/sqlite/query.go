package sqlite

import (
	"context"
	"database/sql"

	"github.com/taskmesh/taskmesh/internal/dbexec"
	"github.com/taskmesh/taskmesh/internal/taskerr"
	"github.com/taskmesh/taskmesh/internal/types"
)

// ReadyTasks returns open tasks with zero incomplete blockers, ordered by
// creation order, optionally capped at limit (0 or negative means
// unbounded).
func (s *Store) ReadyTasks(ctx context.Context, limit int) ([]types.Task, error) {
	query := `
		SELECT ` + taskColumnsWithSlug + `
		FROM tasks
		JOIN plans ON plans.id = tasks.plan_id
		WHERE tasks.status = 'open'
		  AND NOT EXISTS (
			SELECT 1 FROM dependencies d
			JOIN tasks bt ON bt.id = d.blocks_on_id
			WHERE d.task_id = tasks.id AND bt.status != 'completed'
		  )
		ORDER BY tasks.created_at ASC
	`
	if limit > 0 {
		query += ` LIMIT ?`
		return dbexec.QueryAll(ctx, s.db, scanTaskWithSlug, query, limit)
	}
	return dbexec.QueryAll(ctx, s.db, scanTaskWithSlug, query)
}

// BlockedTasks returns every non-completed task that has at least one
// incomplete blocker, each paired with the count of such blockers.
func (s *Store) BlockedTasks(ctx context.Context) ([]types.BlockedTask, error) {
	return dbexec.QueryAll(ctx, s.db, scanBlockedTask, `
		SELECT `+taskColumnsWithSlug+`, (
			SELECT COUNT(*) FROM dependencies d
			JOIN tasks bt ON bt.id = d.blocks_on_id
			WHERE d.task_id = tasks.id AND bt.status != 'completed'
		) AS blocker_count
		FROM tasks
		JOIN plans ON plans.id = tasks.plan_id
		WHERE tasks.status != 'completed'
		  AND EXISTS (
			SELECT 1 FROM dependencies d
			JOIN tasks bt ON bt.id = d.blocks_on_id
			WHERE d.task_id = tasks.id AND bt.status != 'completed'
		  )
		ORDER BY tasks.created_at ASC
	`)
}

func scanBlockedTask(row dbexec.Row) (types.BlockedTask, error) {
	var t types.Task
	var status string
	var createdAt, updatedAt int64
	var startedAt, completedAt sql.NullInt64
	var slug string
	var blockerCount int

	if err := row.Scan(&t.ID, &t.PlanID, &t.PlanTaskNumber, &t.Title, &t.Description, &status,
		&createdAt, &updatedAt, &startedAt, &completedAt, &slug, &blockerCount); err != nil {
		return types.BlockedTask{}, err
	}
	t.Status = types.Status(status)
	t.CreatedAt = fromUnix(createdAt)
	t.UpdatedAt = fromUnix(updatedAt)
	t.StartedAt = fromUnixPtr(startedAt)
	t.CompletedAt = fromUnixPtr(completedAt)
	t.PlanSlug = slug
	return types.BlockedTask{Task: t, BlockerCount: blockerCount}, nil
}

// SystemStats computes system-wide plan/task counts plus ready and blocked
// counts. Errs (InvalidData) if ready+blocked exceeds open+in_progress,
// which would indicate a scheduling-query bug rather than bad user data.
// The two sets aren't a partition of non-completed tasks: an in_progress
// task whose blockers are all completed is neither ready (it's not open)
// nor blocked, so ready+blocked <= open+in_progress is the real invariant.
func (s *Store) SystemStats(ctx context.Context) (types.SystemStats, error) {
	var stats types.SystemStats

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*), SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END) FROM plans`)
	var plansCompleted sql.NullInt64
	if err := row.Scan(&stats.PlansTotal, &plansCompleted); err != nil {
		return types.SystemStats{}, taskerr.New(taskerr.StepFailed, "count plans", err)
	}
	stats.PlansCompleted = int(plansCompleted.Int64)

	row = s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			SUM(CASE WHEN status = 'open' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END)
		FROM tasks
	`)
	var open, inProgress, completed sql.NullInt64
	if err := row.Scan(&stats.TasksTotal, &open, &inProgress, &completed); err != nil {
		return types.SystemStats{}, taskerr.New(taskerr.StepFailed, "count tasks", err)
	}
	stats.TasksOpen = int(open.Int64)
	stats.TasksInProgress = int(inProgress.Int64)
	stats.TasksCompleted = int(completed.Int64)

	ready, err := s.ReadyTasks(ctx, 0)
	if err != nil {
		return types.SystemStats{}, err
	}
	stats.ReadyCount = len(ready)

	blocked, err := s.BlockedTasks(ctx)
	if err != nil {
		return types.SystemStats{}, err
	}
	stats.BlockedCount = len(blocked)

	nonCompleted := stats.TasksOpen + stats.TasksInProgress
	if stats.ReadyCount+stats.BlockedCount > nonCompleted {
		return types.SystemStats{}, taskerr.Newf(taskerr.InvalidData, nil,
			"ready (%d) + blocked (%d) exceeds open+in_progress (%d)", stats.ReadyCount, stats.BlockedCount, nonCompleted)
	}

	return stats, nil
}
