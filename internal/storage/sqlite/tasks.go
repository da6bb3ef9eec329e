package sqlite

import (
	"context"
	"database/sql"

	"github.com/taskmesh/taskmesh/internal/clock"
	"github.com/taskmesh/taskmesh/internal/dbexec"
	"github.com/taskmesh/taskmesh/internal/ids"
	"github.com/taskmesh/taskmesh/internal/taskerr"
	"github.com/taskmesh/taskmesh/internal/types"
)

// CreateTask inserts a task under planSlug, atomically incrementing the
// plan's task_counter and assigning the new counter value as the task's
// plan_task_number (spec L4 create).
func (s *Store) CreateTask(ctx context.Context, planSlug, title, description, actor string) (taskID int64, planTaskNumber int, err error) {
	if len(title) > 500 {
		return 0, 0, taskerr.New(taskerr.InvalidInput, "title exceeds 500 characters", nil)
	}

	now := toUnix(clock.Now())

	txErr := dbexec.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		planID, err := s.resolvePlanIDTx(ctx, tx, planSlug)
		if err != nil {
			return err
		}

		if _, err := dbexec.Exec(ctx, tx, `
			UPDATE plans SET task_counter = task_counter + 1, updated_at = ? WHERE id = ?
		`, 1, now, planID); err != nil {
			return err
		}

		number, ok, err := dbexec.QueryOne(ctx, tx, func(r dbexec.Row) (int, error) {
			var n int
			err := r.Scan(&n)
			return n, err
		}, `SELECT task_counter FROM plans WHERE id = ?`, planID)
		if err != nil {
			return err
		}
		if !ok {
			return taskerr.New(taskerr.InvalidData, "plan vanished mid-transaction", nil)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (plan_id, plan_task_number, title, description, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, 'open', ?, ?)
		`, planID, number, title, description, now, now)
		if err != nil {
			return taskerr.New(taskerr.StepFailed, "insert task", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return taskerr.New(taskerr.StepFailed, "read task id", err)
		}
		taskID = id
		planTaskNumber = number
		return nil
	})
	if txErr != nil {
		return 0, 0, txErr
	}

	recordEvent(ctx, s.db, types.EntityTask, ids.FormatTaskID(planSlug, planTaskNumber), "created", actor, nil, nil)
	return taskID, planTaskNumber, nil
}

func (s *Store) resolvePlanIDTx(ctx context.Context, tx *sql.Tx, slug string) (int64, error) {
	id, ok, err := dbexec.QueryOne(ctx, tx, func(r dbexec.Row) (int64, error) {
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

// ListTasks returns tasks ordered by created_at, optionally filtered by
// status and/or plan slug. Either filter may be nil to disable it.
func (s *Store) ListTasks(ctx context.Context, status *types.Status, planSlug *string) ([]types.Task, error) {
	query := `
		SELECT ` + taskColumnsWithSlug + `
		FROM tasks JOIN plans ON plans.id = tasks.plan_id
		WHERE (?1 IS NULL OR tasks.status = ?1)
		  AND (?2 IS NULL OR plans.slug = ?2)
		ORDER BY tasks.created_at ASC
	`
	var statusArg, slugArg interface{}
	if status != nil {
		statusArg = string(*status)
	}
	if planSlug != nil {
		slugArg = *planSlug
	}
	return dbexec.QueryAll(ctx, s.db, scanTaskWithSlug, query, statusArg, slugArg)
}

// GetTask resolves a task by internal ID.
func (s *Store) GetTask(ctx context.Context, taskID int64) (types.Task, bool, error) {
	return dbexec.QueryOne(ctx, s.db, scanTaskWithSlug, `
		SELECT `+taskColumnsWithSlug+`
		FROM tasks JOIN plans ON plans.id = tasks.plan_id
		WHERE tasks.id = ?
	`, taskID)
}

// ResolveByPlanAndNumber maps {slug}:{number} to an internal task ID.
func (s *Store) ResolveByPlanAndNumber(ctx context.Context, slug string, number int) (int64, bool, error) {
	return dbexec.QueryOne(ctx, s.db, func(r dbexec.Row) (int64, error) {
		var id int64
		err := r.Scan(&id)
		return id, err
	}, `
		SELECT tasks.id FROM tasks JOIN plans ON plans.id = tasks.plan_id
		WHERE plans.slug = ? AND tasks.plan_task_number = ?
	`, slug, number)
}

// UpdateTask applies title/description/status updates. At least one field
// must be provided. Per spec §9's resolved open question: moving into
// in_progress/completed stamps started_at only if it is currently null;
// moving into/out of completed unconditionally sets/clears completed_at.
func (s *Store) UpdateTask(ctx context.Context, taskID int64, title, description *string, status *types.Status, actor string) error {
	if title == nil && description == nil && status == nil {
		return taskerr.New(taskerr.InvalidInput, "update requires at least one field", nil)
	}
	if title != nil && len(*title) > 500 {
		return taskerr.New(taskerr.InvalidInput, "title exceeds 500 characters", nil)
	}
	if status != nil && !status.IsValid() {
		return taskerr.Newf(taskerr.InvalidInput, nil, "invalid status %q", *status)
	}

	now := toUnix(clock.Now())

	txErr := dbexec.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if title != nil {
			if _, err := dbexec.Exec(ctx, tx, `UPDATE tasks SET title = ?, updated_at = ? WHERE id = ?`, 1, *title, now, taskID); err != nil {
				return err
			}
		}
		if description != nil {
			if _, err := dbexec.Exec(ctx, tx, `UPDATE tasks SET description = ?, updated_at = ? WHERE id = ?`, 1, *description, now, taskID); err != nil {
				return err
			}
		}
		if status != nil {
			switch *status {
			case types.StatusOpen:
				if _, err := dbexec.Exec(ctx, tx, `
					UPDATE tasks SET status = 'open', started_at = NULL, completed_at = NULL, updated_at = ?
					WHERE id = ?
				`, 1, now, taskID); err != nil {
					return err
				}
			case types.StatusInProgress:
				if _, err := dbexec.Exec(ctx, tx, `
					UPDATE tasks SET status = 'in_progress',
						started_at = COALESCE(started_at, ?),
						completed_at = NULL,
						updated_at = ?
					WHERE id = ?
				`, 1, now, now, taskID); err != nil {
					return err
				}
			case types.StatusCompleted:
				if _, err := dbexec.Exec(ctx, tx, `
					UPDATE tasks SET status = 'completed',
						started_at = COALESCE(started_at, ?),
						completed_at = ?,
						updated_at = ?
					WHERE id = ?
				`, 1, now, now, now, taskID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}
	recordEvent(ctx, s.db, types.EntityTask, externalTaskID(ctx, s.db, taskID), "updated", actor, nil, nil)
	return nil
}

// DeleteTask removes a task, refusing if any other task still blocks on it
// (invariant 8). Dependency edges where this task is the dependent side are
// removed via cascade.
func (s *Store) DeleteTask(ctx context.Context, taskID int64, actor string) error {
	extID := externalTaskID(ctx, s.db, taskID)

	return dbexec.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		n, ok, err := dbexec.QueryOne(ctx, tx, func(r dbexec.Row) (int, error) {
			var n int
			err := r.Scan(&n)
			return n, err
		}, `SELECT COUNT(*) FROM dependencies WHERE blocks_on_id = ?`, taskID)
		if err != nil {
			return err
		}
		if ok && n > 0 {
			return taskerr.Newf(taskerr.InvalidData, nil, "task %d has %d dependent task(s); remove those edges first", taskID, n)
		}

		if _, err := dbexec.Exec(ctx, tx, `DELETE FROM tasks WHERE id = ?`, 1, taskID); err != nil {
			return err
		}
		recordEvent(ctx, tx, types.EntityTask, extID, "deleted", actor, nil, nil)
		return nil
	})
}
