package sqlite

import (
	"context"
	"database/sql"

	"github.com/taskmesh/taskmesh/internal/clock"
	"github.com/taskmesh/taskmesh/internal/dbexec"
	"github.com/taskmesh/taskmesh/internal/taskerr"
	"github.com/taskmesh/taskmesh/internal/types"
)

// StartTask transitions a task from open to in_progress, stamping started_at.
// The conditional UPDATE affecting zero rows means the task doesn't exist or
// wasn't open (InvalidData). The first start within a plan also moves the
// plan to in_progress and stamps its execution_started_at.
func (s *Store) StartTask(ctx context.Context, taskID int64, actor string) error {
	now := toUnix(clock.Now())

	return dbexec.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		n, err := dbexec.Exec(ctx, tx, `
			UPDATE tasks SET status = 'in_progress', started_at = ?, updated_at = ?
			WHERE id = ? AND status = 'open'
		`, -1, now, now, taskID)
		if err != nil {
			return err
		}
		if n == 0 {
			return taskerr.Newf(taskerr.InvalidData, nil, "task %d does not exist or is not open", taskID)
		}
		if _, err := dbexec.Exec(ctx, tx, `
			UPDATE plans SET status = 'in_progress', execution_started_at = ?, updated_at = ?
			WHERE id = (SELECT plan_id FROM tasks WHERE id = ?) AND execution_started_at IS NULL
		`, -1, now, now, taskID); err != nil {
			return err
		}
		recordEvent(ctx, tx, types.EntityTask, externalTaskID(ctx, tx, taskID), "started", actor, nil, nil)
		return nil
	})
}

// CompleteTask transitions a task to completed, stamping completed_at (and
// started_at too, if the task skipped in_progress entirely). When no other
// task in the plan is left uncompleted, the plan is marked completed as well
// (its execution_started_at is stamped too if it was never set).
func (s *Store) CompleteTask(ctx context.Context, taskID int64, actor string) error {
	now := toUnix(clock.Now())

	return dbexec.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		status, ok, err := dbexec.QueryOne(ctx, tx, func(r dbexec.Row) (string, error) {
			var s string
			err := r.Scan(&s)
			return s, err
		}, `SELECT status FROM tasks WHERE id = ?`, taskID)
		if err != nil {
			return err
		}
		if !ok {
			return taskerr.Newf(taskerr.InvalidData, nil, "task %d does not exist", taskID)
		}
		if types.Status(status) == types.StatusCompleted {
			return taskerr.Newf(taskerr.InvalidData, nil, "task %d is already completed", taskID)
		}

		_, err = dbexec.Exec(ctx, tx, `
			UPDATE tasks SET status = 'completed',
				started_at = COALESCE(started_at, ?),
				completed_at = ?,
				updated_at = ?
			WHERE id = ?
		`, 1, now, now, now, taskID)
		if err != nil {
			return err
		}
		if _, err := dbexec.Exec(ctx, tx, `
			UPDATE plans SET status = 'completed',
				execution_started_at = COALESCE(execution_started_at, ?),
				completed_at = ?, updated_at = ?
			WHERE id = (SELECT plan_id FROM tasks WHERE id = ?)
			  AND NOT EXISTS (SELECT 1 FROM tasks WHERE plan_id = plans.id AND status != 'completed')
		`, -1, now, now, now, taskID); err != nil {
			return err
		}
		recordEvent(ctx, tx, types.EntityTask, externalTaskID(ctx, tx, taskID), "completed", actor, nil, nil)
		return nil
	})
}

// CompleteBulk completes between 1 and 1000 tasks atomically in a single
// transaction. Like CompleteTask it performs no blocker re-validation; unlike
// CompleteTask it does not mark the owning plan completed — it is the fast
// path for an agent reporting a batch of already-finished work (spec §4.5/§9
// resolution). Returns the count of tasks actually transitioned (tasks
// already completed are skipped, not errored); an id that matches no task
// fails the whole batch with InvalidData and nothing is completed.
func (s *Store) CompleteBulk(ctx context.Context, taskIDs []int64, actor string) (int64, error) {
	if len(taskIDs) == 0 || len(taskIDs) > 1000 {
		return 0, taskerr.Newf(taskerr.InvalidInput, nil, "bulk complete accepts 1-1000 tasks, got %d", len(taskIDs))
	}

	now := toUnix(clock.Now())
	var total int64

	err := dbexec.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			UPDATE tasks SET status = 'completed',
				started_at = COALESCE(started_at, ?),
				completed_at = ?,
				updated_at = ?
			WHERE id = ? AND status != 'completed'
		`)
		if err != nil {
			return taskerr.New(taskerr.PrepareStatementFailed, "prepare bulk complete", err)
		}
		defer stmt.Close()

		for _, id := range taskIDs {
			res, err := stmt.ExecContext(ctx, now, now, now, id)
			if err != nil {
				return taskerr.New(taskerr.ExecFailed, "bulk complete", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return taskerr.New(taskerr.ExecFailed, "read rows affected", err)
			}
			if n == 0 {
				_, exists, err := dbexec.QueryOne(ctx, tx, func(r dbexec.Row) (int64, error) {
					var v int64
					err := r.Scan(&v)
					return v, err
				}, `SELECT id FROM tasks WHERE id = ?`, id)
				if err != nil {
					return err
				}
				if !exists {
					return taskerr.Newf(taskerr.InvalidData, nil, "task %d does not exist", id)
				}
			}
			if n > 0 {
				recordEvent(ctx, tx, types.EntityTask, externalTaskID(ctx, tx, id), "completed", actor, nil, nil)
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
