package sqlite

import (
	"database/sql"
	"time"

	"github.com/taskmesh/taskmesh/internal/dbexec"
	"github.com/taskmesh/taskmesh/internal/types"
)

func toUnix(t time.Time) int64 { return t.Unix() }

func toUnixPtr(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func fromUnix(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

func fromUnixPtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromUnix(n.Int64)
	return &t
}

// scanPlan decodes: id, slug, title, description, status, task_counter,
// created_at, updated_at, execution_started_at, completed_at.
func scanPlan(row dbexec.Row) (types.Plan, error) {
	var p types.Plan
	var status string
	var createdAt, updatedAt int64
	var execStarted, completedAt sql.NullInt64

	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &status, &p.TaskCounter,
		&createdAt, &updatedAt, &execStarted, &completedAt)
	if err != nil {
		return types.Plan{}, err
	}
	p.Status = types.Status(status)
	p.CreatedAt = fromUnix(createdAt)
	p.UpdatedAt = fromUnix(updatedAt)
	p.ExecutionStartedAt = fromUnixPtr(execStarted)
	p.CompletedAt = fromUnixPtr(completedAt)
	return p, nil
}

// scanTask decodes: id, plan_id, plan_task_number, title, description,
// status, created_at, updated_at, started_at, completed_at.
func scanTask(row dbexec.Row) (types.Task, error) {
	var t types.Task
	var status string
	var createdAt, updatedAt int64
	var startedAt, completedAt sql.NullInt64

	err := row.Scan(&t.ID, &t.PlanID, &t.PlanTaskNumber, &t.Title, &t.Description, &status,
		&createdAt, &updatedAt, &startedAt, &completedAt)
	if err != nil {
		return types.Task{}, err
	}
	t.Status = types.Status(status)
	t.CreatedAt = fromUnix(createdAt)
	t.UpdatedAt = fromUnix(updatedAt)
	t.StartedAt = fromUnixPtr(startedAt)
	t.CompletedAt = fromUnixPtr(completedAt)
	return t, nil
}

// scanTaskWithSlug decodes the same columns as scanTask plus a trailing
// plan slug column, used by joined queries that need the external ID.
func scanTaskWithSlug(row dbexec.Row) (types.Task, error) {
	var t types.Task
	var status string
	var createdAt, updatedAt int64
	var startedAt, completedAt sql.NullInt64
	var slug string

	err := row.Scan(&t.ID, &t.PlanID, &t.PlanTaskNumber, &t.Title, &t.Description, &status,
		&createdAt, &updatedAt, &startedAt, &completedAt, &slug)
	if err != nil {
		return types.Task{}, err
	}
	t.Status = types.Status(status)
	t.CreatedAt = fromUnix(createdAt)
	t.UpdatedAt = fromUnix(updatedAt)
	t.StartedAt = fromUnixPtr(startedAt)
	t.CompletedAt = fromUnixPtr(completedAt)
	t.PlanSlug = slug
	return t, nil
}

const taskColumns = `tasks.id, tasks.plan_id, tasks.plan_task_number, tasks.title, tasks.description,
	tasks.status, tasks.created_at, tasks.updated_at, tasks.started_at, tasks.completed_at`

const taskColumnsWithSlug = taskColumns + `, plans.slug`

const planColumns = `plans.id, plans.slug, plans.title, plans.description, plans.status,
	plans.task_counter, plans.created_at, plans.updated_at, plans.execution_started_at, plans.completed_at`
