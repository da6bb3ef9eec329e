package sqlite

import (
	"context"
	"strconv"
	"time"

	"github.com/taskmesh/taskmesh/internal/clock"
	"github.com/taskmesh/taskmesh/internal/dbexec"
	"github.com/taskmesh/taskmesh/internal/ids"
	"github.com/taskmesh/taskmesh/internal/types"
)

// recordEvent appends one audit-log row. Supplemented feature (SPEC_FULL.md
// §4), modeled on the teacher's events table: purely additive, never
// consulted by the scheduling queries, so a failure here must never be
// allowed to roll back the caller's mutation — errors are swallowed after
// logging would otherwise be silent, matching the teacher's own
// best-effort event recording around CloseIssue/UpdateIssue.
func recordEvent(ctx context.Context, q dbexec.Querier, entityType types.EventEntityType, entityID, eventType, actor string, oldValue, newValue *string) {
	_, _ = dbexec.Exec(ctx, q, `
		INSERT INTO events (entity_type, entity_id, event_type, actor, old_value, new_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, 1, string(entityType), entityID, eventType, actor, oldValue, newValue, toUnix(clock.Now()))
}

// externalTaskID resolves a task's {slug}:{NNN} external id for event
// recording. Falls back to the decimal internal id if the task has already
// been deleted by the time the event is recorded (should not happen in
// practice, since events are recorded after a successful mutation).
func externalTaskID(ctx context.Context, q dbexec.Querier, taskID int64) string {
	id, ok, err := dbexec.QueryOne(ctx, q, func(r dbexec.Row) (string, error) {
		var slug string
		var number int
		if err := r.Scan(&slug, &number); err != nil {
			return "", err
		}
		return ids.FormatTaskID(slug, number), nil
	}, `SELECT plans.slug, tasks.plan_task_number FROM tasks JOIN plans ON plans.id = tasks.plan_id WHERE tasks.id = ?`, taskID)
	if err != nil || !ok {
		return strconv.FormatInt(taskID, 10)
	}
	return id
}

// GetEvents returns the audit trail for one task (its own events plus the
// dependency events recorded against it), newest first, capped at limit.
func (s *Store) GetEvents(ctx context.Context, taskExternalID string, limit int) ([]types.Event, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	rows, err := dbexec.QueryAll(ctx, s.db, scanEvent, `
		SELECT id, entity_type, entity_id, event_type, actor, old_value, new_value, created_at
		FROM events
		WHERE entity_type IN ('task', 'dependency') AND entity_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, taskExternalID, limit)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func scanEvent(row dbexec.Row) (types.Event, error) {
	var e types.Event
	var entityType string
	var createdAt int64
	if err := row.Scan(&e.ID, &entityType, &e.EntityID, &e.EventType, &e.Actor, &e.OldValue, &e.NewValue, &createdAt); err != nil {
		return types.Event{}, err
	}
	e.EntityType = types.EventEntityType(entityType)
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	return e, nil
}
