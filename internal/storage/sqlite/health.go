package sqlite

import (
	"context"
	"fmt"

	"github.com/taskmesh/taskmesh/internal/dbexec"
	"github.com/taskmesh/taskmesh/internal/types"
)

// Health runs the full battery of consistency checks over the database and
// reports every violation found. Errors are data-integrity violations;
// warnings are suspicious-but-legal states worth a human's attention.
func (s *Store) Health(ctx context.Context) (types.HealthReport, error) {
	var report types.HealthReport

	checks := []func(context.Context, *Store, *types.HealthReport) error{
		checkOrphanedDependencyEndpoints,
		checkDependencyCycles,
		checkOrphanedTasks,
		checkZeroTaskPlans,
		checkStatusTimestampInvariants,
		checkInvalidStatusValues,
		checkTitleLength,
		checkSchemaVersion,
		checkMandatedIndexes,
		checkOversizedDescriptions,
	}
	for _, check := range checks {
		if err := check(ctx, s, &report); err != nil {
			return types.HealthReport{}, err
		}
	}
	return report, nil
}

func checkOrphanedDependencyEndpoints(ctx context.Context, s *Store, r *types.HealthReport) error {
	orphans, err := dbexec.QueryAll(ctx, s.db, func(row dbexec.Row) (string, error) {
		var taskID, blocksOnID int64
		if err := row.Scan(&taskID, &blocksOnID); err != nil {
			return "", err
		}
		return fmt.Sprintf("dependency (%d -> %d)", taskID, blocksOnID), nil
	}, `
		SELECT d.task_id, d.blocks_on_id FROM dependencies d
		LEFT JOIN tasks t1 ON t1.id = d.task_id
		LEFT JOIN tasks t2 ON t2.id = d.blocks_on_id
		WHERE t1.id IS NULL OR t2.id IS NULL
	`)
	if err != nil {
		return err
	}
	for _, o := range orphans {
		r.Errors = append(r.Errors, types.HealthFinding{Check: "orphaned-dependency-endpoint", Message: o + " references a missing task"})
	}
	return nil
}

func checkDependencyCycles(ctx context.Context, s *Store, r *types.HealthReport) error {
	taskIDs, err := dbexec.QueryAll(ctx, s.db, func(row dbexec.Row) (int64, error) {
		var id int64
		err := row.Scan(&id)
		return id, err
	}, `SELECT DISTINCT task_id FROM dependencies`)
	if err != nil {
		return err
	}
	seen := map[int64]bool{}
	for _, id := range taskIDs {
		if seen[id] {
			continue
		}
		reachable, err := dbexec.QueryAll(ctx, s.db, func(row dbexec.Row) (int64, error) {
			var id int64
			err := row.Scan(&id)
			return id, err
		}, `
			WITH RECURSIVE reach(id, depth) AS (
				SELECT blocks_on_id, 1 FROM dependencies WHERE task_id = ?
				UNION
				SELECT d.blocks_on_id, reach.depth + 1
				FROM dependencies d JOIN reach ON d.task_id = reach.id
				WHERE reach.depth < ?
			)
			SELECT DISTINCT id FROM reach
		`, id, maxDependencyDepth)
		if err != nil {
			return err
		}
		for _, other := range reachable {
			seen[other] = true
			if other == id {
				r.Errors = append(r.Errors, types.HealthFinding{
					Check:   "dependency-cycle",
					Message: fmt.Sprintf("task %d participates in a dependency cycle", id),
				})
			}
		}
		seen[id] = true
	}
	return nil
}

func checkOrphanedTasks(ctx context.Context, s *Store, r *types.HealthReport) error {
	orphans, err := dbexec.QueryAll(ctx, s.db, func(row dbexec.Row) (int64, error) {
		var id int64
		err := row.Scan(&id)
		return id, err
	}, `
		SELECT tasks.id FROM tasks
		LEFT JOIN plans ON plans.id = tasks.plan_id
		WHERE plans.id IS NULL
	`)
	if err != nil {
		return err
	}
	for _, id := range orphans {
		r.Errors = append(r.Errors, types.HealthFinding{Check: "orphaned-task", Message: fmt.Sprintf("task %d references a missing plan", id)})
	}
	return nil
}

func checkZeroTaskPlans(ctx context.Context, s *Store, r *types.HealthReport) error {
	slugs, err := dbexec.QueryAll(ctx, s.db, func(row dbexec.Row) (string, error) {
		var s string
		err := row.Scan(&s)
		return s, err
	}, `
		SELECT plans.slug FROM plans
		LEFT JOIN tasks ON tasks.plan_id = plans.id
		WHERE tasks.id IS NULL
	`)
	if err != nil {
		return err
	}
	for _, slug := range slugs {
		r.Warnings = append(r.Warnings, types.HealthFinding{Check: "zero-task-plan", Message: "plan " + slug + " has no tasks"})
	}
	return nil
}

func checkStatusTimestampInvariants(ctx context.Context, s *Store, r *types.HealthReport) error {
	violations, err := dbexec.QueryAll(ctx, s.db, func(row dbexec.Row) (string, error) {
		var id int64
		if err := row.Scan(&id); err != nil {
			return "", err
		}
		return fmt.Sprintf("task %d", id), nil
	}, `
		SELECT id FROM tasks
		WHERE (status = 'open' AND started_at IS NOT NULL)
		   OR (status != 'open' AND started_at IS NULL)
		   OR (status = 'completed' AND completed_at IS NULL)
		   OR (status != 'completed' AND completed_at IS NOT NULL)
		   OR (completed_at IS NOT NULL AND started_at IS NOT NULL AND completed_at < started_at)
	`)
	if err != nil {
		return err
	}
	for _, v := range violations {
		r.Errors = append(r.Errors, types.HealthFinding{Check: "status-timestamp-invariant", Message: v + " violates the status/timestamp coupling invariant"})
	}
	return nil
}

func checkInvalidStatusValues(ctx context.Context, s *Store, r *types.HealthReport) error {
	bad, err := dbexec.QueryAll(ctx, s.db, func(row dbexec.Row) (string, error) {
		var id int64
		var status string
		if err := row.Scan(&id, &status); err != nil {
			return "", err
		}
		return fmt.Sprintf("task %d has invalid status %q", id, status), nil
	}, `SELECT id, status FROM tasks WHERE status NOT IN ('open', 'in_progress', 'completed')`)
	if err != nil {
		return err
	}
	for _, b := range bad {
		r.Errors = append(r.Errors, types.HealthFinding{Check: "invalid-status", Message: b})
	}
	return nil
}

func checkTitleLength(ctx context.Context, s *Store, r *types.HealthReport) error {
	bad, err := dbexec.QueryAll(ctx, s.db, func(row dbexec.Row) (string, error) {
		var kind, ident string
		if err := row.Scan(&kind, &ident); err != nil {
			return "", err
		}
		return kind + " " + ident + " has an invalid title length", nil
	}, `
		SELECT 'plan', slug FROM plans WHERE length(title) = 0 OR length(title) > 500
		UNION ALL
		SELECT 'task', CAST(id AS TEXT) FROM tasks WHERE length(title) = 0 OR length(title) > 500
	`)
	if err != nil {
		return err
	}
	for _, b := range bad {
		r.Errors = append(r.Errors, types.HealthFinding{Check: "title-length", Message: b})
	}
	return nil
}

func checkSchemaVersion(ctx context.Context, s *Store, r *types.HealthReport) error {
	version, ok, err := dbexec.QueryOne(ctx, s.db, func(row dbexec.Row) (int, error) {
		var v int
		err := row.Scan(&v)
		return v, err
	}, `SELECT version FROM schema_version`)
	if err != nil {
		return err
	}
	if !ok {
		r.Errors = append(r.Errors, types.HealthFinding{Check: "schema-version", Message: "schema_version table has no row"})
		return nil
	}
	if version != currentSchemaVersion {
		r.Errors = append(r.Errors, types.HealthFinding{
			Check:   "schema-version",
			Message: fmt.Sprintf("schema_version is %d, expected %d", version, currentSchemaVersion),
		})
	}
	return nil
}

func checkMandatedIndexes(ctx context.Context, s *Store, r *types.HealthReport) error {
	present, err := dbexec.QueryAll(ctx, s.db, func(row dbexec.Row) (string, error) {
		var name string
		err := row.Scan(&name)
		return name, err
	}, `SELECT name FROM sqlite_master WHERE type = 'index'`)
	if err != nil {
		return err
	}
	have := map[string]bool{}
	for _, n := range present {
		have[n] = true
	}
	for _, want := range mandatedIndexes {
		if !have[want] {
			r.Warnings = append(r.Warnings, types.HealthFinding{Check: "missing-index", Message: "mandated index " + want + " is missing"})
		}
	}
	return nil
}

func checkOversizedDescriptions(ctx context.Context, s *Store, r *types.HealthReport) error {
	const descriptionWarnBytes = 1 << 20 // 1 MiB
	bad, err := dbexec.QueryAll(ctx, s.db, func(row dbexec.Row) (int64, error) {
		var id int64
		err := row.Scan(&id)
		return id, err
	}, `SELECT id FROM tasks WHERE length(description) > ?`, descriptionWarnBytes)
	if err != nil {
		return err
	}
	for _, id := range bad {
		r.Warnings = append(r.Warnings, types.HealthFinding{Check: "oversized-description", Message: fmt.Sprintf("task %d has a description over 1 MiB", id)})
	}
	return nil
}
