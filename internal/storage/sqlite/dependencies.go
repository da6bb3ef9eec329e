package sqlite

import (
	"context"
	"database/sql"

	"github.com/taskmesh/taskmesh/internal/clock"
	"github.com/taskmesh/taskmesh/internal/dbexec"
	"github.com/taskmesh/taskmesh/internal/taskerr"
	"github.com/taskmesh/taskmesh/internal/types"
)

// maxDependencyDepth caps the recursive CTE walk used for both cycle
// detection and transitive blocker/dependent traversal, guarding against a
// pathological chain spinning the database engine forever.
const maxDependencyDepth = 100

// AddDependency records that taskID blocks on blocksOnID: taskID may not
// start until blocksOnID completes. Rejects self-edges, duplicate edges (via
// the schema's composite primary key), and edges that would introduce a
// cycle.
func (s *Store) AddDependency(ctx context.Context, taskID, blocksOnID int64, actor string) error {
	if taskID == blocksOnID {
		return taskerr.New(taskerr.InvalidInput, "a task cannot block on itself", nil)
	}

	return dbexec.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, id := range [2]int64{taskID, blocksOnID} {
			_, ok, err := dbexec.QueryOne(ctx, tx, func(r dbexec.Row) (int64, error) {
				var n int64
				err := r.Scan(&n)
				return n, err
			}, `SELECT id FROM tasks WHERE id = ?`, id)
			if err != nil {
				return err
			}
			if !ok {
				return taskerr.Newf(taskerr.InvalidData, nil, "task %d does not exist", id)
			}
		}

		cyclic, err := wouldCycle(ctx, tx, taskID, blocksOnID)
		if err != nil {
			return err
		}
		if cyclic {
			return taskerr.Newf(taskerr.CycleDetected, nil, "adding %d blocks-on %d would create a dependency cycle", taskID, blocksOnID)
		}

		_, err = dbexec.Exec(ctx, tx, `
			INSERT INTO dependencies (task_id, blocks_on_id, created_at) VALUES (?, ?, ?)
		`, 1, taskID, blocksOnID, toUnix(clock.Now()))
		if err != nil {
			return err
		}
		blocksOn := externalTaskID(ctx, tx, blocksOnID)
		recordEvent(ctx, tx, types.EntityDependency, externalTaskID(ctx, tx, taskID), "blocks-on-added", actor, nil, &blocksOn)
		return nil
	})
}

// wouldCycle reports whether adding the edge taskID -> blocksOnID would close
// a cycle, by checking whether blocksOnID can already transitively reach
// taskID through existing edges (a recursive CTE walk over "blocks_on",
// capped at maxDependencyDepth).
func wouldCycle(ctx context.Context, tx *sql.Tx, taskID, blocksOnID int64) (bool, error) {
	reachable, err := dbexec.QueryAll(ctx, tx, func(r dbexec.Row) (int64, error) {
		var id int64
		err := r.Scan(&id)
		return id, err
	}, `
		WITH RECURSIVE reach(id, depth) AS (
			SELECT blocks_on_id, 1 FROM dependencies WHERE task_id = ?
			UNION
			SELECT d.blocks_on_id, reach.depth + 1
			FROM dependencies d
			JOIN reach ON d.task_id = reach.id
			WHERE reach.depth < ?
		)
		SELECT DISTINCT id FROM reach
	`, blocksOnID, maxDependencyDepth)
	if err != nil {
		return false, err
	}
	for _, id := range reachable {
		if id == taskID {
			return true, nil
		}
	}
	return false, nil
}

// RemoveDependency deletes one blocks-on edge. A no-op (not an error) if the
// edge does not exist.
func (s *Store) RemoveDependency(ctx context.Context, taskID, blocksOnID int64, actor string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM dependencies WHERE task_id = ? AND blocks_on_id = ?
	`, taskID, blocksOnID)
	if err != nil {
		return taskerr.New(taskerr.StepFailed, "remove dependency", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		blocksOn := externalTaskID(ctx, s.db, blocksOnID)
		recordEvent(ctx, s.db, types.EntityDependency, externalTaskID(ctx, s.db, taskID), "blocks-on-removed", actor, nil, &blocksOn)
	}
	return nil
}

// Blockers returns the transitive closure of tasks that block taskID,
// nearest first, each tagged with its depth in the chain (1 = direct
// blocker). Capped at maxDependencyDepth.
func (s *Store) Blockers(ctx context.Context, taskID int64) ([]types.BlockerRow, error) {
	return s.walkChain(ctx, `
		WITH RECURSIVE chain(id, depth) AS (
			SELECT blocks_on_id, 1 FROM dependencies WHERE task_id = ?
			UNION
			SELECT d.blocks_on_id, chain.depth + 1
			FROM dependencies d
			JOIN chain ON d.task_id = chain.id
			WHERE chain.depth < ?
		), shortest AS (
			SELECT id, MIN(depth) AS depth FROM chain GROUP BY id
		)
		SELECT `+taskColumnsWithSlug+`, shortest.depth
		FROM shortest
		JOIN tasks ON tasks.id = shortest.id
		JOIN plans ON plans.id = tasks.plan_id
		ORDER BY shortest.depth ASC, tasks.title ASC
	`, taskID)
}

// Dependents returns the transitive closure of tasks that block on taskID
// (i.e. are waiting on it), nearest first.
func (s *Store) Dependents(ctx context.Context, taskID int64) ([]types.BlockerRow, error) {
	return s.walkChain(ctx, `
		WITH RECURSIVE chain(id, depth) AS (
			SELECT task_id, 1 FROM dependencies WHERE blocks_on_id = ?
			UNION
			SELECT d.task_id, chain.depth + 1
			FROM dependencies d
			JOIN chain ON d.blocks_on_id = chain.id
			WHERE chain.depth < ?
		), shortest AS (
			SELECT id, MIN(depth) AS depth FROM chain GROUP BY id
		)
		SELECT `+taskColumnsWithSlug+`, shortest.depth
		FROM shortest
		JOIN tasks ON tasks.id = shortest.id
		JOIN plans ON plans.id = tasks.plan_id
		ORDER BY shortest.depth ASC, tasks.title ASC
	`, taskID)
}

func (s *Store) walkChain(ctx context.Context, query string, taskID int64) ([]types.BlockerRow, error) {
	return dbexec.QueryAll(ctx, s.db, func(row dbexec.Row) (types.BlockerRow, error) {
		t, err := scanTaskWithSlugDepth(row)
		if err != nil {
			return types.BlockerRow{}, err
		}
		return t, nil
	}, query, taskID, maxDependencyDepth)
}

// scanTaskWithSlugDepth decodes the taskColumnsWithSlug projection plus a
// trailing chain-depth column into a BlockerRow.
func scanTaskWithSlugDepth(row dbexec.Row) (types.BlockerRow, error) {
	var t types.Task
	var status string
	var createdAt, updatedAt int64
	var startedAt, completedAt sql.NullInt64
	var slug string
	var depth int

	err := row.Scan(&t.ID, &t.PlanID, &t.PlanTaskNumber, &t.Title, &t.Description, &status,
		&createdAt, &updatedAt, &startedAt, &completedAt, &slug, &depth)
	if err != nil {
		return types.BlockerRow{}, err
	}
	t.Status = types.Status(status)
	t.CreatedAt = fromUnix(createdAt)
	t.UpdatedAt = fromUnix(updatedAt)
	t.StartedAt = fromUnixPtr(startedAt)
	t.CompletedAt = fromUnixPtr(completedAt)
	t.PlanSlug = slug
	return types.BlockerRow{Task: t, Depth: depth}, nil
}
