package sqlite

// schema is applied once, at open time, via CREATE TABLE/INDEX IF NOT EXISTS
// statements — mirroring the teacher's internal/storage/sqlite/schema.go.
// Column check constraints encode spec invariants 4-5; foreign keys cascade
// delete to satisfy invariant 6 and the plan/task ownership rule; the
// dependencies primary key forbids duplicate edges (invariant "at most one
// dependency row per ordered pair"); a row-level check forbids self-edges.
// currentSchemaVersion is the value the health checker expects to find in
// the schema_version table's sole row.
const currentSchemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);

INSERT INTO schema_version (version)
SELECT 1 WHERE NOT EXISTS (SELECT 1 FROM schema_version);

CREATE TABLE IF NOT EXISTS plans (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL DEFAULT '' CHECK(length(title) <= 500),
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'open' CHECK(status IN ('open','in_progress','completed')),
    task_counter INTEGER NOT NULL DEFAULT 0 CHECK(task_counter >= 0),
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    execution_started_at INTEGER,
    completed_at INTEGER,
    CHECK (
        (status = 'open') = (execution_started_at IS NULL)
    ),
    CHECK (
        (status = 'completed') = (completed_at IS NOT NULL)
    ),
    CHECK (
        completed_at IS NULL OR completed_at >= execution_started_at
    )
);

CREATE INDEX IF NOT EXISTS idx_plans_slug ON plans(slug);
CREATE INDEX IF NOT EXISTS idx_plans_status ON plans(status);
CREATE INDEX IF NOT EXISTS idx_plans_created_at ON plans(created_at ASC);

CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    plan_id INTEGER NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
    plan_task_number INTEGER NOT NULL CHECK(plan_task_number >= 1 AND plan_task_number <= 999),
    title TEXT NOT NULL DEFAULT '' CHECK(length(title) <= 500),
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'open' CHECK(status IN ('open','in_progress','completed')),
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    started_at INTEGER,
    completed_at INTEGER,
    UNIQUE (plan_id, plan_task_number),
    CHECK (
        (status = 'open') = (started_at IS NULL)
    ),
    CHECK (
        (status = 'completed') = (completed_at IS NOT NULL)
    ),
    CHECK (
        completed_at IS NULL OR (started_at IS NOT NULL AND completed_at >= started_at)
    )
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_plan_id ON tasks(plan_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status_plan_id ON tasks(status, plan_id);
CREATE INDEX IF NOT EXISTS idx_tasks_plan_id_created_at ON tasks(plan_id, created_at ASC);

CREATE TABLE IF NOT EXISTS dependencies (
    task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    blocks_on_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (task_id, blocks_on_id),
    CHECK (task_id != blocks_on_id)
);

CREATE INDEX IF NOT EXISTS idx_dependencies_task_id ON dependencies(task_id);
CREATE INDEX IF NOT EXISTS idx_dependencies_blocks_on_id ON dependencies(blocks_on_id);

-- Supplemented features (see SPEC_FULL.md §4): append-only task comments and
-- a cross-entity event log, modeled on the teacher's comments/events tables.
CREATE TABLE IF NOT EXISTS task_comments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    author TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_task_comments_task_id ON task_comments(task_id);

CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entity_type TEXT NOT NULL CHECK(entity_type IN ('plan','task','dependency')),
    entity_id TEXT NOT NULL,
    event_type TEXT NOT NULL,
    actor TEXT NOT NULL DEFAULT '',
    old_value TEXT,
    new_value TEXT,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at);
`

// mandatedIndexes is the set of index names the health checker (L8, check 9)
// asserts exist. Kept separate from the schema string so the checker can
// verify by name against sqlite_master without re-parsing DDL.
var mandatedIndexes = []string{
	"idx_tasks_status",
	"idx_tasks_plan_id",
	"idx_tasks_status_plan_id",
	"idx_tasks_plan_id_created_at",
	"idx_dependencies_task_id",
	"idx_dependencies_blocks_on_id",
	"idx_plans_slug",
	"idx_plans_status",
}
