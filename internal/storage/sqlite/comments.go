package sqlite

import (
	"context"

	"github.com/taskmesh/taskmesh/internal/clock"
	"github.com/taskmesh/taskmesh/internal/dbexec"
	"github.com/taskmesh/taskmesh/internal/taskerr"
	"github.com/taskmesh/taskmesh/internal/types"
)

// AddComment appends a free-form note to a task. Supplemented feature (see
// SPEC_FULL.md §4), modeled on the teacher's AddIssueComment.
func (s *Store) AddComment(ctx context.Context, taskID int64, author, body string) (types.Comment, error) {
	if body == "" {
		return types.Comment{}, taskerr.New(taskerr.InvalidInput, "comment body must not be empty", nil)
	}
	now := clock.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO task_comments (task_id, author, body, created_at) VALUES (?, ?, ?, ?)
	`, taskID, author, body, toUnix(now))
	if err != nil {
		return types.Comment{}, taskerr.New(taskerr.StepFailed, "insert comment", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.Comment{}, taskerr.New(taskerr.StepFailed, "read comment id", err)
	}
	return types.Comment{ID: id, TaskID: taskID, Author: author, Body: body, CreatedAt: now}, nil
}

// ListComments returns every comment on a task, oldest first.
func (s *Store) ListComments(ctx context.Context, taskID int64) ([]types.Comment, error) {
	return dbexec.QueryAll(ctx, s.db, scanComment, `
		SELECT id, task_id, author, body, created_at FROM task_comments
		WHERE task_id = ? ORDER BY created_at ASC, id ASC
	`, taskID)
}

func scanComment(row dbexec.Row) (types.Comment, error) {
	var c types.Comment
	var createdAt int64
	if err := row.Scan(&c.ID, &c.TaskID, &c.Author, &c.Body, &createdAt); err != nil {
		return types.Comment{}, err
	}
	c.CreatedAt = fromUnix(createdAt)
	return c, nil
}
