// Package dbexec is the statement-executor layer (spec L1): a thin,
// type-safe wrapper over database/sql that gives higher layers four
// operations — Exec, QueryOne, QueryAll, and transaction begin/commit/
// rollback — and translates every database/sql failure into the
// taskerr taxonomy instead of leaking driver-specific error text.
//
// Row decoding is compile-time dispatch, not reflection: callers supply a
// Scanner function that knows the column order of its own query. This
// mirrors the teacher's direct use of *sql.Rows.Scan at each call site
// (internal/storage/sqlite/issues.go) while centralizing error translation.
package dbexec

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/taskmesh/taskmesh/internal/taskerr"
)

// Querier is satisfied by *sql.DB, *sql.Conn, and *sql.Tx alike, so callers
// can run the same statements against a bare connection or inside a
// transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Scanner decodes a single row into a T.
type Scanner[T any] func(row Row) (T, error)

// Row is the subset of *sql.Rows a Scanner needs.
type Row interface {
	Scan(dest ...interface{}) error
}

// Exec runs a statement that does not return rows (INSERT/UPDATE/DELETE/DDL)
// and asserts the caller's expectation about the number of affected rows
// when wantRows >= 0.
func Exec(ctx context.Context, q Querier, query string, wantRows int64, args ...interface{}) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, translateExecErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, taskerr.New(taskerr.ExecFailed, "reading rows affected", err)
	}
	if wantRows >= 0 && n != wantRows {
		return n, taskerr.Newf(taskerr.InvalidData, nil, "expected %d row(s) affected, got %d", wantRows, n)
	}
	return n, nil
}

// QueryOne returns the first row decoded by scan, or (zero, false, nil) if
// the query produced no rows.
func QueryOne[T any](ctx context.Context, q Querier, scan Scanner[T], query string, args ...interface{}) (T, bool, error) {
	var zero T
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return zero, false, taskerr.New(taskerr.StepFailed, "query one", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, false, taskerr.New(taskerr.StepFailed, "iterating rows", err)
		}
		return zero, false, nil
	}
	v, err := scan(rows)
	if err != nil {
		return zero, false, taskerr.New(taskerr.StepFailed, "decoding row", err)
	}
	return v, true, nil
}

// QueryAll returns every row decoded by scan, in result order. If decoding
// element n fails, elements 0..n-1 are discarded (they are value types owned
// by the caller's collection, so nothing needs explicit release in Go) and
// the error propagates.
func QueryAll[T any](ctx context.Context, q Querier, scan Scanner[T], query string, args ...interface{}) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, taskerr.New(taskerr.StepFailed, "query all", err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, taskerr.New(taskerr.StepFailed, "decoding row", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, taskerr.New(taskerr.StepFailed, "iterating rows", err)
	}
	return out, nil
}

// WithTx begins a transaction with db.BeginTx's default options, runs fn, and
// commits on nil return or rolls back otherwise. Rollback is best-effort and
// never overrides fn's error. Mirrors the teacher's RunInTransaction contract
// (internal/storage/storage.go). The BEGIN mode is whatever the driver
// connection is configured for; no lock is taken up front by WithTx itself.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return taskerr.New(taskerr.ExecFailed, "begin transaction", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback() // best-effort, per spec rollback is infallible
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return taskerr.New(taskerr.ExecFailed, "commit transaction", err)
	}
	committed = true
	return nil
}

func translateExecErr(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint"):
		return taskerr.New(taskerr.InvalidData, "unique constraint violated", err)
	case strings.Contains(msg, "FOREIGN KEY constraint"):
		return taskerr.New(taskerr.InvalidData, "foreign key constraint violated", err)
	case strings.Contains(msg, "CHECK constraint"):
		return taskerr.New(taskerr.InvalidData, "check constraint violated", err)
	case errors.Is(err, sql.ErrConnDone):
		return taskerr.New(taskerr.DatabaseClosed, "connection already closed", err)
	default:
		return taskerr.New(taskerr.StepFailed, "exec", err)
	}
}
