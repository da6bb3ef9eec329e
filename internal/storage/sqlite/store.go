// Package sqlite implements the full dependency-graph store (spec layers
// L2-L8) on top of database/sql and the pure-Go ncruces/go-sqlite3 driver.
// It is grounded throughout on the teacher's internal/storage/sqlite package:
// same layering (schema.go plus one file per concern), same "foreign keys
// enabled on every connection" discipline, and multi-statement writes wrapped
// in dbexec.WithTx.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/taskmesh/taskmesh/internal/taskerr"
)

// Store is the concrete L2-L8 implementation. It holds a single *sql.DB
// (the pure-Go driver serializes writers internally; spec §5 requires no
// additional in-process locking beyond that).
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the SQLite database at path, enables
// foreign key enforcement on the connection (spec §5: "must be enabled on
// every connection"), and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, taskerr.New(taskerr.OpenFailed, "open database", err)
	}
	db.SetMaxOpenConns(1) // single writer per process; avoids SQLITE_BUSY churn

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, taskerr.New(taskerr.OpenFailed, "enable foreign keys", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, taskerr.New(taskerr.OpenFailed, "apply schema", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return taskerr.New(taskerr.ExecFailed, "close database", err)
	}
	return nil
}

// Path returns the filesystem path of the database file.
func (s *Store) Path() string { return s.path }

// DB exposes the underlying *sql.DB for the health checker and CLI doctor
// commands that need read-only introspection beyond the Store's own API.
// Mirrors the teacher's UnderlyingDB escape hatch (internal/storage/storage.go).
func (s *Store) DB() *sql.DB { return s.db }
