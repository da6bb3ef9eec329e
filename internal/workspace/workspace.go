// Package workspace locates and initializes the .taskmesh workspace
// directory: walk-up discovery (mirroring the teacher's config.yaml lookup
// in internal/config/config.go), a meta.toml stamp file, and a
// gofrs/flock advisory lock guarding exclusive operations such as doctor
// --fix (mirroring the teacher's sync lock in cmd/bd/sync.go).
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"

	"github.com/taskmesh/taskmesh/internal/taskerr"
)

const (
	dirName  = ".taskmesh"
	metaName = "meta.toml"
	dbName   = "tasks.db"
	lockName = ".lock"
)

// Meta is the workspace stamp file persisted at .taskmesh/meta.toml.
type Meta struct {
	Version   int       `toml:"version"`
	CreatedAt time.Time `toml:"created_at"`
}

const currentMetaVersion = 1

// Workspace is a resolved, existing .taskmesh directory.
type Workspace struct {
	Root string // the .taskmesh directory itself
}

// DBPath returns the path to the SQLite store inside the workspace.
func (w Workspace) DBPath() string { return filepath.Join(w.Root, dbName) }

// LockPath returns the path to the advisory lock file.
func (w Workspace) LockPath() string { return filepath.Join(w.Root, lockName) }

// Discover walks up from the current working directory looking for a
// .taskmesh directory, the way the teacher's config loader walks up looking
// for .beads/config.yaml. Returns taskerr.NotAWorkspace if none is found
// before reaching the filesystem root.
func Discover() (Workspace, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Workspace{}, taskerr.New(taskerr.NotAWorkspace, "resolve working directory", err)
	}
	for dir := cwd; ; {
		candidate := filepath.Join(dir, dirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return Workspace{Root: candidate}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return Workspace{}, taskerr.New(taskerr.NotAWorkspace, "no .taskmesh directory found in any parent of "+cwd, nil)
}

// Init creates a new .taskmesh directory in the current working directory
// and stamps it with meta.toml. Fails with AlreadyInWorkspace if one already
// exists in this directory or any ancestor.
func Init() (Workspace, error) {
	if _, err := Discover(); err == nil {
		return Workspace{}, taskerr.New(taskerr.AlreadyInWorkspace, "a .taskmesh directory already governs this path", nil)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return Workspace{}, taskerr.New(taskerr.NotAWorkspace, "resolve working directory", err)
	}
	root := filepath.Join(cwd, dirName)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return Workspace{}, taskerr.New(taskerr.NotAWorkspace, "create .taskmesh directory", err)
	}

	meta := Meta{Version: currentMetaVersion, CreatedAt: time.Now().UTC()}
	f, err := os.Create(filepath.Join(root, metaName))
	if err != nil {
		return Workspace{}, taskerr.New(taskerr.NotAWorkspace, "create meta.toml", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(meta); err != nil {
		return Workspace{}, taskerr.New(taskerr.NotAWorkspace, "write meta.toml", err)
	}

	return Workspace{Root: root}, nil
}

// ReadMeta loads meta.toml from an already-discovered workspace.
func (w Workspace) ReadMeta() (Meta, error) {
	var m Meta
	_, err := toml.DecodeFile(filepath.Join(w.Root, metaName), &m)
	if err != nil {
		return Meta{}, taskerr.New(taskerr.NotAWorkspace, "read meta.toml", err)
	}
	return m, nil
}

// WithLock runs fn while holding an exclusive advisory lock on the
// workspace, blocking up to timeout to acquire it. Used by doctor --fix and
// other operations that must not race a concurrent writer.
func WithLock(ctx context.Context, w Workspace, timeout time.Duration, fn func() error) error {
	lock := flock.New(w.LockPath())

	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		return taskerr.New(taskerr.ExecFailed, "acquire workspace lock", err)
	}
	if !locked {
		return taskerr.New(taskerr.ExecFailed, fmt.Sprintf("could not acquire workspace lock within %s", timeout), nil)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}
