package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/taskmesh/taskmesh/internal/taskerr"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestInitCreatesWorkspace(t *testing.T) {
	chdir(t, t.TempDir())

	ws, err := Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := os.Stat(ws.Root); err != nil {
		t.Errorf(".taskmesh directory not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ws.Root, metaName)); err != nil {
		t.Errorf("meta.toml not created: %v", err)
	}
}

func TestInitRefusesWhenAlreadyInWorkspace(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	_, err := Init()
	if err == nil {
		t.Fatal("expected error initializing a workspace twice")
	}
	if kind, ok := taskerr.KindOf(err); !ok || kind != taskerr.AlreadyInWorkspace {
		t.Errorf("kind = %v, want AlreadyInWorkspace", kind)
	}
}

func TestDiscoverWalksUpFromSubdirectory(t *testing.T) {
	root := t.TempDir()
	chdir(t, root)
	if _, err := Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	sub := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	chdir(t, sub)

	ws, err := Discover()
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if ws.Root != filepath.Join(root, dirName) {
		t.Errorf("Discover().Root = %q, want %q", ws.Root, filepath.Join(root, dirName))
	}
}

func TestDiscoverFailsOutsideAnyWorkspace(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Discover()
	if err == nil {
		t.Fatal("expected error when no .taskmesh directory exists")
	}
	if kind, ok := taskerr.KindOf(err); !ok || kind != taskerr.NotAWorkspace {
		t.Errorf("kind = %v, want NotAWorkspace", kind)
	}
}

func TestReadMetaRoundTrip(t *testing.T) {
	chdir(t, t.TempDir())
	ws, err := Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	meta, err := ws.ReadMeta()
	if err != nil {
		t.Fatalf("ReadMeta: %v", err)
	}
	if meta.Version != currentMetaVersion {
		t.Errorf("meta.Version = %d, want %d", meta.Version, currentMetaVersion)
	}
	if meta.CreatedAt.IsZero() {
		t.Error("meta.CreatedAt is zero, want a stamped creation time")
	}
}

func TestDBPathAndLockPath(t *testing.T) {
	ws := Workspace{Root: "/tmp/example/.taskmesh"}
	if got, want := ws.DBPath(), "/tmp/example/.taskmesh/tasks.db"; got != want {
		t.Errorf("DBPath() = %q, want %q", got, want)
	}
	if got, want := ws.LockPath(), "/tmp/example/.taskmesh/.lock"; got != want {
		t.Errorf("LockPath() = %q, want %q", got, want)
	}
}

func TestWithLockRunsFn(t *testing.T) {
	chdir(t, t.TempDir())
	ws, err := Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	ran := false
	err = WithLock(context.Background(), ws, time.Second, func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("WithLock: %v", err)
	}
	if !ran {
		t.Error("WithLock did not run fn")
	}
}

func TestWithLockPropagatesFnError(t *testing.T) {
	chdir(t, t.TempDir())
	ws, err := Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	sentinel := errors.New("boom")
	err = WithLock(context.Background(), ws, time.Second, func() error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("WithLock error = %v, want %v", err, sentinel)
	}
}
