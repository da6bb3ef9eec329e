//go:build scripttests
// +build scripttests

package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"rsc.io/script"
	"rsc.io/script/scripttest"
)

// TestScripts drives the tm binary end-to-end against testdata/*.txt command
// scripts. Grounded on the teacher's cmd/bd/scripttest_test.go: build the
// real binary, register it in a script.Engine, and let scripttest walk the
// test files rather than re-implementing a CLI harness in Go.
func TestScripts(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("scripttest uses Unix shell commands (sh -c), skipping on Windows")
	}

	exeName := "tm"
	binDir := t.TempDir()
	exe := filepath.Join(binDir, exeName)
	if err := exec.Command("go", "build", "-o", exe, ".").Run(); err != nil {
		t.Fatal(err)
	}

	timeout := 5 * time.Second
	engine := script.NewEngine()
	engine.Cmds["tm"] = script.Program(exe, nil, timeout)

	currentPath := os.Getenv("PATH")
	env := []string{"PATH=" + binDir + ":" + currentPath}

	scripttest.Test(t, context.Background(), engine, env, "testdata/*.txt")
}
