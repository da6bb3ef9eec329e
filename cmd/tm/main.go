// Command tm is the taskmesh CLI: a dependency-aware task tracker backed by
// an embedded SQLite store, built for coordinating parallel execution of
// work items across autonomous agents.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
