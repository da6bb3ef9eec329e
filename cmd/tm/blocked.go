package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmesh/taskmesh/internal/output"
)

var blockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "List non-completed tasks with at least one incomplete blocker",
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, err := store.BlockedTasks(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.WriteJSON(os.Stdout, tasks)
		}
		if len(tasks) == 0 {
			fmt.Println("No blocked tasks.")
			return nil
		}
		fmt.Println(output.RenderBlockedTable(tasks))
		return nil
	},
}
