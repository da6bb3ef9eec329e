package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmesh/taskmesh/internal/output"
)

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "List open tasks with no incomplete blockers",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		tasks, err := store.ReadyTasks(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.WriteJSON(os.Stdout, tasks)
		}
		if len(tasks) == 0 {
			fmt.Println("No ready tasks.")
			return nil
		}
		fmt.Println(output.RenderTaskTable(tasks))
		return nil
	},
}

func init() {
	readyCmd.Flags().Int("limit", 0, "cap the number of results (0 = unbounded)")
}
