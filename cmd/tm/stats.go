package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmesh/taskmesh/internal/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show system-wide plan and task counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.SystemStats(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.WriteJSON(os.Stdout, s)
		}
		fmt.Printf("Plans:    %d total, %d completed\n", s.PlansTotal, s.PlansCompleted)
		fmt.Printf("Tasks:    %d total (%d open, %d in progress, %d completed)\n",
			s.TasksTotal, s.TasksOpen, s.TasksInProgress, s.TasksCompleted)
		fmt.Printf("Ready:    %d\n", s.ReadyCount)
		fmt.Printf("Blocked:  %d\n", s.BlockedCount)
		return nil
	},
}
