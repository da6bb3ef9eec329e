package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskmesh/taskmesh/internal/output"
	"github.com/taskmesh/taskmesh/internal/workspace"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run the database health checks (spec §4.8) and report findings",
	RunE: func(cmd *cobra.Command, args []string) error {
		fix, _ := cmd.Flags().GetBool("fix")

		report, err := store.Health(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.WriteJSON(os.Stdout, report)
		}

		if len(report.Errors) == 0 && len(report.Warnings) == 0 {
			fmt.Println("No issues found.")
			return nil
		}
		for _, e := range report.Errors {
			fmt.Printf("ERROR [%s] %s\n", e.Check, e.Message)
		}
		for _, w := range report.Warnings {
			fmt.Printf("WARN  [%s] %s\n", w.Check, w.Message)
		}

		if fix && len(report.Errors) > 0 {
			fmt.Println()
			fmt.Println("--fix only re-runs the checks under an exclusive workspace lock; it does not")
			fmt.Println("auto-repair data-integrity errors, which require human review.")
			return workspace.WithLock(cmd.Context(), ws, 30*time.Second, func() error {
				return recheck(cmd.Context())
			})
		}
		return nil
	},
}

func recheck(ctx context.Context) error {
	report, err := store.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Re-checked under lock: %d error(s), %d warning(s)\n", len(report.Errors), len(report.Warnings))
	return nil
}

func init() {
	doctorCmd.Flags().Bool("fix", false, "re-run checks under an exclusive workspace lock")
}
