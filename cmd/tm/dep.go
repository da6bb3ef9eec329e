package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmesh/taskmesh/internal/output"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage blocks-on dependencies between tasks",
}

func init() {
	depCmd.AddCommand(depAddCmd, depRemoveCmd, depBlockersCmd, depDependentsCmd)
}

var depAddCmd = &cobra.Command{
	Use:   "add <task-id> <blocks-on-id>",
	Short: "Record that <task-id> blocks on <blocks-on-id>",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := resolveTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		blocksOnID, err := resolveTask(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		if err := store.AddDependency(cmd.Context(), taskID, blocksOnID, actor); err != nil {
			return err
		}
		fmt.Printf("%s now blocks on %s\n", args[0], args[1])
		return nil
	},
}

var depRemoveCmd = &cobra.Command{
	Use:   "remove <task-id> <blocks-on-id>",
	Short: "Remove a blocks-on edge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := resolveTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		blocksOnID, err := resolveTask(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		if err := store.RemoveDependency(cmd.Context(), taskID, blocksOnID, actor); err != nil {
			return err
		}
		fmt.Printf("%s no longer blocks on %s\n", args[0], args[1])
		return nil
	},
}

var depBlockersCmd = &cobra.Command{
	Use:   "blockers <task-id>",
	Short: "List the transitive chain of tasks blocking <task-id>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		rows, err := store.Blockers(cmd.Context(), id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.WriteJSON(os.Stdout, rows)
		}
		for _, r := range rows {
			fmt.Printf("depth %d: %s %s [%s]\n", r.Depth, r.Task.ExternalID(), r.Task.Title, r.Task.Status)
		}
		return nil
	},
}

var depDependentsCmd = &cobra.Command{
	Use:   "dependents <task-id>",
	Short: "List the transitive chain of tasks waiting on <task-id>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		rows, err := store.Dependents(cmd.Context(), id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.WriteJSON(os.Stdout, rows)
		}
		for _, r := range rows {
			fmt.Printf("depth %d: %s %s [%s]\n", r.Depth, r.Task.ExternalID(), r.Task.Title, r.Task.Status)
		}
		return nil
	},
}
