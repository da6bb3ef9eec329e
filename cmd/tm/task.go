package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmesh/taskmesh/internal/ids"
	"github.com/taskmesh/taskmesh/internal/output"
	"github.com/taskmesh/taskmesh/internal/types"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks within a plan",
}

func init() {
	taskCmd.AddCommand(
		taskCreateCmd, taskListCmd, taskShowCmd, taskUpdateCmd,
		taskStartCmd, taskCompleteCmd, taskCompleteBulkCmd, taskDeleteCmd,
		taskEventsCmd,
	)

	taskCreateCmd.Flags().String("description", "", "Markdown description")
	taskListCmd.Flags().String("status", "", "filter by status")
	taskListCmd.Flags().String("plan", "", "filter by plan slug")
	taskUpdateCmd.Flags().String("title", "", "new title")
	taskUpdateCmd.Flags().String("description", "", "new description")
	taskUpdateCmd.Flags().String("status", "", "new status")
	taskEventsCmd.Flags().Int("limit", 100, "maximum number of events to show")
}

var taskCreateCmd = &cobra.Command{
	Use:   "create <plan-slug> <title>",
	Short: "Create a new task under a plan",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		id, number, err := store.CreateTask(cmd.Context(), args[0], args[1], description, actor)
		if err != nil {
			return err
		}
		external := ids.FormatTaskID(args[0], number)
		if jsonOutput {
			return output.WriteJSON(os.Stdout, map[string]interface{}{"id": id, "external_id": external})
		}
		fmt.Printf("Created task %s\n", external)
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status *types.Status
		if s, _ := cmd.Flags().GetString("status"); s != "" {
			st := types.Status(s)
			status = &st
		}
		var plan *string
		if p, _ := cmd.Flags().GetString("plan"); p != "" {
			plan = &p
		}
		tasks, err := store.ListTasks(cmd.Context(), status, plan)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.WriteJSON(os.Stdout, tasks)
		}
		fmt.Println(output.RenderTaskTable(tasks))
		return nil
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show a single task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		t, ok, err := store.GetTask(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no such task %q", args[0])
		}
		if jsonOutput {
			return output.WriteJSON(os.Stdout, t)
		}
		fmt.Printf("%s: %s [%s]\n", t.ExternalID(), t.Title, t.Status)
		if t.Description != "" {
			fmt.Println()
			fmt.Println(output.RenderMarkdown(t.Description))
		}
		return nil
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update a task's title, description, and/or status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		var title, description *string
		var status *types.Status
		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			title = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			description = &v
		}
		if cmd.Flags().Changed("status") {
			v, _ := cmd.Flags().GetString("status")
			st := types.Status(v)
			status = &st
		}
		if err := store.UpdateTask(cmd.Context(), id, title, description, status, actor); err != nil {
			return err
		}
		fmt.Printf("Updated task %s\n", args[0])
		return nil
	},
}

var taskStartCmd = &cobra.Command{
	Use:   "start <task-id>",
	Short: "Transition a task to in_progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := store.StartTask(cmd.Context(), id, actor); err != nil {
			return err
		}
		fmt.Printf("Started task %s\n", args[0])
		return nil
	},
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Transition a task to completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := store.CompleteTask(cmd.Context(), id, actor); err != nil {
			return err
		}
		fmt.Printf("Completed task %s\n", args[0])
		return nil
	},
}

var taskCompleteBulkCmd = &cobra.Command{
	Use:   "complete-bulk <task-id> [task-id...]",
	Short: "Complete up to 1000 tasks in a single transaction, without blocker re-validation",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int64, 0, len(args))
		for _, raw := range args {
			id, err := resolveTask(cmd.Context(), raw)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		n, err := store.CompleteBulk(cmd.Context(), ids, actor)
		if err != nil {
			return err
		}
		fmt.Printf("Completed %d of %d task(s)\n", n, len(ids))
		return nil
	},
}

var taskEventsCmd = &cobra.Command{
	Use:   "events <task-id>",
	Short: "Show the audit trail for a task, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		t, ok, err := store.GetTask(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no such task %q", args[0])
		}
		limit, _ := cmd.Flags().GetInt("limit")
		events, err := store.GetEvents(cmd.Context(), t.ExternalID(), limit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.WriteJSON(os.Stdout, events)
		}
		for _, e := range events {
			fmt.Printf("[%s] %s %s by %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.EntityType, e.EventType, e.Actor)
		}
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task (refuses if another task still depends on it)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := store.DeleteTask(cmd.Context(), id, actor); err != nil {
			return err
		}
		fmt.Printf("Deleted task %s\n", args[0])
		return nil
	},
}
