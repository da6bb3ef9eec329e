package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmesh/taskmesh/internal/output"
	"github.com/taskmesh/taskmesh/internal/types"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage plans — named collections of tasks",
}

func init() {
	planCmd.AddCommand(planCreateCmd, planListCmd, planShowCmd, planUpdateCmd, planDeleteCmd)

	planCreateCmd.Flags().String("description", "", "Markdown description")
	planListCmd.Flags().String("status", "", "filter by status (open, in_progress, completed)")
	planUpdateCmd.Flags().String("title", "", "new title")
	planUpdateCmd.Flags().String("description", "", "new description")
}

var planCreateCmd = &cobra.Command{
	Use:   "create <slug> <title>",
	Short: "Create a new plan",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		p, err := store.CreatePlan(cmd.Context(), args[0], args[1], description, nil, actor)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.WriteJSON(os.Stdout, p)
		}
		fmt.Printf("Created plan %s (%q)\n", p.Slug, p.Title)
		return nil
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status *types.Status
		if s, _ := cmd.Flags().GetString("status"); s != "" {
			st := types.Status(s)
			status = &st
		}
		plans, err := store.ListPlans(cmd.Context(), status)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.WriteJSON(os.Stdout, plans)
		}
		fmt.Println(output.RenderPlanTable(plans))
		return nil
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show a single plan and its task counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, ok, err := store.GetPlanSummary(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no such plan %q", args[0])
		}
		if jsonOutput {
			return output.WriteJSON(os.Stdout, p)
		}
		fmt.Printf("%s: %s [%s]\n", p.Slug, p.Title, p.Status)
		fmt.Printf("  tasks: %d open, %d in progress, %d completed\n", p.Tasks.Open, p.Tasks.InProgress, p.Tasks.Completed)
		if p.Description != "" {
			fmt.Println()
			fmt.Println(output.RenderMarkdown(p.Description))
		}
		return nil
	},
}

var planUpdateCmd = &cobra.Command{
	Use:   "update <slug>",
	Short: "Update a plan's title and/or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var title, description *string
		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			title = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			description = &v
		}
		if err := store.UpdatePlan(cmd.Context(), args[0], title, description, actor); err != nil {
			return err
		}
		fmt.Printf("Updated plan %s\n", args[0])
		return nil
	},
}

var planDeleteCmd = &cobra.Command{
	Use:   "delete <slug>",
	Short: "Delete a plan and all of its tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := store.DeletePlan(cmd.Context(), args[0], actor)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("no such plan %q", args[0])
		}
		fmt.Printf("Deleted plan %s\n", args[0])
		return nil
	},
}
