package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmesh/taskmesh/internal/output"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Attach free-form notes to a task",
}

func init() {
	commentCmd.AddCommand(commentAddCmd, commentListCmd)
}

var commentAddCmd = &cobra.Command{
	Use:   "add <task-id> <body>",
	Short: "Add a comment to a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		who := actor
		if who == "" {
			who = "unknown"
		}
		c, err := store.AddComment(cmd.Context(), id, who, args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.WriteJSON(os.Stdout, c)
		}
		fmt.Printf("Added comment %d to %s\n", c.ID, args[0])
		return nil
	},
}

var commentListCmd = &cobra.Command{
	Use:   "list <task-id>",
	Short: "List comments on a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		comments, err := store.ListComments(cmd.Context(), id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.WriteJSON(os.Stdout, comments)
		}
		for _, c := range comments {
			fmt.Printf("[%s] %s: %s\n", c.CreatedAt.Format("2006-01-02 15:04"), c.Author, c.Body)
		}
		return nil
	},
}
