package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskmesh/taskmesh/internal/storage/sqlite"
	"github.com/taskmesh/taskmesh/internal/workspace"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .taskmesh workspace in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workspace.Init()
		if err != nil {
			return err
		}
		s, err := sqlite.Open(cmd.Context(), w.DBPath())
		if err != nil {
			return err
		}
		defer s.Close()

		fmt.Printf("Initialized taskmesh workspace at %s\n", w.Root)
		return nil
	},
}
