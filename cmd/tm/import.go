package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// importPlan is the on-disk shape of a YAML plan-import file: one plan plus
// its tasks, with dependencies expressed as indices into the tasks list so a
// whole plan can be authored and replayed before any task has a real id.
// Modeled on the teacher's JSONL bulk-import path (cmd/bd/autoimport.go),
// swapped from line-delimited JSON to a single YAML document since a plan
// import is a one-shot structured document, not a streamed log.
type importPlan struct {
	Plan struct {
		Slug        string `yaml:"slug"`
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
	} `yaml:"plan"`
	Tasks []importTask `yaml:"tasks"`
}

type importTask struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	BlocksOn    []int  `yaml:"blocks_on"` // indices into Tasks, 0-based
}

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Create a plan and its tasks from a YAML document",
	Long: `Create a plan and its tasks from a YAML document.

Example document:

  plan:
    slug: api-migration
    title: API migration
    description: Move the public API to v2.
  tasks:
    - title: Design the v2 schema
    - title: Implement v2 handlers
      blocks_on: [0]
    - title: Flip the default route
      blocks_on: [0, 1]

blocks_on entries are 0-based indices into the tasks list, resolved to real
task ids after every task in the document has been created.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		var doc importPlan
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}
		if doc.Plan.Slug == "" {
			return fmt.Errorf("%s: plan.slug is required", args[0])
		}
		if len(doc.Tasks) == 0 {
			return fmt.Errorf("%s: tasks is empty", args[0])
		}
		for i, t := range doc.Tasks {
			if t.Title == "" {
				return fmt.Errorf("%s: tasks[%d].title is required", args[0], i)
			}
			for _, b := range t.BlocksOn {
				if b < 0 || b >= len(doc.Tasks) {
					return fmt.Errorf("%s: tasks[%d].blocks_on references out-of-range index %d", args[0], i, b)
				}
			}
		}

		ctx := cmd.Context()

		p, ok, err := store.GetPlanSummary(ctx, doc.Plan.Slug)
		if err != nil {
			return err
		}
		if !ok {
			if _, err := store.CreatePlan(ctx, doc.Plan.Slug, doc.Plan.Title, doc.Plan.Description, nil, actor); err != nil {
				return err
			}
			fmt.Printf("Created plan %s\n", doc.Plan.Slug)
		} else {
			fmt.Printf("Reusing existing plan %s (%q)\n", doc.Plan.Slug, p.Title)
		}

		taskIDs := make([]int64, len(doc.Tasks))
		for i, t := range doc.Tasks {
			id, number, err := store.CreateTask(ctx, doc.Plan.Slug, t.Title, t.Description, actor)
			if err != nil {
				return fmt.Errorf("create task %q: %w", t.Title, err)
			}
			taskIDs[i] = id
			fmt.Printf("  created %s:%03d %s\n", doc.Plan.Slug, number, t.Title)
		}

		for i, t := range doc.Tasks {
			for _, b := range t.BlocksOn {
				if err := store.AddDependency(ctx, taskIDs[i], taskIDs[b], actor); err != nil {
					return fmt.Errorf("task %q blocks on task %q: %w", t.Title, doc.Tasks[b].Title, err)
				}
			}
		}

		fmt.Printf("Imported %d task(s) into plan %s\n", len(doc.Tasks), doc.Plan.Slug)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
