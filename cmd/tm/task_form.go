package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/taskmesh/taskmesh/internal/ids"
)

// taskFormRawInput holds the raw string values collected by the interactive
// form before parsing, mirroring the teacher's create_form.go split between
// raw UI values and the record they produce.
type taskFormRawInput struct {
	PlanSlug    string
	Title       string
	Description string
	BlocksOn    string // comma-separated task ids
}

var taskCreateFormCmd = &cobra.Command{
	Use:   "create-form",
	Short: "Create a new task using an interactive form",
	Long: `Create a new task using an interactive terminal form.

Keyboard navigation:
  Tab/Shift+Tab  move between fields
  Enter          submit the form
  Ctrl+C         cancel`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTaskCreateForm(cmd)
	},
}

func init() {
	taskCmd.AddCommand(taskCreateFormCmd)
}

func runTaskCreateForm(cmd *cobra.Command) error {
	plans, err := store.ListPlans(cmd.Context(), nil)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		return fmt.Errorf("no plans exist yet; run `tm plan create` first")
	}
	planOptions := make([]huh.Option[string], 0, len(plans))
	for _, p := range plans {
		planOptions = append(planOptions, huh.NewOption(fmt.Sprintf("%s (%s)", p.Slug, p.Title), p.Slug))
	}

	raw := &taskFormRawInput{}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Plan").
				Description("Which plan does this task belong to?").
				Options(planOptions...).
				Value(&raw.PlanSlug),

			huh.NewInput().
				Title("Title").
				Description("Brief summary of the task (required)").
				Placeholder("e.g., Wire the retry policy into the HTTP client").
				Value(&raw.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					if len(s) > 500 {
						return fmt.Errorf("title must be 500 characters or less")
					}
					return nil
				}),

			huh.NewText().
				Title("Description").
				Description("Markdown context for whoever picks this task up (optional)").
				CharLimit(5000).
				Value(&raw.Description),

			huh.NewInput().
				Title("Blocks on").
				Description("Comma-separated task ids this task must wait on (optional)").
				Placeholder("e.g., api-plan:001, api-plan:002").
				Value(&raw.BlocksOn),

			huh.NewConfirm().
				Title("Create this task?").
				Affirmative("Create").
				Negative("Cancel"),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			fmt.Fprintln(os.Stderr, "Task creation canceled.")
			return nil
		}
		return err
	}

	id, number, err := store.CreateTask(cmd.Context(), raw.PlanSlug, raw.Title, raw.Description, actor)
	if err != nil {
		return err
	}

	for _, dep := range strings.Split(raw.BlocksOn, ",") {
		dep = strings.TrimSpace(dep)
		if dep == "" {
			continue
		}
		blocksOnID, err := resolveTask(cmd.Context(), dep)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping dependency %q: %v\n", dep, err)
			continue
		}
		if err := store.AddDependency(cmd.Context(), id, blocksOnID, actor); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to add dependency on %q: %v\n", dep, err)
		}
	}

	external := ids.FormatTaskID(raw.PlanSlug, number)
	fmt.Printf("\nCreated task %s\n", external)
	fmt.Printf("  Title: %s\n", raw.Title)
	return nil
}
