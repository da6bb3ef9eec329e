package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/taskmesh/taskmesh/internal/types"
)

// RenderPlanTable renders a slice of plan summaries as a bordered table.
func RenderPlanTable(plans []types.PlanSummary) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("SLUG", "TITLE", "STATUS", "OPEN", "IN PROGRESS", "DONE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, p := range plans {
		t.Row(p.Slug, truncate(p.Title, 40), string(p.Status),
			fmt.Sprint(p.Tasks.Open), fmt.Sprint(p.Tasks.InProgress), fmt.Sprint(p.Tasks.Completed))
	}
	return t.Render()
}

// RenderTaskTable renders a slice of tasks as a bordered table.
func RenderTaskTable(tasks []types.Task) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("ID", "TITLE", "STATUS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if col == 2 {
				return statusStyle(string(tasks[row].Status)).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, task := range tasks {
		t.Row(task.ExternalID(), truncate(task.Title, 50), string(task.Status))
	}
	return t.Render()
}

// RenderBlockedTable renders blocked tasks with their outstanding blocker
// counts.
func RenderBlockedTable(blocked []types.BlockedTask) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("ID", "TITLE", "STATUS", "BLOCKERS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, b := range blocked {
		t.Row(b.Task.ExternalID(), truncate(b.Task.Title, 40), string(b.Task.Status), fmt.Sprint(b.BlockerCount))
	}
	return t.Render()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
