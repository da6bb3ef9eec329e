package output

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#6124DF", Dark: "#8B5CF6"}
	colorPass   = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"}
	colorWarn   = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"}
	colorFail   = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#57606A", Dark: "#8B949E"}
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	borderStyle = lipgloss.NewStyle().Foreground(colorMuted)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
)

// statusStyle colors a lifecycle status for table cells.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case "completed":
		return lipgloss.NewStyle().Foreground(colorPass)
	case "in_progress":
		return lipgloss.NewStyle().Foreground(colorAccent)
	default:
		return lipgloss.NewStyle().Foreground(colorMuted)
	}
}
