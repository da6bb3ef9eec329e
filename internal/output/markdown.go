package output

import "github.com/charmbracelet/glamour"

// RenderMarkdown renders a task or plan description (an opaque Markdown
// blob, per spec) for terminal display. Falls back to the raw text if
// glamour cannot build a renderer (e.g. unsupported style in a very narrow
// terminal), never an error the caller has to handle.
func RenderMarkdown(body string) string {
	if body == "" {
		return ""
	}
	style := "notty"
	if ShouldUseColor() {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(GetWidth()),
	)
	if err != nil {
		return body
	}
	out, err := r.Render(body)
	if err != nil {
		return body
	}
	return out
}
