// Package output renders plan/task/dependency data for the CLI: tables and
// Markdown via the charm ecosystem (styled when attached to a terminal), or
// JSON when the caller selects JSON output. Grounded on the teacher's
// internal/ui package.
package output

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether stdout is attached to a TTY.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ShouldUseColor follows the NO_COLOR / CLICOLOR conventions, falling back
// to TTY detection.
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	return IsTerminal()
}

// GetWidth returns the terminal width, defaulting to 80 columns when it
// cannot be determined (piped output, non-TTY).
func GetWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
