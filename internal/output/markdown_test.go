package output

import (
	"strings"
	"testing"
)

func TestRenderMarkdownEmptyReturnsEmpty(t *testing.T) {
	if got := RenderMarkdown(""); got != "" {
		t.Errorf("RenderMarkdown(\"\") = %q, want \"\"", got)
	}
}

func TestRenderMarkdownContainsSourceText(t *testing.T) {
	got := RenderMarkdown("# heading\n\nsome body text")
	if !strings.Contains(got, "heading") || !strings.Contains(got, "body text") {
		t.Errorf("RenderMarkdown output = %q, want it to contain the source text", got)
	}
}
