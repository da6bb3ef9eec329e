package output

import (
	"os"
	"testing"
)

func unsetColorEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NO_COLOR", "CLICOLOR", "CLICOLOR_FORCE"} {
		old, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			}
		})
	}
}

func TestShouldUseColorRespectsNoColor(t *testing.T) {
	unsetColorEnv(t)
	os.Setenv("NO_COLOR", "1")
	if ShouldUseColor() {
		t.Error("ShouldUseColor() = true with NO_COLOR set, want false")
	}
}

func TestShouldUseColorRespectsCliColorZero(t *testing.T) {
	unsetColorEnv(t)
	os.Setenv("CLICOLOR", "0")
	if ShouldUseColor() {
		t.Error("ShouldUseColor() = true with CLICOLOR=0, want false")
	}
}

func TestShouldUseColorRespectsCliColorForce(t *testing.T) {
	unsetColorEnv(t)
	os.Setenv("CLICOLOR_FORCE", "1")
	if !ShouldUseColor() {
		t.Error("ShouldUseColor() = false with CLICOLOR_FORCE set, want true")
	}
}

func TestGetWidthDefaultsWhenNotATerminal(t *testing.T) {
	// The test binary's stdout is not a TTY, so GetWidth must fall back to 80.
	if got := GetWidth(); got != 80 {
		t.Errorf("GetWidth() = %d, want 80 when stdout is not a terminal", got)
	}
}
