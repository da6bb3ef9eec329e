// Package logging sets up the process-wide structured logger: a rotating
// file handler via lumberjack wrapped in log/slog, following the pattern
// used for beads' daemon logger (cmd/bd/daemon_logger.go) adapted to a
// single always-on logger rather than a daemon-only one.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logger. Dir empty means log to stderr only.
type Options struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	Level      string
	JSON       bool
}

// New builds a *slog.Logger per opts. When Dir is set, output is written to
// <Dir>/taskmesh.log via lumberjack rotation; otherwise it goes to stderr.
func New(opts Options) *slog.Logger {
	var w io.Writer = os.Stderr
	if opts.Dir != "" {
		w = &lumberjack.Logger{
			Filename:   opts.Dir + "/taskmesh.log",
			MaxSize:    nonZero(opts.MaxSizeMB, 10),
			MaxBackups: nonZero(opts.MaxBackups, 5),
			Compress:   true,
		}
	}

	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything, for tests that need a
// *slog.Logger but don't care about its output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func nonZero(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
