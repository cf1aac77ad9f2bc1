// Package logging builds the slog logger shared by the CLI and the pipeline
// stages.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFile is where file output goes when no path is configured.
var DefaultFile = filepath.Join("logs", "app.log")

// Options selects level, encoding and sink.
type Options struct {
	Level  string // debug|info|warn|error
	Format string // text|json
	Output string // stderr|stdout|file|both
	File   string // log file path for file and both
}

// New returns a logger and a close function for any file it opened. The
// close function is never nil.
func New(opt Options) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }
	var (
		out     io.Writer
		closeFn = noop
	)
	switch strings.ToLower(opt.Output) {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "file", "both":
		f, err := openLogFile(opt.File)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open log file: %w", err)
		}
		closeFn = f.Close
		out = f
		if strings.EqualFold(opt.Output, "both") {
			out = io.MultiWriter(os.Stderr, f)
		}
	default:
		return nil, noop, fmt.Errorf("unknown log output %q", opt.Output)
	}
	return NewWriter(out, opt), closeFn, nil
}

// NewWriter builds a logger writing to w; Output and File are ignored.
func NewWriter(w io.Writer, opt Options) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: ParseLevel(opt.Level)}
	var h slog.Handler
	if strings.EqualFold(opt.Format, "json") {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}
	return slog.New(h)
}

// ParseLevel converts a level name; unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		path = DefaultFile
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
