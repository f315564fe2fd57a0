package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

func ParseLevel(level string) slog.Level {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return lvl
}

// NewRunLogger logs to stderr and, when fileTemplate is set, also to a per-day
// run log. fileTemplate may contain a Go time layout between braces, e.g.
// "HumidityLog_{20060102}.txt". Every record carries the run_id of this invocation.
// The returned closer must be called before exit.
func NewRunLogger(level string, dir, fileTemplate string, now time.Time) (*slog.Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if fileTemplate != "" {
		path := filepath.Join(dir, expandTemplate(fileTemplate, now))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("run log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("run log: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closer = f
	}
	logger := newLogger(w, ParseLevel(level)).With("run_id", uuid.NewString())
	return logger, closer, nil
}

func newLogger(w io.Writer, lvl slog.Level) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(h)
}

func expandTemplate(tmpl string, now time.Time) string {
	start := strings.IndexByte(tmpl, '{')
	end := strings.IndexByte(tmpl, '}')
	if start < 0 || end < start {
		return tmpl
	}
	return tmpl[:start] + now.Format(tmpl[start+1:end]) + tmpl[end+1:]
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
