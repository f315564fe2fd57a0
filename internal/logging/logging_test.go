package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"chatty", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExpandTemplate(t *testing.T) {
	now := time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)
	if got := expandTemplate("HumidityLog_{20060102}.txt", now); got != "HumidityLog_20261019.txt" {
		t.Fatalf("got %q", got)
	}
	if got := expandTemplate("PlotLog.txt", now); got != "PlotLog.txt" {
		t.Fatalf("got %q", got)
	}
}

func TestRunLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)
	logger, closer, err := NewRunLogger("debug", dir, "HumidityLog_{20060102}.txt", now)
	if err != nil {
		t.Fatalf("NewRunLogger: %v", err)
	}
	logger.Debug("reading sensor", "driver", "mock")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "HumidityLog_20261019.txt"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "reading sensor") || !strings.Contains(out, "run_id=") {
		t.Fatalf("unexpected run log: %s", out)
	}
}
