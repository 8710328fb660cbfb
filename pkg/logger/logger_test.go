package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func captureJSON(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Log
	t.Cleanup(func() { Log = prev })
	InitWithConfig(Config{Level: level, Format: "json", Writer: &buf})
	return &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestInit(t *testing.T) {
	prev := Log
	defer func() { Log = prev }()

	levels := []string{"debug", "info", "warn", "error", "unknown"}
	for _, level := range levels {
		Init(level)
		if Log == nil {
			t.Errorf("Init(%s) should set Log", level)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitWithConfig(t *testing.T) {
	prev := Log
	defer func() { Log = prev }()

	tests := []struct {
		name   string
		config Config
	}{
		{
			name: "json format stdout",
			config: Config{
				Level:  "info",
				Format: "json",
				Output: "stdout",
			},
		},
		{
			name: "text format stderr",
			config: Config{
				Level:  "debug",
				Format: "text",
				Output: "stderr",
			},
		},
		{
			name: "discard",
			config: Config{
				Level:  "info",
				Output: "discard",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitWithConfig(tt.config)
			if Log == nil {
				t.Error("Log should not be nil")
			}
		})
	}
}

func TestInitWithConfig_FileOutput(t *testing.T) {
	prev := Log
	defer func() { Log = prev }()

	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "nested", "test.log")

	InitWithConfig(Config{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logPath,
	})

	Log.Info("test message")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "test message") {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestInitWithConfig_LevelFilters(t *testing.T) {
	buf := captureJSON(t, "warn")

	Debug("hidden")
	Info("hidden")
	Warn("shown", "key", "value")
	Error("shown too")

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d: %s", len(lines), buf.String())
	}
	if lines[0]["key"] != "value" {
		t.Errorf("expected key=value, got %v", lines[0]["key"])
	}
}

func TestWithContext(t *testing.T) {
	buf := captureJSON(t, "info")

	ctx := ContextWith(context.Background(), "run_id", "r-1")
	ctx = ContextWith(ctx, "repetition", 3)
	WithContext(ctx, "key1", "value1").Info("hello")

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(lines))
	}
	if lines[0]["run_id"] != "r-1" {
		t.Errorf("run_id = %v", lines[0]["run_id"])
	}
	if lines[0]["repetition"] != float64(3) {
		t.Errorf("repetition = %v", lines[0]["repetition"])
	}
	if lines[0]["key1"] != "value1" {
		t.Errorf("key1 = %v", lines[0]["key1"])
	}
}

func TestWithContext_Empty(t *testing.T) {
	captureJSON(t, "info")

	if WithContext(context.Background()) != Log {
		t.Error("WithContext without attributes should return Log")
	}
}

func TestWithScenario(t *testing.T) {
	buf := captureJSON(t, "info")

	WithScenario("Small", "Best").Info("scenario")

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(lines))
	}
	if lines[0]["size"] != "Small" || lines[0]["case"] != "Best" {
		t.Errorf("unexpected attrs: %v", lines[0])
	}
}

