package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/helixml/briefer/internal/config"
)

func TestNew_JSONLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LogFormatJSON, "DEBUG")
	ctx := context.Background()

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 log lines, got %d", len(lines))
	}
	for i, line := range lines {
		var data map[string]any
		if err := json.Unmarshal([]byte(line), &data); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LogFormatJSON, "WARN")
	ctx := context.Background()

	logger.Debug(ctx, "hidden")
	logger.Info(ctx, "hidden")
	logger.Warn(ctx, "shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("messages below WARN should be filtered: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("WARN message should be logged")
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LogFormatJSON, "INFO").With("component", "queue")

	logger.Info(context.Background(), "published")

	var data map[string]any
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if data["component"] != "queue" {
		t.Errorf("component = %v, want queue", data["component"])
	}
}

func TestLogger_AddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LogFormatJSON, "INFO")
	ctx := WithCorrelationID(context.Background(), "corr-123")

	logger.Info(ctx, "with context")

	var data map[string]any
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if data["correlation_id"] != "corr-123" {
		t.Errorf("correlation_id = %v, want corr-123", data["correlation_id"])
	}
}

func TestLogger_NoCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LogFormatJSON, "INFO")

	logger.Info(context.Background(), "plain")

	if strings.Contains(buf.String(), "correlation_id") {
		t.Errorf("unexpected correlation_id in %s", buf.String())
	}
}

func TestCorrelationID_NotSet(t *testing.T) {
	if id := CorrelationID(context.Background()); id != "" {
		t.Errorf("CorrelationID() = %v, want empty", id)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.NewAppConfigWithOptions(
		config.WithLogLevel("DEBUG"),
		config.WithLogFormat(config.LogFormatJSON),
	)
	logger := FromConfig(cfg)

	if logger == nil || logger.Slog() == nil {
		t.Fatal("FromConfig should return a usable logger")
	}
	if !logger.Slog().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("DEBUG should be enabled")
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Error(context.Background(), "dropped")
	if logger.Slog().Enabled(context.Background(), slog.LevelError) {
		t.Error("Nop logger should not be enabled at any level")
	}
}
