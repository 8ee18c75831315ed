package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
)

func TestNewJSONWriter_WritesStructuredLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelInfo).Named("stats").With("date", "24_01_15")
	logger.Info("snapshot written", "rows", 412, "error", errors.New("none"))

	var line map[string]any
	if err := sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["msg"] != "snapshot written" {
		t.Fatalf("unexpected msg: %v", line["msg"])
	}
	if line["logger"] != "stats" {
		t.Fatalf("unexpected logger name: %v", line["logger"])
	}
	if line["date"] != "24_01_15" {
		t.Fatalf("unexpected date field: %v", line["date"])
	}
	if line["level"] != "INFO" {
		t.Fatalf("unexpected level: %v", line["level"])
	}
}

func TestNewJSONWriter_RespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelWarn)
	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn line missing: %s", out)
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	t.Parallel()

	var logger *Logger
	logger.Info("no panic")
	if logger.Named("x") == nil || logger.With("k", "v") == nil {
		t.Fatalf("expected nop logger for nil receiver")
	}
}
