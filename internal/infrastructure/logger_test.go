package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chunkdash/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "test.log")

	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if logger == nil {
		t.Fatal("Logger is nil")
	}

	logger.Info("test message", "key", "value")
	CloseLogFile()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	var logEntry map[string]interface{}
	if err := json.Unmarshal(content, &logEntry); err != nil {
		t.Fatalf("Log output is not valid JSON: %v", err)
	}
	if logEntry["msg"] != "test message" {
		t.Errorf("Expected msg='test message', got %v", logEntry["msg"])
	}
	if logEntry["key"] != "value" {
		t.Errorf("Expected key='value', got %v", logEntry["key"])
	}
	if logEntry["level"] != "INFO" {
		t.Errorf("Expected level='INFO', got %v", logEntry["level"])
	}
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(config.LoggingConfig{Level: "debug", Format: "json"}, &buf)

	ctx := WithTraceID(context.Background(), "test-trace-123")
	logger.InfoContext(ctx, "test with trace")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}
	if logEntry["trace_id"] != "test-trace-123" {
		t.Errorf("Expected trace_id='test-trace-123', got %v", logEntry["trace_id"])
	}

	// attributes and groups keep the trace handler
	buf.Reset()
	WithComponent(logger, "reports").WithGroup("run").InfoContext(ctx, "grouped", "rows", 3)
	if !strings.Contains(buf.String(), `"trace_id":"test-trace-123"`) {
		t.Errorf("Expected trace_id in grouped output, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"component":"reports"`) {
		t.Errorf("Expected component in output, got %s", buf.String())
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		infoSeen  bool
		warnSeen  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warning", false, false, true},
		{"error", false, false, false},
		{"bogus", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter(config.LoggingConfig{Level: tt.level, Format: "json"}, &buf)

			logger.Debug("debug-line")
			logger.Info("info-line")
			logger.Warn("warn-line")

			out := buf.String()
			if got := strings.Contains(out, "debug-line"); got != tt.debugSeen {
				t.Errorf("debug logged = %v, want %v", got, tt.debugSeen)
			}
			if got := strings.Contains(out, "info-line"); got != tt.infoSeen {
				t.Errorf("info logged = %v, want %v", got, tt.infoSeen)
			}
			if got := strings.Contains(out, "warn-line"); got != tt.warnSeen {
				t.Errorf("warn logged = %v, want %v", got, tt.warnSeen)
			}
		})
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	logger.Info("plain", "k", "v")

	if !strings.Contains(buf.String(), "msg=plain") || !strings.Contains(buf.String(), "k=v") {
		t.Errorf("unexpected text output: %s", buf.String())
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	if id == "" {
		t.Fatal("EnsureTraceID did not set a trace id")
	}
	if again := GetTraceID(EnsureTraceID(ctx)); again != id {
		t.Errorf("EnsureTraceID replaced existing id %s with %s", id, again)
	}
	if GetTraceID(context.Background()) != "" {
		t.Error("empty context should have no trace id")
	}
}
