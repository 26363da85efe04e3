package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theyoprst/pip-accel/internal/logging"
)

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "console-info.log")

	opts := logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	}

	logger, err := logging.New(opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "console-debug.log")

	opts := logging.Options{
		Format:           "console",
		Level:            "debug",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	}

	logger, err := logging.New(opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerPromotesComponent(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "console-component.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "fakes3").Info("service started", logging.Int(logging.FieldPID, 4242))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "fakes3: service started") {
		t.Fatalf("expected component prefix in %q", line)
	}
	if !strings.Contains(line, "pid=4242") {
		t.Fatalf("expected pid attribute in %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be promoted out of attrs, got %q", line)
	}
}

func TestNewJSONLogger(t *testing.T) {
	opts := logging.Options{Format: "json", Level: "debug"}
	logger, err := logging.New(opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Info("json message", logging.String("k", "v"))
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "level.log")

	logger, err := logging.New(logging.Options{Format: "console", Level: "invalid", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("should be suppressed")
	logger.Info("should appear")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), "suppressed") {
		t.Fatalf("debug line should be filtered at info level, got %q", content)
	}
	if !strings.Contains(string(content), "should appear") {
		t.Fatalf("info line missing from %q", content)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Info("discarded")
	logger.Error("also discarded", logging.Error(os.ErrNotExist))
}
