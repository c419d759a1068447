package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tvscribe/internal/logging"
)

func TestNewConsoleWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("segment queued", logging.String("channel", "itv"), logging.Int("depth", 3))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "segment queued") {
		t.Fatalf("expected message in output, got %q", line)
	}
	if !strings.Contains(line, "channel=itv") || !strings.Contains(line, "depth=3") {
		t.Fatalf("expected attrs in output, got %q", line)
	}
}

func TestNewConsoleFiltersBelowLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "filtered.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "warn",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("too quiet")
	logger.Warn("loud enough")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "too quiet") {
		t.Fatalf("info record should be filtered, got %q", out)
	}
	if !strings.Contains(out, "loud enough") {
		t.Fatalf("warn record missing, got %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewJSONFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")

	logger, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("queued", logging.String("channel", "itv"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"channel":"itv"`) {
		t.Fatalf("expected JSON attr, got %q", string(data))
	}
}

func TestComponentLoggerTagsRecords(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "watcher")
	// No-op base logger: this only needs to not panic.
	logger.Info("scan complete")
}
