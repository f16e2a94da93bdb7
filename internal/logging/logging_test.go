package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesFileAndConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskdeck.log")
	var console bytes.Buffer

	logger, err := New(Options{Path: path, Level: "debug", Console: &console})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Infow("task created", "task_id", "t1")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"task_id":"t1"`) {
		t.Fatalf("expected JSON field in log file, got %q", data)
	}
	if !strings.Contains(console.String(), "task created") {
		t.Fatalf("expected console output, got %q", console.String())
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatalf("expected unknown level to fail")
	}
}

func TestNewWithoutOutputsIsNop(t *testing.T) {
	logger, err := New(Options{})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Infow("dropped")
}
