package logging

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestFileLoggerText tests text-format logging
func TestFileLoggerText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	logger, err := NewFileLogger(FileLoggerConfig{
		Path:   path,
		Format: FormatText,
		Level:  InfoLevel,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	ctx := context.Background()
	logger.Info(ctx, "file moved", Fields{"path": "/tmp/a.txt"})
	logger.Debug(ctx, "should be filtered", nil)
	logger.Error(ctx, "move failed", errors.New("disk full"), nil)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "[INFO] file moved") {
		t.Errorf("log missing info line: %q", content)
	}
	if !strings.Contains(content, "path=/tmp/a.txt") {
		t.Errorf("log missing field: %q", content)
	}
	if strings.Contains(content, "should be filtered") {
		t.Errorf("debug line should be filtered: %q", content)
	}
	if !strings.Contains(content, `error="disk full"`) {
		t.Errorf("log missing error: %q", content)
	}
}

// TestFileLoggerJSON tests JSON-format logging
func TestFileLoggerJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	logger, err := NewFileLogger(FileLoggerConfig{
		Path:   path,
		Format: FormatJSON,
		Level:  DebugLevel,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	logger.Warn(context.Background(), "destination exists", Fields{"dest": "/dst/a.txt"})
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", entry["level"])
	}
	if entry["message"] != "destination exists" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["dest"] != "/dst/a.txt" {
		t.Errorf("dest = %v", entry["dest"])
	}
}

// TestFileLoggerWithFields tests field inheritance
func TestFileLoggerWithFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	logger, err := NewFileLogger(FileLoggerConfig{
		Path:   path,
		Format: FormatText,
		Level:  InfoLevel,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	child := logger.WithFields(Fields{"run_id": "abc123"})
	child.Info(context.Background(), "hello", nil)
	logger.Close()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "run_id=abc123") {
		t.Errorf("log missing inherited field: %q", string(data))
	}
}

// TestRetry tests the bounded retry helper
func TestRetry(t *testing.T) {
	t.Run("SucceedsFirstTry", func(t *testing.T) {
		calls := 0
		err := Retry(3, time.Millisecond, func() error {
			calls++
			return nil
		})
		if err != nil {
			t.Errorf("Retry() error = %v", err)
		}
		if calls != 1 {
			t.Errorf("op called %d times, want 1", calls)
		}
	})

	t.Run("SucceedsAfterFailures", func(t *testing.T) {
		calls := 0
		err := Retry(3, time.Millisecond, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		if err != nil {
			t.Errorf("Retry() error = %v", err)
		}
		if calls != 3 {
			t.Errorf("op called %d times, want 3", calls)
		}
	})

	t.Run("ExhaustsAttempts", func(t *testing.T) {
		calls := 0
		err := Retry(3, time.Millisecond, func() error {
			calls++
			return errors.New("persistent")
		})
		if err == nil {
			t.Error("Retry() should return the last error")
		}
		if calls != 3 {
			t.Errorf("op called %d times, want 3", calls)
		}
	})

	t.Run("ClampsAttempts", func(t *testing.T) {
		calls := 0
		Retry(0, time.Millisecond, func() error {
			calls++
			return errors.New("x")
		})
		if calls != 1 {
			t.Errorf("op called %d times, want 1", calls)
		}
	})
}
