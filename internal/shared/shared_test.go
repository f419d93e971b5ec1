package shared

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestShared(t *testing.T) {
	t.Run("NewLogger", func(t *testing.T) {
		t.Run("writes to the provided writer", func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewLogger(buf)

			logger.Info("hello")

			if !strings.Contains(buf.String(), "hello") {
				t.Errorf("expected log output to contain message, got %q", buf.String())
			}
		})

		t.Run("nil writer falls back to stderr", func(t *testing.T) {
			if NewLogger(nil) == nil {
				t.Error("expected a logger")
			}
		})
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "app.log")

		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Info("to file")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected log file to be created: %v", err)
		}
		if !strings.Contains(string(data), "to file") {
			t.Errorf("expected log file to contain message, got %q", data)
		}
	})

	t.Run("WithLogger adds context", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := WithLogger(NewLogger(buf), "component", "tracker")

		logger.Info("tick")

		if !strings.Contains(buf.String(), "tracker") {
			t.Errorf("expected child logger to carry key-values, got %q", buf.String())
		}
	})

	t.Run("GenerateID is unique", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if a == b {
			t.Error("expected distinct ids")
		}
		if len(a) != 36 {
			t.Errorf("expected uuid format, got %q", a)
		}
	})

	t.Run("GenerateState", func(t *testing.T) {
		state, err := GenerateState()
		if err != nil {
			t.Fatalf("GenerateState failed: %v", err)
		}
		if len(state) != 32 {
			t.Errorf("expected 32 hex chars, got %d", len(state))
		}
		if _, err := hex.DecodeString(state); err != nil {
			t.Errorf("state is not hex: %v", err)
		}

		other, _ := GenerateState()
		if state == other {
			t.Error("expected distinct state tokens")
		}
	})

	t.Run("MarshalJSON", func(t *testing.T) {
		data := map[string]string{"key": "value"}

		compact, err := MarshalJSON(data, false)
		if err != nil {
			t.Fatalf("MarshalJSON failed: %v", err)
		}
		if string(compact) != `{"key":"value"}` {
			t.Errorf("unexpected compact output: %s", compact)
		}

		pretty, err := MarshalJSON(data, true)
		if err != nil {
			t.Fatalf("MarshalJSON pretty failed: %v", err)
		}
		if !strings.Contains(string(pretty), "\n") {
			t.Error("expected pretty output to be indented")
		}
	})
}
