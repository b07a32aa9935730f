package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lessonforge.log")
	log, err := New(Config{Level: "debug", Format: "json", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.With("plan_id", "p1").Info("batch done", "completed", 3, "api_key", "sk-123")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"plan_id":"p1"`) || !strings.Contains(out, `"completed":3`) {
		t.Errorf("missing fields in %s", out)
	}
	if strings.Contains(out, "sk-123") {
		t.Errorf("api key leaked: %s", out)
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	l.Info("ignored", "k", "v")
	l.With("a", 1).Warn("ignored")
}
