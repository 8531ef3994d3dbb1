package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newJSONLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "test", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid json log line %q: %v", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "invalid-level", Format: "json"}, "test", &buf)
	l.Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Error("expected invalid level to fall back to info")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "warn")
	l.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn level, got %q", buf.String())
	}
	l.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Error("expected warn message")
	}
}

func TestWithComponentAndPipeline(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "debug").WithComponent("scheduler").WithPipeline("Projects")
	l.Info("pipeline started", Fields(FieldDocuments, 3))

	m := decodeLine(t, &buf)
	if m[FieldComponent] != "scheduler" {
		t.Errorf("expected component=scheduler, got %v", m[FieldComponent])
	}
	if m[FieldPipeline] != "Projects" {
		t.Errorf("expected pipeline=Projects, got %v", m[FieldPipeline])
	}
	if m[FieldDocuments] != float64(3) {
		t.Errorf("expected documents=3, got %v", m[FieldDocuments])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	newJSONLogger(&buf, "info").WithError(errors.New("boom")).Error("failed")
	m := decodeLine(t, &buf)
	if m["error"] != "boom" {
		t.Errorf("expected error=boom, got %v", m["error"])
	}
}

func TestNop(t *testing.T) {
	// must not panic
	Nop().Info("nothing", Fields("k", "v"))
}

func TestFields(t *testing.T) {
	f := Fields("a", 1, "b", "two", 3, "ignored-key-not-string", "dangling")
	if f["a"] != 1 || f["b"] != "two" {
		t.Errorf("unexpected fields: %v", f)
	}
	if len(f) != 2 {
		t.Errorf("expected 2 fields, got %d", len(f))
	}
}

func TestDurationFields(t *testing.T) {
	f := DurationFields("fetch", 1500*time.Millisecond)
	if f[FieldOperation] != "fetch" || f[FieldDuration] != int64(1500) {
		t.Errorf("unexpected fields: %v", f)
	}
}

func TestErrorFields(t *testing.T) {
	f := ErrorFields("fetch", errors.New("x"))
	if f[FieldError] != "x" {
		t.Errorf("unexpected fields: %v", f)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cfg.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown format")
	}
}
