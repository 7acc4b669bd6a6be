package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"whisperwiz/internal/config"
	"whisperwiz/internal/services"
)

func newTestLogger(buf *bytes.Buffer, level slog.Level, addSource bool) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(level)
	return slog.New(newPrettyHandler(buf, lvl, addSource))
}

func TestPrettyHandlerLayout(t *testing.T) {
	var buf bytes.Buffer
	logger := NewComponentLogger(newTestLogger(&buf, slog.LevelInfo, false), "pipeline")
	logger.With(String(FieldRunID, "1a2b3c4d-5e6f")).Info("item finished", String("file", "a.wav"), String("note", "two words"))

	line := buf.String()
	for _, want := range []string{" INFO ", "[run 1a2b3c4d] ", "pipeline: item finished", "file=a.wav", `note="two words"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as prefix, got %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("info line should not include caller, got %q", line)
	}
}

func TestPrettyHandlerAddsSourceAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelDebug, true)
	logger.WithGroup("media").Debug("transcode", Int("exit", 1), Error(errors.New("boom")))

	line := buf.String()
	if !strings.Contains(line, "[logger_test.go:") {
		t.Fatalf("expected caller in %q", line)
	}
	if !strings.Contains(line, "media.exit=1") || !strings.Contains(line, "media.error=boom") {
		t.Fatalf("expected grouped keys in %q", line)
	}
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelWarn, false)
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
	logger.Warn("")
	if !strings.Contains(buf.String(), "WARN (no message)") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestNewJSONWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "out.log")
	logger, err := New(Options{Level: "debug", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello", String("file", "a.wav"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	if entry["msg"] != "hello" || entry["level"] != "info" || entry["file"] != "a.wav" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key in %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := parseLevel("loud"); got != slog.LevelInfo {
		t.Fatalf("got %v", got)
	}
	if got := parseLevel(" Warning "); got != slog.LevelWarn {
		t.Fatalf("got %v", got)
	}
}

func TestNewFromConfigCreatesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "state")
	logger, err := NewFromConfig(&cfg, "")
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("ready")
	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "whisperwiz.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "ready") {
		t.Fatalf("log file missing message: %q", data)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := services.WithRunID(context.Background(), "run-42")
	ctx = services.WithItem(ctx, "/in/a.wav")
	ctx = services.WithStage(ctx, "transcribe")

	WithContext(ctx, newTestLogger(&buf, slog.LevelInfo, false)).Info("working")
	line := buf.String()
	for _, want := range []string{"[run run-42] ", "item=/in/a.wav", "stage=transcribe"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
}

func TestWithContextNilLogger(t *testing.T) {
	if WithContext(context.Background(), nil) == nil {
		t.Fatal("expected no-op logger")
	}
}

func TestDomainAttrsRender(t *testing.T) {
	var buf bytes.Buffer
	newTestLogger(&buf, slog.LevelInfo, false).Info("item finished",
		File("b.mp4"),
		Segments(2),
		Elapsed(1500*time.Millisecond),
		Count(1, 3),
	)
	line := buf.String()
	for _, want := range []string{"file=b.mp4", "segments=2", "elapsed=1.5s", "count.completed=1", "count.total=3"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
}
