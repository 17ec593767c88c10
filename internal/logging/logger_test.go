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

	"adreel/internal/config"
	"adreel/internal/services"
)

func newTestConsole(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	lv := new(slog.LevelVar)
	lv.Set(level)
	return slog.New(newConsoleHandler(buf, lv, false))
}

func TestConsoleHandlerFormatsComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewComponentLogger(newTestConsole(&buf, slog.LevelInfo), "encoder")
	logger.Info("stage finished", String("stage", "segment"), Int("chunks", 3), String("path", "/tmp/a b.mkv"))

	line := buf.String()
	for _, want := range []string{"INFO encoder: stage finished", "stage=segment", "chunks=3", `path="/tmp/a b.mkv"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as prefix, got %q", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsole(&buf, slog.LevelWarn)
	logger.Info("hidden")
	logger.Debug("hidden too")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "WARN shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestConsoleHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsole(&buf, slog.LevelInfo).WithGroup("ffmpeg")
	logger.Info("progress", Float64("speed", 1.5))
	if !strings.Contains(buf.String(), "ffmpeg.speed=1.5") {
		t.Fatalf("expected grouped key, got %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewJSONWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "out.log")
	logger, err := New(Options{Level: "debug", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello", String("movie", "a.mkv"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	if entry["msg"] != "hello" || entry["movie"] != "a.mkv" || entry["level"] != "info" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key in %v", entry)
	}
}

func TestNewFromConfigCreatesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "log")
	cfg.Logging.Format = "json"
	logger, err := NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Warn("written")
	if _, err := os.Stat(filepath.Join(cfg.Paths.LogDir, "adreel.log")); err != nil {
		t.Fatalf("expected log file: %v", err)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	base := newTestConsole(&buf, slog.LevelInfo)
	ctx := services.WithJobID(context.Background(), "job-1")
	ctx = services.WithStage(ctx, "concat")
	ctx = services.WithMovie(ctx, "/movies/x.mkv")

	WithContext(ctx, base).Info("done")
	out := buf.String()
	for _, want := range []string{"job_id=job-1", "stage=concat", "movie=/movies/x.mkv"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestWarningAddsImpact(t *testing.T) {
	var buf bytes.Buffer
	Warning(newTestConsole(&buf, slog.LevelInfo), "non-monotonic timestamps", "", Error(errors.New("dts")))
	if !strings.Contains(buf.String(), `impact="job completed with warnings"`) {
		t.Fatalf("missing impact in %q", buf.String())
	}
	Warning(nil, "ignored", "")
}

func TestNopDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should be disabled")
	}
}
