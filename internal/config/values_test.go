package config_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"adreel/internal/config"
)

func TestParseValuesCoercion(t *testing.T) {
	input := strings.Join([]string{
		"WELCOME_VIDEO_DURATION = 7 // seconds",
		"// a full comment line = ignored",
		"RATIO=1.5",
		"NEGATIVE = -3",
		"NAME = Cinema = Two",
		"URL = http://example.com",
		"no equals sign here",
		"   = orphan",
		"EMPTY =",
		"DUP = 1",
		"DUP = 2",
	}, "\n")

	values, err := config.ParseValues(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseValues: %v", err)
	}
	want := config.Values{
		"WELCOME_VIDEO_DURATION": int64(7),
		"RATIO":                  1.5,
		"NEGATIVE":               float64(-3),
		"NAME":                   "Cinema = Two",
		"URL":                    "http:",
		"EMPTY":                  "",
		"DUP":                    int64(2),
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestValuesAccessors(t *testing.T) {
	values := config.Values{"I": int64(4), "F": 2.5, "S": "text"}

	if got := values.Int("I", 0); got != 4 {
		t.Fatalf("Int(I) = %d", got)
	}
	if got := values.Int("F", 0); got != 2 {
		t.Fatalf("Int(F) = %d", got)
	}
	if got := values.Int("S", 9); got != 9 {
		t.Fatalf("Int(S) should fall back, got %d", got)
	}
	if got := values.Float("I", 0); got != 4 {
		t.Fatalf("Float(I) = %v", got)
	}
	if got := values.Float("missing", 1.25); got != 1.25 {
		t.Fatalf("Float(missing) = %v", got)
	}
	if got := values.String("I", ""); got != "4" {
		t.Fatalf("String(I) = %q", got)
	}
	if got := values.Seconds("F", 0, 60); got != 150*time.Second {
		t.Fatalf("Seconds(F) = %s", got)
	}
}

func TestLoadValuesMissingFile(t *testing.T) {
	_, err := config.LoadValues(filepath.Join(t.TempDir(), "absent.txt"))
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadProgram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configuration.txt")
	content := "WELCOME_VIDEO_DURATION = 3\nADS_INBETWEEN_MOVIES_TIME = 0.5 // half a minute\nOPERATOR_PHONE_DISPLAY_TEXT_SIZE = 24\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	program, err := config.LoadProgram(path)
	if err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	want := config.Program{
		WelcomeDuration: 3 * time.Second,
		AdInterval:      30 * time.Second,
		WelcomeTextSize: 36,
		OverlayTextSize: 24,
	}
	if diff := cmp.Diff(want, program); diff != "" {
		t.Fatalf("program mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultProgram(t *testing.T) {
	program := config.DefaultProgram()
	if program.WelcomeDuration != 5*time.Second || program.AdInterval != 20*time.Minute {
		t.Fatalf("unexpected defaults: %+v", program)
	}
	if program.WelcomeTextSize != 36 || program.OverlayTextSize != 36 {
		t.Fatalf("unexpected text sizes: %+v", program)
	}
}

func TestLoadProgramRejectsZeroInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configuration.txt")
	if err := os.WriteFile(path, []byte("ADS_INBETWEEN_MOVIES_TIME = 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := config.LoadProgram(path); err == nil {
		t.Fatal("expected error for zero ad interval")
	}
}
