package encoding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"adreel/internal/services"
)

type captureReporter struct {
	samples  []ProgressSample
	finished int
}

func (c *captureReporter) Report(sample ProgressSample) { c.samples = append(c.samples, sample) }
func (c *captureReporter) Finish()                      { c.finished++ }

func fakeEncoder(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		helperArgs := append([]string{"-test.run=TestHelperProcess", "--"}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], helperArgs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "ENCODE_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func newTestSupervisor(timeout time.Duration) *Supervisor {
	return NewSupervisor(Options{
		Binary:    "ffmpeg",
		Timeout:   timeout,
		KillGrace: 200 * time.Millisecond,
		NewReporter: func(string) ProgressReporter {
			return &captureReporter{}
		},
	})
}

func request(out string, reporter ProgressReporter) EncodeRequest {
	return EncodeRequest{
		Args:            []string{"-i", "/out/A_intermediate.mkv", out},
		Output:          out,
		ExpectedSeconds: 100,
		Label:           "A.mkv",
		Reporter:        reporter,
	}
}

func TestRunReportsProgress(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	fakeEncoder(t, "progress")
	out := filepath.Join(t.TempDir(), "A.mkv")
	reporter := &captureReporter{}

	result, err := newTestSupervisor(time.Minute).Run(context.Background(), request(out, reporter))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(reporter.samples) != 3 || result.Samples != 3 {
		t.Fatalf("expected 3 samples, got %d (result %d)", len(reporter.samples), result.Samples)
	}
	if reporter.finished != 1 {
		t.Fatalf("Finish called %d times", reporter.finished)
	}
	last := reporter.samples[2]
	if last.Frame != 2400 || last.Timecode != "00:01:40.00" || last.Speed != 2.5 || last.Percent != 100 {
		t.Fatalf("unexpected last sample %+v", last)
	}
	if result.HasWarnings() {
		t.Fatalf("unexpected warnings %+v", result.Warnings)
	}
	if result.Lines < 4 {
		t.Fatalf("expected every line retained, got %d", result.Lines)
	}
}

func TestRunWarningsDoNotFail(t *testing.T) {
	fakeEncoder(t, "warn")
	out := filepath.Join(t.TempDir(), "A.mkv")

	result, err := newTestSupervisor(time.Minute).Run(context.Background(), request(out, nil))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("expected two warning kinds, got %+v", result.Warnings)
	}
	if result.Warnings[0].Kind != "non_monotonic_dts" || result.Warnings[0].Count != 2 {
		t.Fatalf("unexpected DTS warning %+v", result.Warnings[0])
	}
	if result.Warnings[1].Kind != "decode_error" {
		t.Fatalf("unexpected decode warning %+v", result.Warnings[1])
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output must survive warnings: %v", err)
	}
}

func TestRunFailureRemovesOutput(t *testing.T) {
	fakeEncoder(t, "fail")
	out := filepath.Join(t.TempDir(), "A.mkv")

	_, err := newTestSupervisor(time.Minute).Run(context.Background(), request(out, nil))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "Conversion failed!") {
		t.Fatalf("expected log tail in error, got %v", err)
	}
	if _, statErr := os.Stat(out); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("partial output should be removed, stat err = %v", statErr)
	}
}

func TestRunOversizedLineKeepsDraining(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	fakeEncoder(t, "longline")
	out := filepath.Join(t.TempDir(), "A.mkv")

	started := time.Now()
	if _, err := newTestSupervisor(20*time.Second).Run(context.Background(), request(out, nil)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(started); elapsed > 10*time.Second {
		t.Fatalf("encoder stalled on a full pipe for %s", elapsed)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output missing: %v", err)
	}
}

func TestRunMissingOutput(t *testing.T) {
	fakeEncoder(t, "nooutput")
	out := filepath.Join(t.TempDir(), "A.mkv")
	_, err := newTestSupervisor(time.Minute).Run(context.Background(), request(out, nil))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestRunTimeoutTerminatesEncoder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	fakeEncoder(t, "hang")
	out := filepath.Join(t.TempDir(), "A.mkv")

	started := time.Now()
	_, err := newTestSupervisor(300*time.Millisecond).Run(context.Background(), request(out, nil))
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(started); elapsed > 10*time.Second {
		t.Fatalf("timeout took %s", elapsed)
	}
	if _, statErr := os.Stat(out); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("partial output should be removed, stat err = %v", statErr)
	}
}

func TestRunCancellation(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	fakeEncoder(t, "hang")
	out := filepath.Join(t.TempDir(), "A.mkv")
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(300*time.Millisecond, cancel)

	_, err := newTestSupervisor(time.Minute).Run(ctx, request(out, nil))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, services.ErrTimeout) {
		t.Fatal("cancellation must not be reported as a timeout")
	}
}

func TestRunValidatesRequest(t *testing.T) {
	s := newTestSupervisor(time.Minute)
	if _, err := s.Run(context.Background(), EncodeRequest{Output: "/out/A.mkv"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty args, got %v", err)
	}
	if _, err := s.Run(context.Background(), EncodeRequest{Args: []string{"-i", "x"}}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty output, got %v", err)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	out := args[len(args)-1]

	switch os.Getenv("ENCODE_HELPER_MODE") {
	case "progress":
		fmt.Fprint(os.Stderr, "Input #0, matroska,webm, from '/out/A_intermediate.mkv':\n")
		fmt.Fprint(os.Stderr, "frame=  600 fps= 60 q=28.0 size=    1024kB time=00:00:25.00 bitrate= 335.5kbits/s speed=2.5x\r")
		fmt.Fprint(os.Stderr, "frame= 1200 fps= 60 q=28.0 size=    2048kB time=00:00:50.00 bitrate= 335.5kbits/s speed=2.5x\r")
		fmt.Fprint(os.Stderr, "frame= 2400 fps= 60 q=28.0 Lsize=   4096kB time=00:01:40.00 bitrate= 335.5kbits/s speed=2.5x\n")
		_ = os.WriteFile(out, []byte("encoded"), 0o644)
	case "warn":
		fmt.Fprintln(os.Stderr, "[matroska @ 0x1] Non-monotonic DTS; previous: 100, current: 90")
		fmt.Fprintln(os.Stderr, "[matroska @ 0x1] Non-monotonous DTS in output stream 0:1")
		fmt.Fprintln(os.Stdout, "[h264 @ 0x2] error while decoding MB 10 20")
		_ = os.WriteFile(out, []byte("encoded"), 0o644)
	case "fail":
		_ = os.WriteFile(out, []byte("partial"), 0o644)
		fmt.Fprintln(os.Stderr, "Error while opening encoder for output stream #0:0")
		fmt.Fprintln(os.Stderr, "Conversion failed!")
		os.Exit(1)
	case "longline":
		fmt.Fprint(os.Stderr, strings.Repeat("x", 4<<20)+"\n")
		fmt.Fprint(os.Stderr, "frame= 2400 fps= 60 q=28.0 Lsize=   4096kB time=00:01:40.00 bitrate= 335.5kbits/s speed=2.5x\n")
		_ = os.WriteFile(out, []byte("encoded"), 0o644)
	case "nooutput":
	case "hang":
		_ = os.WriteFile(out, []byte("partial"), 0o644)
		time.Sleep(30 * time.Second)
	}
	os.Exit(0)
}
