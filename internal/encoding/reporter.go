package encoding

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"adreel/internal/logging"
)

// ProgressReporter receives samples from a running encode. Report is called
// from a single goroutine; Finish is called once after the last sample.
type ProgressReporter interface {
	Report(sample ProgressSample)
	Finish()
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewReporter picks an in-place terminal reporter when w is a terminal and a
// sampled log reporter otherwise.
func NewReporter(w io.Writer, logger *slog.Logger, label string) ProgressReporter {
	if w != nil && IsTerminal(w) {
		return NewTerminalReporter(w, label)
	}
	return NewLogReporter(logger, label)
}

// TerminalReporter rewrites a single status line in place.
type TerminalReporter struct {
	mu      sync.Mutex
	w       io.Writer
	label   string
	width   int
	printed bool
}

// NewTerminalReporter writes status lines for label to w.
func NewTerminalReporter(w io.Writer, label string) *TerminalReporter {
	return &TerminalReporter{w: w, label: label}
}

func (r *TerminalReporter) Report(sample ProgressSample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	line := FormatSample(r.label, sample)
	pad := ""
	if n := r.width - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	r.width = len(line)
	r.printed = true
	_, _ = fmt.Fprintf(r.w, "\r%s%s", line, pad)
}

func (r *TerminalReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.printed {
		_, _ = io.WriteString(r.w, "\n")
		r.printed = false
		r.width = 0
	}
}

// FormatSample renders a sample as a one-line status.
func FormatSample(label string, sample ProgressSample) string {
	var b strings.Builder
	if label != "" {
		b.WriteString(label)
		b.WriteString(" ")
	}
	if sample.Percent >= 0 {
		fmt.Fprintf(&b, "%5.1f%% ", sample.Percent)
	}
	fmt.Fprintf(&b, "frame %d time %s speed %.2fx", sample.Frame, sample.Timecode, sample.Speed)
	return b.String()
}

// LogReporter emits progress as structured log lines, one per percent bucket,
// or one per interval when the expected length is unknown.
type LogReporter struct {
	logger   *slog.Logger
	label    string
	sampler  *logging.ProgressSampler
	interval time.Duration
	last     time.Time
	now      func() time.Time
	latest   ProgressSample
	seen     bool
}

// NewLogReporter logs progress for label through logger.
func NewLogReporter(logger *slog.Logger, label string) *LogReporter {
	return &LogReporter{
		logger:   logging.NewComponentLogger(logger, "encoding"),
		label:    label,
		sampler:  logging.NewProgressSampler(10),
		interval: time.Minute,
		now:      time.Now,
	}
}

func (r *LogReporter) Report(sample ProgressSample) {
	r.latest = sample
	r.seen = true
	if sample.Percent >= 0 {
		if !r.sampler.ShouldLog(sample.Percent, "encode") {
			return
		}
	} else {
		now := r.now()
		if !r.last.IsZero() && now.Sub(r.last) < r.interval {
			return
		}
		r.last = now
	}
	r.log("encode progress", sample)
}

func (r *LogReporter) Finish() {
	if r.seen {
		r.log("encode progress final", r.latest)
	}
	r.sampler.Reset()
}

func (r *LogReporter) log(msg string, sample ProgressSample) {
	attrs := []logging.Attr{
		logging.String("job", r.label),
		logging.Int64("frame", sample.Frame),
		logging.String("time", sample.Timecode),
		logging.Float64("speed", sample.Speed),
	}
	if sample.Percent >= 0 {
		attrs = append(attrs, logging.Float64("progress_percent", sample.Percent))
	}
	r.logger.Info(msg, logging.Args(attrs...)...)
}
