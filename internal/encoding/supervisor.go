package encoding

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"adreel/internal/logging"
	"adreel/internal/procgroup"
	"adreel/internal/services"
)

var commandContext = exec.CommandContext

// EncodeRequest describes one final encode.
type EncodeRequest struct {
	// Args is the full ffmpeg argument list; Output must be its output file.
	Args   []string
	Output string
	// ExpectedSeconds is the program length used for percent progress.
	ExpectedSeconds float64
	Label           string
	// Reporter overrides the supervisor's reporter for this run.
	Reporter ProgressReporter
}

// Result summarizes a finished encode.
type Result struct {
	Output   string
	Elapsed  time.Duration
	Last     ProgressSample
	Samples  int
	Lines    int
	Warnings []Warning
}

// HasWarnings reports whether log signatures were found.
func (r Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Options configures a Supervisor.
type Options struct {
	Binary    string
	Timeout   time.Duration
	KillGrace time.Duration
	Logger    *slog.Logger
	// NewReporter builds the reporter for a run when the request has none.
	NewReporter func(label string) ProgressReporter
}

// Supervisor runs final encodes.
type Supervisor struct {
	binary      string
	timeout     time.Duration
	killGrace   time.Duration
	logger      *slog.Logger
	newReporter func(label string) ProgressReporter
}

// NewSupervisor constructs a supervisor from opts.
func NewSupervisor(opts Options) *Supervisor {
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	grace := opts.KillGrace
	if grace <= 0 {
		grace = 10 * time.Second
	}
	logger := logging.NewComponentLogger(opts.Logger, "encoding")
	newReporter := opts.NewReporter
	if newReporter == nil {
		newReporter = func(label string) ProgressReporter {
			return NewReporter(os.Stdout, opts.Logger, label)
		}
	}
	return &Supervisor{
		binary:      binary,
		timeout:     opts.Timeout,
		killGrace:   grace,
		logger:      logger,
		newReporter: newReporter,
	}
}

// Run executes the encode and blocks until ffmpeg exits, the deadline passes,
// or ctx is cancelled. On any failure the output file is removed.
func (s *Supervisor) Run(ctx context.Context, req EncodeRequest) (Result, error) {
	if len(req.Args) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "encoding", "run", "no ffmpeg arguments", nil)
	}
	if strings.TrimSpace(req.Output) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "encoding", "run", "output path is required", nil)
	}
	logger := logging.WithContext(ctx, s.logger)
	reporter := req.Reporter
	if reporter == nil {
		reporter = s.newReporter(req.Label)
	}

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	run, err := s.execute(runCtx, req, reporter)
	result, lines, waitErr := run.result, run.lines, run.waitErr
	result.Elapsed = time.Since(started)
	result.Output = req.Output
	result.Lines = len(lines)
	if err != nil {
		s.removePartial(logger, req.Output)
		return result, err
	}

	if waitErr != nil {
		s.removePartial(logger, req.Output)
		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.Warn("encode cancelled", logging.Duration("elapsed", result.Elapsed))
			return result, ctxErr
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return result, services.Wrap(services.ErrTimeout, "encoding", "final encode",
				fmt.Sprintf("exceeded %s", s.timeout), runCtx.Err())
		}
		return result, services.Wrap(services.ErrExternalTool, "encoding", "final encode", lastLines(lines, 20), waitErr)
	}

	info, statErr := os.Stat(req.Output)
	if statErr != nil || info.Size() == 0 {
		s.removePartial(logger, req.Output)
		return result, services.Wrap(services.ErrExternalTool, "encoding", "final encode", "ffmpeg exited cleanly but wrote no output", statErr)
	}

	result.Warnings = ScanWarnings(lines)
	for _, w := range result.Warnings {
		logging.Warning(logger, "encode log reported a known issue", "output may show glitches at affected timestamps",
			logging.String("kind", w.Kind),
			logging.Int("occurrences", w.Count),
			logging.String("example", w.Example),
		)
	}
	logger.Info("encode finished",
		logging.String("output", req.Output),
		logging.Duration("elapsed", result.Elapsed),
		logging.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

type execution struct {
	result  Result
	lines   []string
	waitErr error
}

// execute starts ffmpeg and drains its output. The returned error reports a
// failure to run at all; the process result is in waitErr.
func (s *Supervisor) execute(runCtx context.Context, req EncodeRequest, reporter ProgressReporter) (execution, error) {
	var run execution
	reader, writer, err := os.Pipe()
	if err != nil {
		return run, services.Wrap(services.ErrFilesystem, "encoding", "run", "create output pipe", err)
	}
	defer reader.Close()

	cmd := commandContext(runCtx, s.binary, req.Args...) //nolint:gosec
	cmd.Stdout = writer
	cmd.Stderr = writer
	waitCh, err := procgroup.Start(cmd)
	_ = writer.Close()
	if err != nil {
		return run, services.Wrap(services.ErrExternalTool, "encoding", "run", "start ffmpeg", err)
	}

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		scanner := bufio.NewScanner(reader)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		scanner.Split(scanLines)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			run.lines = append(run.lines, line)
			if sample, ok := ParseProgress(line, req.ExpectedSeconds); ok {
				run.result.Last = sample
				run.result.Samples++
				reporter.Report(sample)
			}
		}
		if err := scanner.Err(); err != nil {
			logging.Warning(logging.WithContext(runCtx, s.logger), "ffmpeg output unreadable", "remaining log lines discarded",
				logging.Error(err),
			)
			_, _ = io.Copy(io.Discard, reader)
		}
	}()

	select {
	case run.waitErr = <-waitCh:
	case <-runCtx.Done():
		run.waitErr = procgroup.Terminate(cmd, waitCh, s.killGrace)
		if run.waitErr == nil {
			run.waitErr = runCtx.Err()
		}
	}

	// A stray process outside the group could hold the pipe open.
	select {
	case <-readDone:
	case <-time.After(s.killGrace):
		_ = reader.Close()
		<-readDone
	}
	reporter.Finish()
	return run, nil
}

func (s *Supervisor) removePartial(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warning(logger, "remove partial output failed", "partial file left in output directory",
			logging.String("path", path),
			logging.Error(err),
		)
	}
}

// scanLines splits on \n, \r or \r\n.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance := i + 1
		if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			advance++
		} else if data[i] == '\r' && i+1 == len(data) && !atEOF {
			// Wait for more data in case \n follows.
			return 0, nil, nil
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func lastLines(lines []string, n int) string {
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	if len(lines) == 0 {
		return "no output"
	}
	return strings.Join(lines, "\n")
}
