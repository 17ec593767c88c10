package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"adreel/internal/encoding"
	"adreel/internal/logging"
	"adreel/internal/media/ffmpeg"
	"adreel/internal/metrics"
	"adreel/internal/overlay"
	"adreel/internal/playlist"
	"adreel/internal/services"
	"adreel/internal/workspace"
)

// PlaylistAssembler builds the parts list inside a workspace.
type PlaylistAssembler interface {
	Assemble(ctx context.Context, req playlist.AssembleRequest) (*playlist.Playlist, error)
}

// Concatenator joins a concat list into one file without re-encoding.
type Concatenator interface {
	ConcatCopy(ctx context.Context, list, out string) error
}

// FinalEncoder runs the supervised final encode.
type FinalEncoder interface {
	Run(ctx context.Context, req encoding.EncodeRequest) (encoding.Result, error)
}

// Runner processes movie jobs.
type Runner struct {
	Workspaces *workspace.Manager
	Assembler  PlaylistAssembler
	Concat     Concatenator
	Encoder    FinalEncoder
	Builder    ffmpeg.Builder
	Settings   Settings
	Metrics    *metrics.Recorder
	Logger     *slog.Logger
}

// JobReport describes how one job ended.
type JobReport struct {
	Job      MovieJob
	Outcome  services.Outcome
	Err      error
	Elapsed  time.Duration
	Welcome  bool
	Chunks   int
	Ads      int
	Duration float64
	Warnings []encoding.Warning
	// State is the last playlist state reached.
	State playlist.State
}

// Succeeded reports whether the job produced its output.
func (r JobReport) Succeeded() bool {
	return r.Outcome == services.OutcomeSucceeded
}

// RunJob processes one movie. The workspace is released and partial outputs
// are removed on every exit path.
func (r *Runner) RunJob(ctx context.Context, job MovieJob) JobReport {
	ctx = services.WithJobID(ctx, job.ID)
	ctx = services.WithMovie(ctx, job.Name())
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.Logger, "workflow"))

	started := time.Now()
	report := JobReport{Job: job}
	tracker := playlist.NewTracker(r.Logger, func(_, to playlist.State) {
		r.Metrics.StateEntered(string(to))
	})

	logger.Info("job started",
		logging.String("source", job.Source),
		logging.String("output", job.OutputPath()),
	)
	err := r.runJob(ctx, job, tracker, &report, logger)
	if err != nil {
		tracker.Fail(ctx, err)
	}

	report.Err = err
	report.Outcome = services.Classify(err)
	report.Elapsed = time.Since(started)
	report.State = tracker.State()
	r.Metrics.JobFinished(report.Outcome, report.Elapsed)

	switch {
	case err == nil && len(report.Warnings) > 0:
		logging.Warning(logger, "job finished with warnings", "",
			logging.Duration("elapsed", report.Elapsed),
			logging.Int("warnings", len(report.Warnings)),
		)
	case err == nil:
		logger.Info("job finished", logging.Duration("elapsed", report.Elapsed))
	default:
		logger.Error("job failed",
			logging.String("outcome", string(report.Outcome)),
			logging.String("state", string(report.State)),
			logging.Error(err),
		)
	}
	return report
}

func (r *Runner) runJob(ctx context.Context, job MovieJob, tracker *playlist.Tracker, report *JobReport, logger *slog.Logger) (err error) {
	if _, err := r.Workspaces.CheckSpace(r.Settings.MinFreeBytes); err != nil {
		return err
	}
	ws, err := r.Workspaces.Acquire(ctx, job.Stem())
	if err != nil {
		return err
	}
	defer func() {
		if relErr := ws.Release(); relErr != nil {
			logging.Warning(logger, "workspace release failed", "scratch files left behind until the next sweep",
				logging.String("workspace", ws.Dir()),
				logging.Error(relErr),
			)
		}
	}()

	pl, err := r.Assembler.Assemble(ctx, playlist.AssembleRequest{
		Movie:          job.Source,
		WorkDir:        ws.Dir(),
		SegmentSeconds: r.Settings.SegmentSeconds,
		WelcomeLines:   r.Settings.WelcomeLines,
		WelcomeStyle:   r.Settings.WelcomeStyle,
		WelcomeSeconds: r.Settings.WelcomeSeconds,
		Countdown:      r.Settings.Countdown,
		Tracker:        tracker,
	})
	if err != nil {
		return err
	}
	report.Welcome = pl.Count(playlist.KindWelcome) > 0
	report.Chunks = pl.Count(playlist.KindChunk)
	report.Ads = pl.Count(playlist.KindAd)
	report.Duration = pl.Duration()

	if err := prepareOutput(job); err != nil {
		return err
	}
	intermediate := job.IntermediatePath()
	defer removeIfExists(logger, intermediate)
	defer func() {
		if err != nil {
			removeIfExists(logger, job.OutputPath())
		}
	}()

	if err := r.Concat.ConcatCopy(ctx, pl.ListPath, intermediate); err != nil {
		return fmt.Errorf("concatenate playlist: %w", err)
	}
	if err := tracker.Advance(ctx, playlist.StateConcatenated); err != nil {
		return err
	}

	watermark, ok := overlay.Watermark(r.Settings.OverlayLines, r.Settings.Watermark)
	if !ok {
		logger.Info("no overlay text, final encode without watermark")
	}
	result, err := r.Encoder.Run(ctx, encoding.EncodeRequest{
		Args:            r.Builder.Final(intermediate, job.OutputPath(), watermark),
		Output:          job.OutputPath(),
		ExpectedSeconds: pl.Duration(),
		Label:           job.Name(),
	})
	if err != nil {
		return err
	}
	report.Warnings = result.Warnings
	for _, w := range result.Warnings {
		r.Metrics.EncodeWarning(w.Kind, w.Count)
	}
	if err := tracker.Advance(ctx, playlist.StateOverlaidFinal); err != nil {
		return err
	}

	r.Metrics.AdsInserted(report.Ads)
	return tracker.Advance(ctx, playlist.StateDone)
}

// prepareOutput creates the output directory and clears results of an earlier
// run so a failure cannot leave a stale program looking fresh.
func prepareOutput(job MovieJob) error {
	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		return services.Wrap(services.ErrFilesystem, "workflow", "create output dir", job.OutputDir, err)
	}
	for _, path := range []string{job.OutputPath(), job.IntermediatePath()} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrFilesystem, "workflow", "remove stale output", path, err)
		}
	}
	return nil
}

func removeIfExists(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warning(logger, "remove file failed", "stale file left in output directory",
			logging.String("path", path),
			logging.Error(err),
		)
	}
}
