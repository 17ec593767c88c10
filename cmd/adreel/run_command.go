package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"adreel/internal/encoding"
	"adreel/internal/logging"
	"adreel/internal/metrics"
	"adreel/internal/services"
	"adreel/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var workers int
	var stopOnError bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build a program for every movie under the movies directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if err := requirePreflight(cmd, ctx); err != nil {
				return err
			}
			res, err := loadProgramResources(cfg, logger)
			if err != nil {
				return err
			}

			jobs, err := workflow.Discover(cfg.Paths.MoviesDir, cfg.Paths.OutputDir, cfg.FFmpeg.MovieExt)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintf(out, "No %s files found under %s\n", cfg.FFmpeg.MovieExt, cfg.Paths.MoviesDir)
				return nil
			}

			opts := workflow.BatchOptions{Workers: cfg.Batch.Workers, ContinueOnError: cfg.Batch.ContinueOnError}
			if cmd.Flags().Changed("workers") {
				opts.Workers = workers
			}
			if stopOnError {
				opts.ContinueOnError = false
			}

			recorder := metrics.New()
			settings := workflow.NewSettings(cfg, res.Program, res.WelcomeLines, res.OverlayLines)
			runner := workflow.NewRunner(cfg, settings, workflow.Deps{
				Logger:  logger,
				Metrics: recorder,
				NewReporter: func(label string) encoding.ProgressReporter {
					return encoding.NewReporter(out, logger, label)
				},
			})

			summary := runner.RunBatch(cmd.Context(), jobs, opts)
			fmt.Fprintln(out, renderSummary(summary))
			writeMetrics(logger, recorder, cfg.Metrics.Textfile)

			if code := summary.ExitCode(); code != services.ExitOK {
				return silentExit(code)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "Movies processed in parallel (overrides batch.workers)")
	cmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "Cancel remaining movies after the first failure")
	return cmd
}

func writeMetrics(logger *slog.Logger, recorder *metrics.Recorder, path string) {
	if err := recorder.WriteTextfile(path); err != nil {
		logging.Warning(logger, "metrics textfile not written", "node_exporter keeps the previous values",
			logging.String("path", path),
			logging.Error(err),
		)
	}
}

func renderSummary(summary workflow.Summary) string {
	headers := []string{"Movie", "Outcome", "Chunks", "Ads", "Length", "Elapsed", "Notes"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft}
	rows := make([][]string, 0, len(summary.Reports))
	for _, report := range summary.Reports {
		rows = append(rows, []string{
			movieLabel(report.Job),
			outcomeLabel(report),
			strconv.Itoa(report.Chunks),
			strconv.Itoa(report.Ads),
			formatSeconds(report.Duration),
			report.Elapsed.Round(time.Second).String(),
			reportNotes(report),
		})
	}
	footer := []string{
		fmt.Sprintf("%d movie(s)", len(summary.Reports)),
		fmt.Sprintf("%d ok, %d failed", summary.Count(services.OutcomeSucceeded), summary.Count(services.OutcomeFailed)+summary.Count(services.OutcomeTimedOut)),
		"", "", "",
		summary.Finished.Sub(summary.Started).Round(time.Second).String(),
		fmt.Sprintf("%d with warnings", summary.WithWarnings()),
	}
	return renderTableWithFooter(headers, rows, footer, aligns)
}

func movieLabel(job workflow.MovieJob) string {
	if job.RelDir == "" || job.RelDir == "." {
		return job.Name()
	}
	return filepath.Join(job.RelDir, job.Name())
}

// outcomeLabel keeps warnings visible next to successes so they are not
// mistaken for failures or hidden among clean runs.
func outcomeLabel(report workflow.JobReport) string {
	label := strings.ReplaceAll(string(report.Outcome), "_", " ")
	if report.Succeeded() && len(report.Warnings) > 0 {
		label += " (warnings)"
	}
	return label
}

func reportNotes(report workflow.JobReport) string {
	if report.Err != nil {
		return firstLine(report.Err.Error())
	}
	notes := make([]string, 0, len(report.Warnings))
	for _, w := range report.Warnings {
		notes = append(notes, fmt.Sprintf("%s x%d", w.Kind, w.Count))
	}
	return strings.Join(notes, ", ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const limit = 80
	if len(s) > limit {
		s = s[:limit-3] + "..."
	}
	return s
}

func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}
