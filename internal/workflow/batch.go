package workflow

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"adreel/internal/logging"
	"adreel/internal/services"
)

// BatchOptions controls RunBatch.
type BatchOptions struct {
	Workers int
	// ContinueOnError keeps starting jobs after one fails. When false the
	// first failure cancels jobs that have not finished.
	ContinueOnError bool
}

// Summary collects the reports of a batch in discovery order.
type Summary struct {
	Reports  []JobReport
	Started  time.Time
	Finished time.Time
}

// Outcomes lists the outcome of every job.
func (s Summary) Outcomes() []services.Outcome {
	out := make([]services.Outcome, len(s.Reports))
	for i, r := range s.Reports {
		out[i] = r.Outcome
	}
	return out
}

// Count returns how many jobs ended with outcome.
func (s Summary) Count(outcome services.Outcome) int {
	n := 0
	for _, r := range s.Reports {
		if r.Outcome == outcome {
			n++
		}
	}
	return n
}

// WithWarnings returns how many successful jobs reported encode warnings.
func (s Summary) WithWarnings() int {
	n := 0
	for _, r := range s.Reports {
		if r.Succeeded() && len(r.Warnings) > 0 {
			n++
		}
	}
	return n
}

// ExitCode folds the outcomes into the process exit code.
func (s Summary) ExitCode() int {
	return services.BatchExitCode(s.Outcomes())
}

// RunBatch processes jobs on up to opts.Workers goroutines. Every job gets a
// report; jobs skipped after cancellation are reported as canceled.
func (r *Runner) RunBatch(ctx context.Context, jobs []MovieJob, opts BatchOptions) Summary {
	logger := logging.NewComponentLogger(r.Logger, "workflow")
	summary := Summary{Reports: make([]JobReport, len(jobs)), Started: time.Now()}

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	logger.Info("batch started",
		logging.Int("jobs", len(jobs)),
		logging.Int("workers", workers),
	)
	for i, job := range jobs {
		if err := groupCtx.Err(); err != nil {
			summary.Reports[i] = JobReport{Job: job, Outcome: services.OutcomeCanceled, Err: err}
			continue
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				summary.Reports[i] = JobReport{Job: job, Outcome: services.OutcomeCanceled, Err: err}
				return nil
			}
			report := r.RunJob(groupCtx, job)
			summary.Reports[i] = report
			if report.Err != nil && !opts.ContinueOnError {
				return report.Err
			}
			return nil
		})
	}
	_ = group.Wait()

	summary.Finished = time.Now()
	r.Metrics.BatchFinished(summary.Finished)
	logger.Info("batch finished",
		logging.Int("succeeded", summary.Count(services.OutcomeSucceeded)),
		logging.Int("failed", summary.Count(services.OutcomeFailed)),
		logging.Int("timed_out", summary.Count(services.OutcomeTimedOut)),
		logging.Int("canceled", summary.Count(services.OutcomeCanceled)),
		logging.Int("with_warnings", summary.WithWarnings()),
		logging.Duration("elapsed", summary.Finished.Sub(summary.Started)),
	)
	return summary
}
