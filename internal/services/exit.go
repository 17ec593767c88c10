package services

import (
	"context"
	"errors"
)

// Process exit codes reported by the adreel CLI.
const (
	ExitOK          = 0
	ExitUsage       = 1
	ExitPreflight   = 2
	ExitJobFailed   = 3
	ExitJobTimedOut = 4
	ExitInterrupted = 130
)

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrValidation):
		return ExitUsage
	case errors.Is(err, ErrPreflight):
		return ExitPreflight
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ExitJobTimedOut
	default:
		return ExitJobFailed
	}
}

// BatchExitCode folds per-job outcomes into a single exit code. Any failure
// wins over timeouts, and timeouts win over cancellation.
func BatchExitCode(outcomes []Outcome) int {
	var timedOut, canceled bool
	for _, outcome := range outcomes {
		switch outcome {
		case OutcomeFailed:
			return ExitJobFailed
		case OutcomeTimedOut:
			timedOut = true
		case OutcomeCanceled:
			canceled = true
		}
	}
	switch {
	case timedOut:
		return ExitJobTimedOut
	case canceled:
		return ExitInterrupted
	default:
		return ExitOK
	}
}
