package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"canceled", fmt.Errorf("run: %w", context.Canceled), ExitInterrupted},
		{"config", Wrap(ErrConfiguration, "config", "load", "bad", nil), ExitUsage},
		{"validation", Wrap(ErrValidation, "", "", "bad flag", nil), ExitUsage},
		{"preflight", Wrap(ErrPreflight, "check", "ffmpeg", "missing", nil), ExitPreflight},
		{"timeout", Wrap(ErrTimeout, "encode", "final", "deadline", nil), ExitJobTimedOut},
		{"other", errors.New("boom"), ExitJobFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBatchExitCode(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []Outcome
		want     int
	}{
		{"empty", nil, ExitOK},
		{"all ok", []Outcome{OutcomeSucceeded, OutcomeSucceeded}, ExitOK},
		{"timeout only", []Outcome{OutcomeSucceeded, OutcomeTimedOut}, ExitJobTimedOut},
		{"failure beats timeout", []Outcome{OutcomeTimedOut, OutcomeFailed}, ExitJobFailed},
		{"canceled", []Outcome{OutcomeSucceeded, OutcomeCanceled}, ExitInterrupted},
		{"timeout beats cancel", []Outcome{OutcomeCanceled, OutcomeTimedOut}, ExitJobTimedOut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BatchExitCode(tt.outcomes); got != tt.want {
				t.Fatalf("BatchExitCode = %d, want %d", got, tt.want)
			}
		})
	}
}
