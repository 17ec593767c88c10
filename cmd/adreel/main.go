package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"adreel/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	code := exitCodeFor(ctx, err)
	if err != nil && !errors.Is(err, context.Canceled) && !isSilentExit(err) {
		fmt.Fprintln(os.Stderr, err)
	}
	stop()
	os.Exit(code)
}

// exitError carries a precomputed exit code out of a command. Commands that
// already reported their outcome return one with silent set.
type exitError struct {
	code   int
	err    error
	silent bool
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitError) Unwrap() error {
	return e.err
}

func silentExit(code int) error {
	return &exitError{code: code, silent: true}
}

func isSilentExit(err error) bool {
	var exitErr *exitError
	return errors.As(err, &exitErr) && exitErr.silent
}

func exitCodeFor(ctx context.Context, err error) int {
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	if err != nil && ctx.Err() != nil {
		return services.ExitInterrupted
	}
	return services.ExitCode(err)
}
