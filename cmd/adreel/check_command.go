package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"adreel/internal/preflight"
	"adreel/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify binaries, directories, and free space",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)
			for _, line := range sectionHeader("Preflight", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, result := range results {
				fmt.Fprintln(stdout, checkLine(result, colorize))
			}
			fmt.Fprintln(stdout)

			failed := preflight.Failed(results)
			if len(failed) > 0 {
				fmt.Fprintf(stdout, "%d required check(s) failed\n", len(failed))
				return silentExit(services.ExitPreflight)
			}
			fmt.Fprintln(stdout, "All required checks passed")
			return nil
		},
	}
}

// requirePreflight runs the checks a batch needs and turns required failures
// into an ErrPreflight error naming each one.
func requirePreflight(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg))
	if len(failed) == 0 {
		return nil
	}
	problems := make([]string, len(failed))
	for i, result := range failed {
		problems[i] = result.Name + ": " + result.Detail
	}
	return services.Wrap(services.ErrPreflight, "preflight", "check", strings.Join(problems, "; "), nil)
}
