package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"adreel/internal/workspace"
)

func newSweepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove workspaces left behind by interrupted runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			report, err := workspace.NewManager(cfg.Paths.WorkRoot, logger).Sweep(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, dir := range report.Locked {
				fmt.Fprintf(out, "In use: %s\n", dir)
			}
			for _, dir := range report.Unlocked {
				fmt.Fprintf(out, "Skipped (no lock file): %s\n", dir)
			}
			fmt.Fprintf(out, "Removed %d stale workspace(s), %d in use\n", len(report.Removed), len(report.Locked))
			return nil
		},
	}
}
