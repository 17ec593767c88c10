package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"adreel/internal/ads"
	"adreel/internal/logging"
	"adreel/internal/media/ffprobe"
	"adreel/internal/playlist"
	"adreel/internal/workflow"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var showEntries bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Probe movies and print the playlists a run would build",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
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

			prober := ffprobe.Client{
				Binary:    cfg.FFmpeg.FFprobeBinary,
				Timeout:   cfg.StageTimeout(),
				KillGrace: cfg.KillGrace(),
			}
			pool, err := ads.ListPool(cfg.Paths.AdsDir, cfg.FFmpeg.AdExt)
			if err != nil {
				return err
			}
			if len(pool) == 0 {
				logger.Info("ad pool empty", logging.String("dir", cfg.Paths.AdsDir))
			}
			adDurations := make(map[string]float64, len(pool))
			for _, ad := range pool {
				seconds, err := prober.Duration(cmd.Context(), ad)
				if err != nil {
					return err
				}
				adDurations[ad] = seconds
			}

			settings := workflow.NewSettings(cfg, res.Program, res.WelcomeLines, res.OverlayLines)
			headers := []string{"Movie", "Streams", "Length", "Welcome", "Chunks", "Ads", "Program"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight}
			var rows [][]string
			var details []string
			for _, job := range jobs {
				info, err := prober.Inspect(cmd.Context(), job.Source)
				if err != nil {
					return err
				}
				if err := info.RequirePlayable(job.Source); err != nil {
					return err
				}
				seconds := info.DurationSeconds()
				pl := playlist.Plan(playlist.PlanRequest{
					MovieDuration:  seconds,
					SegmentSeconds: settings.SegmentSeconds,
					WelcomeLines:   settings.WelcomeLines,
					WelcomeStyle:   settings.WelcomeStyle,
					WelcomeSeconds: settings.WelcomeSeconds,
					AdPool:         pool,
					AdDurations:    adDurations,
					Countdown:      settings.Countdown,
				})
				rows = append(rows, []string{
					movieLabel(job),
					info.Layout(),
					formatSeconds(seconds),
					yesNo(pl.Count(playlist.KindWelcome) > 0),
					strconv.Itoa(pl.Count(playlist.KindChunk)),
					strconv.Itoa(pl.Count(playlist.KindAd)),
					formatSeconds(pl.Duration()),
				})
				if showEntries {
					details = append(details, movieLabel(job)+"\n"+renderEntries(pl))
				}
			}

			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			for _, detail := range details {
				fmt.Fprintln(out)
				fmt.Fprintln(out, detail)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showEntries, "entries", false, "Also list every playlist entry per movie")
	return cmd
}

func renderEntries(pl *playlist.Playlist) string {
	headers := []string{"#", "Part", "Source", "Length"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight}
	rows := make([][]string, 0, len(pl.Entries))
	for i, e := range pl.Entries {
		part := fmt.Sprintf("%s %d", e.Kind, e.Index)
		if e.Kind == playlist.KindWelcome {
			part = string(e.Kind)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			part,
			sourceLabel(e),
			formatSeconds(e.Duration),
		})
	}
	return renderTable(headers, rows, aligns)
}

func sourceLabel(e playlist.Entry) string {
	if e.Source == "" {
		return "-"
	}
	return filepath.Base(e.Source)
}
