package workflow

import (
	"log/slog"

	"adreel/internal/ads"
	"adreel/internal/config"
	"adreel/internal/encoding"
	"adreel/internal/media/ffmpeg"
	"adreel/internal/media/ffprobe"
	"adreel/internal/metrics"
	"adreel/internal/playlist"
	"adreel/internal/workspace"
)

// Deps are optional collaborators for NewRunner.
type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Recorder
	// NewReporter overrides how final encode progress is shown.
	NewReporter func(label string) encoding.ProgressReporter
}

// NewRunner wires the ffmpeg adapters, ad selector, playlist assembler and
// encode supervisor described by cfg.
func NewRunner(cfg *config.Config, settings Settings, deps Deps) *Runner {
	prober := ffprobe.Client{
		Binary:    cfg.FFmpeg.FFprobeBinary,
		Timeout:   cfg.StageTimeout(),
		KillGrace: cfg.KillGrace(),
	}
	builder := ffmpeg.NewBuilder(cfg.FFmpeg)
	cli := ffmpeg.New(ffmpeg.Options{
		Binary:       cfg.FFmpeg.FFmpegBinary,
		Builder:      builder,
		Prober:       prober,
		StageTimeout: cfg.StageTimeout(),
		KillGrace:    cfg.KillGrace(),
		Logger:       deps.Logger,
	})
	selector := ads.Selector{
		Dir:        cfg.Paths.AdsDir,
		Ext:        cfg.FFmpeg.AdExt,
		Normalizer: cli,
		Logger:     deps.Logger,
	}
	assembler := &playlist.Assembler{
		Transcoder: cli,
		Prober:     prober,
		Inspector:  prober,
		Ads:        selector,
		Logger:     deps.Logger,
	}
	supervisor := encoding.NewSupervisor(encoding.Options{
		Binary:      cfg.FFmpeg.FFmpegBinary,
		Timeout:     cfg.FinalTimeout(),
		KillGrace:   cfg.KillGrace(),
		Logger:      deps.Logger,
		NewReporter: deps.NewReporter,
	})
	return &Runner{
		Workspaces: workspace.NewManager(cfg.Paths.WorkRoot, deps.Logger),
		Assembler:  assembler,
		Concat:     cli,
		Encoder:    supervisor,
		Builder:    builder,
		Settings:   settings,
		Metrics:    deps.Metrics,
		Logger:     deps.Logger,
	}
}
