package playlist

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"adreel/internal/ads"
	"adreel/internal/logging"
	"adreel/internal/media/ffprobe"
	"adreel/internal/overlay"
	"adreel/internal/services"
)

// Transcoder runs the media stages the assembler needs.
type Transcoder interface {
	Normalize(ctx context.Context, in, out string, chain overlay.Chain) error
	Segment(ctx context.Context, in, workDir string, seconds float64) ([]string, error)
	RenderWelcome(ctx context.Context, out string, chain overlay.Chain, seconds float64) error
}

// DurationProber measures media files.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// MovieInspector reads a movie's stream layout.
type MovieInspector interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// AdPreparer provides normalized ads for the gaps between chunks.
type AdPreparer interface {
	Prepare(ctx context.Context, n int, workDir string) ([]ads.Asset, error)
}

// Assembler builds playlists inside a job workspace.
type Assembler struct {
	Transcoder Transcoder
	Prober     DurationProber
	Ads        AdPreparer
	Logger     *slog.Logger

	// Inspector, when set, rejects movies without a playable video stream
	// before anything is encoded.
	Inspector MovieInspector
}

// AssembleRequest describes one program build.
type AssembleRequest struct {
	Movie          string
	WorkDir        string
	SegmentSeconds float64
	WelcomeLines   []string
	WelcomeStyle   overlay.WelcomeStyle
	WelcomeSeconds float64
	Countdown      overlay.CountdownStyle
	// Tracker receives state changes; a private tracker is used when nil.
	Tracker *Tracker
}

func (r AssembleRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Movie) == "":
		return services.Wrap(services.ErrValidation, "playlist", "assemble", "movie path is required", nil)
	case strings.TrimSpace(r.WorkDir) == "":
		return services.Wrap(services.ErrValidation, "playlist", "assemble", "work directory is required", nil)
	case r.SegmentSeconds <= 0:
		return services.Wrap(services.ErrValidation, "playlist", "assemble", fmt.Sprintf("segment length must be positive, got %v", r.SegmentSeconds), nil)
	}
	return nil
}

// Assemble renders the welcome clip, segments the movie, prepares ads,
// overlays a countdown on every chunk and writes the concat list. The tracker
// ends in StateListed on success and StateFailed otherwise.
func (a *Assembler) Assemble(ctx context.Context, req AssembleRequest) (*Playlist, error) {
	tracker := req.Tracker
	if tracker == nil {
		tracker = NewTracker(a.Logger, nil)
	}
	pl, err := a.assemble(ctx, req, tracker)
	if err != nil {
		tracker.Fail(ctx, err)
		return nil, err
	}
	return pl, nil
}

func (a *Assembler) assemble(ctx context.Context, req AssembleRequest, tracker *Tracker) (*Playlist, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if a.Transcoder == nil || a.Prober == nil {
		return nil, services.Wrap(services.ErrConfiguration, "playlist", "assemble", "transcoder and prober are required", nil)
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(a.Logger, "playlist"))

	if a.Inspector != nil {
		info, err := a.Inspector.Inspect(ctx, req.Movie)
		if err != nil {
			return nil, fmt.Errorf("inspect %s: %w", filepath.Base(req.Movie), err)
		}
		if err := info.RequirePlayable(req.Movie); err != nil {
			return nil, err
		}
		logger.Info("movie inspected",
			logging.String("streams", info.Layout()),
			logging.Float64("duration_seconds", info.DurationSeconds()),
		)
	}

	welcome, err := a.welcome(ctx, req, logger)
	if err != nil {
		return nil, err
	}
	if welcome != nil {
		if err := tracker.Advance(ctx, StateWelcome); err != nil {
			return nil, err
		}
	}

	chunkPaths, err := a.Transcoder.Segment(ctx, req.Movie, req.WorkDir, req.SegmentSeconds)
	if err != nil {
		return nil, fmt.Errorf("segment %s: %w", filepath.Base(req.Movie), err)
	}
	logger.Info("movie segmented",
		logging.Int("chunks", len(chunkPaths)),
		logging.Float64("segment_seconds", req.SegmentSeconds),
	)
	if err := tracker.Advance(ctx, StateSegmented); err != nil {
		return nil, err
	}

	var assets []ads.Asset
	if a.Ads != nil {
		assets, err = a.Ads.Prepare(ctx, len(chunkPaths)-1, req.WorkDir)
		if err != nil {
			return nil, err
		}
	}
	adEntries := make([]Entry, len(assets))
	for i, asset := range assets {
		d, err := a.Prober.Duration(ctx, asset.Path)
		if err != nil {
			return nil, fmt.Errorf("probe ad %s: %w", filepath.Base(asset.Path), err)
		}
		adEntries[i] = AdEntry(asset, d)
	}
	if err := tracker.Advance(ctx, StateAdsSelected); err != nil {
		return nil, err
	}

	chunks := make([]Entry, len(chunkPaths))
	for i, path := range chunkPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := a.Prober.Duration(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("probe chunk %d: %w", i, err)
		}
		entry := ChunkEntry(Chunk{Index: i, Path: path, Duration: d}, filepath.Join(req.WorkDir, CountdownFileName(i)), req.Countdown)
		if err := a.Transcoder.Normalize(ctx, path, entry.Path, entry.Overlay); err != nil {
			return nil, fmt.Errorf("overlay countdown on chunk %d: %w", i, err)
		}
		logger.Debug("chunk prepared",
			logging.Int("chunk", i),
			logging.Float64("duration_seconds", d),
		)
		chunks[i] = entry
	}

	pl := &Playlist{Entries: Interleave(welcome, chunks, adEntries)}
	if err := tracker.Advance(ctx, StateInterleaved); err != nil {
		return nil, err
	}

	if err := pl.WriteConcatList(filepath.Join(req.WorkDir, ListFileName)); err != nil {
		return nil, err
	}
	logger.Info("playlist assembled",
		logging.Bool("welcome", welcome != nil),
		logging.Int("chunks", pl.Count(KindChunk)),
		logging.Int("ads", pl.Count(KindAd)),
		logging.Float64("duration_seconds", pl.Duration()),
	)
	if err := tracker.Advance(ctx, StateListed); err != nil {
		return nil, err
	}
	return pl, nil
}

// welcome renders the welcome clip, or returns nil when there is no text.
func (a *Assembler) welcome(ctx context.Context, req AssembleRequest, logger *slog.Logger) (*Entry, error) {
	chain, ok := overlay.Welcome(req.WelcomeLines, req.WelcomeStyle)
	if !ok {
		logger.Info("no welcome text, skipping welcome clip")
		return nil, nil
	}
	if req.WelcomeSeconds <= 0 {
		logger.Info("welcome duration is zero, skipping welcome clip")
		return nil, nil
	}
	out := filepath.Join(req.WorkDir, WelcomeFileName)
	if err := a.Transcoder.RenderWelcome(ctx, out, chain, req.WelcomeSeconds); err != nil {
		return nil, fmt.Errorf("render welcome: %w", err)
	}
	return &Entry{Kind: KindWelcome, Path: out, Duration: req.WelcomeSeconds, Overlay: chain}, nil
}
