package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"adreel/internal/logging"
	"adreel/internal/overlay"
	"adreel/internal/procgroup"
	"adreel/internal/services"
)

var commandContext = exec.CommandContext

// ChunkPattern is the segment muxer output name inside a workspace.
const ChunkPattern = "chunk_%03d.mkv"

var chunkName = regexp.MustCompile(`^chunk_(\d+)\.mkv$`)

// Prober answers whether a media file carries audio.
type Prober interface {
	HasAudio(ctx context.Context, path string) (bool, error)
}

// Options configures a CLI.
type Options struct {
	Binary       string
	Builder      Builder
	Prober       Prober
	StageTimeout time.Duration
	KillGrace    time.Duration
	Logger       *slog.Logger
}

// CLI runs ffmpeg stages synchronously.
type CLI struct {
	binary       string
	builder      Builder
	prober       Prober
	stageTimeout time.Duration
	killGrace    time.Duration
	logger       *slog.Logger
}

// New constructs a CLI from opts.
func New(opts Options) *CLI {
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	grace := opts.KillGrace
	if grace <= 0 {
		grace = 10 * time.Second
	}
	return &CLI{
		binary:       binary,
		builder:      opts.Builder,
		prober:       opts.Prober,
		stageTimeout: opts.StageTimeout,
		killGrace:    grace,
		logger:       logging.NewComponentLogger(opts.Logger, "ffmpeg"),
	}
}

// Builder exposes the argument builder used for every stage.
func (c *CLI) Builder() Builder {
	return c.builder
}

// Normalize re-encodes in to the output format with chain applied.
func (c *CLI) Normalize(ctx context.Context, in, out string, chain overlay.Chain) error {
	hasAudio, err := c.hasAudio(ctx, in)
	if err != nil {
		return err
	}
	return c.run(ctx, "normalize", out, c.builder.Normalize(in, out, chain, hasAudio))
}

// Segment splits in into pieces of at most seconds length inside workDir and
// returns the piece paths in playback order.
func (c *CLI) Segment(ctx context.Context, in, workDir string, seconds float64) ([]string, error) {
	if seconds <= 0 {
		return nil, services.Wrap(services.ErrValidation, "ffmpeg", "segment", fmt.Sprintf("segment length must be positive, got %v", seconds), nil)
	}
	hasAudio, err := c.hasAudio(ctx, in)
	if err != nil {
		return nil, err
	}
	pattern := filepath.Join(workDir, ChunkPattern)
	if err := c.run(ctx, "segment", "", c.builder.Segment(in, pattern, seconds, hasAudio)); err != nil {
		return nil, err
	}
	chunks, err := CollectChunks(workDir)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "ffmpeg", "segment", "no chunks produced for "+in, nil)
	}
	return chunks, nil
}

// RenderWelcome writes a welcome clip of the given length to out.
func (c *CLI) RenderWelcome(ctx context.Context, out string, chain overlay.Chain, seconds float64) error {
	if seconds <= 0 {
		return services.Wrap(services.ErrValidation, "ffmpeg", "welcome", fmt.Sprintf("welcome duration must be positive, got %v", seconds), nil)
	}
	return c.run(ctx, "welcome", out, c.builder.Welcome(out, chain, seconds))
}

// ConcatCopy joins the parts named in list into out without re-encoding.
func (c *CLI) ConcatCopy(ctx context.Context, list, out string) error {
	return c.run(ctx, "concat", out, c.builder.Concat(list, out))
}

// CollectChunks lists chunk_NNN.mkv files in dir sorted by their number.
func CollectChunks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "ffmpeg", "collect chunks", dir, err)
	}
	type numbered struct {
		n    int
		path string
	}
	var found []numbered
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := chunkName.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, numbered{n: n, path: filepath.Join(dir, entry.Name())})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })
	paths := make([]string, len(found))
	for i, item := range found {
		paths[i] = item.path
	}
	return paths, nil
}

// hasAudio probes path under the same deadline as a stage.
func (c *CLI) hasAudio(ctx context.Context, path string) (bool, error) {
	if c.prober == nil {
		return true, nil
	}
	probeCtx := ctx
	if c.stageTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, c.stageTimeout)
		defer cancel()
	}
	ok, err := c.prober.HasAudio(probeCtx, path)
	if err == nil {
		return ok, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	if errors.Is(probeCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, services.ErrTimeout) {
		return false, services.Wrap(services.ErrTimeout, "ffmpeg", "probe audio", fmt.Sprintf("probe exceeded %s", c.stageTimeout), err)
	}
	return false, err
}

// run executes one stage. On failure the partially written output is removed.
func (c *CLI) run(ctx context.Context, op, out string, args []string) error {
	stageCtx := ctx
	if c.stageTimeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, c.stageTimeout)
		defer cancel()
	}

	tail := NewTail(20)
	cmd := commandContext(stageCtx, c.binary, args...) //nolint:gosec
	cmd.Stdout = tail
	cmd.Stderr = tail

	logger := logging.WithContext(ctx, c.logger)
	logger.Debug("ffmpeg stage starting", logging.String("op", op), logging.Strings("args", args))
	started := time.Now()

	err := procgroup.Run(stageCtx, cmd, c.killGrace)
	if err == nil {
		logger.Debug("ffmpeg stage finished",
			logging.String("op", op),
			logging.Duration("elapsed", time.Since(started)),
		)
		return nil
	}

	if out != "" {
		if rmErr := os.Remove(out); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logging.Warning(logger, "remove partial output failed", "partial file left in place",
				logging.String("path", out),
				logging.Error(rmErr),
			)
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(stageCtx.Err(), context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "ffmpeg", op, fmt.Sprintf("stage exceeded %s", c.stageTimeout), stageCtx.Err())
	}
	detail := tail.String()
	if detail == "" {
		detail = "no output"
	}
	return services.Wrap(services.ErrExternalTool, "ffmpeg", op, detail, err)
}
