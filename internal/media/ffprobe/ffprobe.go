package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"adreel/internal/procgroup"
	"adreel/internal/services"
)

var commandContext = exec.CommandContext

const defaultKillGrace = 5 * time.Second

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Client binds the probe helpers to one ffprobe binary. Every query runs in
// its own process group and, when Timeout is set, under that deadline.
type Client struct {
	Binary    string
	Timeout   time.Duration
	KillGrace time.Duration
}

// Inspect decodes the streams and container metadata of path.
func (c Client) Inspect(ctx context.Context, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, services.Wrap(services.ErrValidation, "ffprobe", "inspect", "empty path", nil)
	}
	output, err := c.run(ctx, "inspect", "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		return Result{}, err
	}
	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "ffprobe", "inspect", "decode json", err)
	}
	return result, nil
}

// HasAudio reports whether path contains at least one audio stream.
func (c Client) HasAudio(ctx context.Context, path string) (bool, error) {
	output, err := c.run(ctx, "audio streams", "-v", "error", "-select_streams", "a", "-show_entries", "stream=index", "-of", "json", "--", path)
	if err != nil {
		return false, err
	}
	var payload struct {
		Streams []struct {
			Index int `json:"index"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(output, &payload); err != nil {
		return false, services.Wrap(services.ErrValidation, "ffprobe", "audio streams", "decode json", err)
	}
	return len(payload.Streams) > 0, nil
}

// Duration returns the container duration of path in seconds.
func (c Client) Duration(ctx context.Context, path string) (float64, error) {
	output, err := c.run(ctx, "duration", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", "--", path)
	if err != nil {
		return 0, err
	}
	text := strings.TrimSpace(string(output))
	seconds, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, services.Wrap(services.ErrValidation, "ffprobe", "duration", fmt.Sprintf("unusable duration %q for %s", text, path), err)
	}
	return seconds, nil
}

func (c Client) run(ctx context.Context, op string, args ...string) ([]byte, error) {
	binary := strings.TrimSpace(c.Binary)
	if binary == "" {
		binary = "ffprobe"
	}
	probeCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	grace := c.KillGrace
	if grace <= 0 {
		grace = defaultKillGrace
	}

	cmd := commandContext(probeCtx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := procgroup.Run(probeCtx, cmd, grace); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(probeCtx.Err(), context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "ffprobe", op, fmt.Sprintf("probe exceeded %s", c.Timeout), probeCtx.Err())
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = "no output"
		}
		return nil, services.Wrap(services.ErrExternalTool, "ffprobe", op, detail, err)
	}
	return stdout.Bytes(), nil
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int {
	return r.countType("video")
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	return r.countType("audio")
}

func (r Result) countType(kind string) int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, kind) {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, 0 when absent,
// or NaN when ffprobe reported something unparsable.
func (r Result) DurationSeconds() float64 {
	cleaned := strings.TrimSpace(r.Format.Duration)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}

// Layout summarizes the stream counts, e.g. "1v/2a".
func (r Result) Layout() string {
	return fmt.Sprintf("%dv/%da", r.VideoStreamCount(), r.AudioStreamCount())
}

// RequirePlayable returns an ErrValidation error when path has no video
// stream or no usable positive duration.
func (r Result) RequirePlayable(path string) error {
	if r.VideoStreamCount() == 0 {
		return services.Wrap(services.ErrValidation, "ffprobe", "inspect", "no video stream in "+path, nil)
	}
	seconds := r.DurationSeconds()
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return services.Wrap(services.ErrValidation, "ffprobe", "inspect", fmt.Sprintf("unusable duration %q for %s", r.Format.Duration, path), nil)
	}
	return nil
}
