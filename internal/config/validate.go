package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var validPresets = map[string]struct{}{
	"ultrafast": {}, "superfast": {}, "veryfast": {}, "faster": {}, "fast": {},
	"medium": {}, "slow": {}, "slower": {}, "veryslow": {}, "placebo": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateEncode(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.MoviesDir == "" {
		return errors.New("paths.movies_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.ProgramConfig == "" {
		return errors.New("paths.program_config must be set")
	}
	if filepath.Clean(c.Paths.MoviesDir) == filepath.Clean(c.Paths.OutputDir) {
		return errors.New("paths.output_dir must differ from paths.movies_dir")
	}
	if isWithin(c.Paths.WorkRoot, c.Paths.MoviesDir) {
		return errors.New("paths.work_root must not live inside paths.movies_dir")
	}
	return nil
}

// Smallest canvas the welcome card and watermark still fit on.
const (
	minCanvasWidth  = 320
	minCanvasHeight = 180
)

func (c *Config) validateFFmpeg() error {
	if _, ok := validPresets[c.FFmpeg.Preset]; !ok {
		return fmt.Errorf("ffmpeg.preset: unsupported value %q", c.FFmpeg.Preset)
	}
	if c.FFmpeg.CRF < 0 || c.FFmpeg.CRF > 51 {
		return errors.New("ffmpeg.crf must be between 0 and 51")
	}
	if c.FFmpeg.AudioSampleRate <= 0 {
		return errors.New("ffmpeg.audio_sample_rate must be positive")
	}
	if c.FFmpeg.Width <= 0 || c.FFmpeg.Height <= 0 {
		return errors.New("ffmpeg.width and ffmpeg.height must be positive")
	}
	if c.FFmpeg.Width%2 != 0 || c.FFmpeg.Height%2 != 0 {
		return errors.New("ffmpeg.width and ffmpeg.height must be even")
	}
	if c.FFmpeg.Width < minCanvasWidth || c.FFmpeg.Height < minCanvasHeight {
		return fmt.Errorf("ffmpeg.width and ffmpeg.height must be at least %dx%d", minCanvasWidth, minCanvasHeight)
	}
	return nil
}

func (c *Config) validateEncode() error {
	if c.Encode.StageTimeout < 0 {
		return errors.New("encode.stage_timeout must be positive")
	}
	if c.Encode.FinalTimeout < 0 {
		return errors.New("encode.final_timeout must be positive")
	}
	if c.Encode.KillGrace < 0 {
		return errors.New("encode.kill_grace must be positive")
	}
	if c.Encode.MinFreeGiB < 0 {
		return errors.New("encode.min_free_gib must be zero or positive")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Workers < 1 {
		return errors.New("batch.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func isWithin(child, parent string) bool {
	if child == "" || parent == "" {
		return false
	}
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
