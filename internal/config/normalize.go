package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFFmpeg()
	c.normalizeEncode()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key   string
		value *string
	}{
		{"paths.movies_dir", &c.Paths.MoviesDir},
		{"paths.output_dir", &c.Paths.OutputDir},
		{"paths.ads_dir", &c.Paths.AdsDir},
		{"paths.work_root", &c.Paths.WorkRoot},
		{"paths.welcome_text", &c.Paths.WelcomeText},
		{"paths.overlay_text", &c.Paths.OverlayText},
		{"paths.program_config", &c.Paths.ProgramConfig},
		{"paths.log_dir", &c.Paths.LogDir},
		{"metrics.textfile", &c.Metrics.Textfile},
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	if c.Paths.WorkRoot == "" {
		expanded, err := expandPath(defaultWorkRoot())
		if err != nil {
			return fmt.Errorf("paths.work_root: %w", err)
		}
		c.Paths.WorkRoot = expanded
	}
	if c.FFmpeg.FontFile != "" {
		expanded, err := expandPath(strings.TrimSpace(c.FFmpeg.FontFile))
		if err != nil {
			return fmt.Errorf("ffmpeg.font_file: %w", err)
		}
		c.FFmpeg.FontFile = expanded
	}
	return nil
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.FFmpegBinary = strings.TrimSpace(c.FFmpeg.FFmpegBinary)
	if c.FFmpeg.FFmpegBinary == "" {
		c.FFmpeg.FFmpegBinary = defaultFFmpegBinary
	}
	c.FFmpeg.FFprobeBinary = strings.TrimSpace(c.FFmpeg.FFprobeBinary)
	if c.FFmpeg.FFprobeBinary == "" {
		c.FFmpeg.FFprobeBinary = defaultFFprobeBinary
	}
	c.FFmpeg.Preset = strings.ToLower(strings.TrimSpace(c.FFmpeg.Preset))
	if c.FFmpeg.Preset == "" {
		c.FFmpeg.Preset = defaultPreset
	}
	c.FFmpeg.AudioBitrate = strings.TrimSpace(c.FFmpeg.AudioBitrate)
	if c.FFmpeg.AudioBitrate == "" {
		c.FFmpeg.AudioBitrate = defaultAudioBitrate
	}
	if c.FFmpeg.AudioSampleRate == 0 {
		c.FFmpeg.AudioSampleRate = defaultAudioSampleRate
	}
	if c.FFmpeg.Width == 0 {
		c.FFmpeg.Width = defaultWidth
	}
	if c.FFmpeg.Height == 0 {
		c.FFmpeg.Height = defaultHeight
	}
	c.FFmpeg.MovieExt = normalizeExt(c.FFmpeg.MovieExt, defaultMovieExt)
	c.FFmpeg.AdExt = normalizeExt(c.FFmpeg.AdExt, defaultAdExt)
}

func normalizeExt(ext, fallback string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return fallback
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func (c *Config) normalizeEncode() {
	if c.Encode.StageTimeout == 0 {
		c.Encode.StageTimeout = defaultStageTimeout
	}
	if c.Encode.FinalTimeout == 0 {
		c.Encode.FinalTimeout = defaultFinalTimeout
	}
	if c.Encode.KillGrace == 0 {
		c.Encode.KillGrace = defaultKillGrace
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = defaultBatchWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
