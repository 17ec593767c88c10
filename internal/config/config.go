package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains input, output, and scratch locations.
type Paths struct {
	MoviesDir     string `toml:"movies_dir"`
	OutputDir     string `toml:"output_dir"`
	AdsDir        string `toml:"ads_dir"`
	WorkRoot      string `toml:"work_root"`
	WelcomeText   string `toml:"welcome_text"`
	OverlayText   string `toml:"overlay_text"`
	ProgramConfig string `toml:"program_config"`
	LogDir        string `toml:"log_dir"`
}

// FFmpeg contains encoder binaries and the uniform output format every
// playlist part is normalized to.
type FFmpeg struct {
	FFmpegBinary    string `toml:"ffmpeg_binary"`
	FFprobeBinary   string `toml:"ffprobe_binary"`
	FontFile        string `toml:"font_file"`
	Preset          string `toml:"preset"`
	CRF             int    `toml:"crf"`
	AudioBitrate    string `toml:"audio_bitrate"`
	AudioSampleRate int    `toml:"audio_sample_rate"`
	Width           int    `toml:"width"`
	Height          int    `toml:"height"`
	MovieExt        string `toml:"movie_ext"`
	AdExt           string `toml:"ad_ext"`
}

// Encode contains deadlines (seconds) and resource limits for ffmpeg runs.
type Encode struct {
	StageTimeout int `toml:"stage_timeout"`
	FinalTimeout int `toml:"final_timeout"`
	KillGrace    int `toml:"kill_grace"`
	MinFreeGiB   int `toml:"min_free_gib"`
}

// Batch controls how many movies are processed at once.
type Batch struct {
	Workers         int  `toml:"workers"`
	ContinueOnError bool `toml:"continue_on_error"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Metrics configures the optional node_exporter textfile.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Config encapsulates all application settings for adreel.
//
// The program-level KEY = VALUE file referenced by Paths.ProgramConfig is
// separate; see LoadValues and LoadProgram.
type Config struct {
	Paths   Paths   `toml:"paths"`
	FFmpeg  FFmpeg  `toml:"ffmpeg"`
	Encode  Encode  `toml:"encode"`
	Batch   Batch   `toml:"batch"`
	Logging Logging `toml:"logging"`
	Metrics Metrics `toml:"metrics"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("adreel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into. The movies and
// ads directories are inputs and are left alone.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.WorkRoot, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StageTimeout bounds every ffmpeg invocation except the final encode.
func (c *Config) StageTimeout() time.Duration {
	return time.Duration(c.Encode.StageTimeout) * time.Second
}

// FinalTimeout bounds the final re-encode.
func (c *Config) FinalTimeout() time.Duration {
	return time.Duration(c.Encode.FinalTimeout) * time.Second
}

// KillGrace is the delay between SIGTERM and SIGKILL when stopping ffmpeg.
func (c *Config) KillGrace() time.Duration {
	return time.Duration(c.Encode.KillGrace) * time.Second
}

// MinFreeBytes returns the free-space floor for the work root.
func (c *Config) MinFreeBytes() uint64 {
	if c.Encode.MinFreeGiB <= 0 {
		return 0
	}
	return uint64(c.Encode.MinFreeGiB) << 30
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultWorkRoot() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "adreel", "work")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/adreel/work"
	}
	return filepath.Join(home, ".cache", "adreel", "work")
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
// An existing file is replaced atomically.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := renameio.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
