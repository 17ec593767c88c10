package config

const (
	defaultConfigPath      = "~/.config/adreel/config.toml"
	defaultMoviesDir       = "~/adreel/movies"
	defaultOutputDir       = "~/adreel/output"
	defaultAdsDir          = "~/adreel/ads"
	defaultWelcomeText     = "~/.config/adreel/welcome.txt"
	defaultOverlayText     = "~/.config/adreel/overlay.txt"
	defaultProgramConfig   = "~/.config/adreel/configuration.txt"
	defaultLogDir          = "~/.local/share/adreel/logs"
	defaultFFmpegBinary    = "ffmpeg"
	defaultFFprobeBinary   = "ffprobe"
	defaultPreset          = "medium"
	defaultCRF             = 18
	defaultAudioBitrate    = "320k"
	defaultAudioSampleRate = 48000
	defaultWidth           = 1280
	defaultHeight          = 720
	defaultMovieExt        = ".mkv"
	defaultAdExt           = ".mp4"
	defaultStageTimeout    = 4 * 60 * 60
	defaultFinalTimeout    = 12 * 60 * 60
	defaultKillGrace       = 10
	defaultMinFreeGiB      = 20
	defaultBatchWorkers    = 1
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MoviesDir:     defaultMoviesDir,
			OutputDir:     defaultOutputDir,
			AdsDir:        defaultAdsDir,
			WorkRoot:      defaultWorkRoot(),
			WelcomeText:   defaultWelcomeText,
			OverlayText:   defaultOverlayText,
			ProgramConfig: defaultProgramConfig,
			LogDir:        defaultLogDir,
		},
		FFmpeg: FFmpeg{
			FFmpegBinary:    defaultFFmpegBinary,
			FFprobeBinary:   defaultFFprobeBinary,
			Preset:          defaultPreset,
			CRF:             defaultCRF,
			AudioBitrate:    defaultAudioBitrate,
			AudioSampleRate: defaultAudioSampleRate,
			Width:           defaultWidth,
			Height:          defaultHeight,
			MovieExt:        defaultMovieExt,
			AdExt:           defaultAdExt,
		},
		Encode: Encode{
			StageTimeout: defaultStageTimeout,
			FinalTimeout: defaultFinalTimeout,
			KillGrace:    defaultKillGrace,
			MinFreeGiB:   defaultMinFreeGiB,
		},
		Batch: Batch{
			Workers:         defaultBatchWorkers,
			ContinueOnError: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
