package workflow

import (
	"adreel/internal/config"
	"adreel/internal/overlay"
)

// Settings are the per-run values every job shares.
type Settings struct {
	SegmentSeconds float64
	WelcomeSeconds float64
	WelcomeLines   []string
	OverlayLines   []string
	WelcomeStyle   overlay.WelcomeStyle
	Countdown      overlay.CountdownStyle
	Watermark      overlay.WatermarkStyle
	MinFreeBytes   uint64
}

// NewSettings combines the application config, the program file and the two
// text resources.
func NewSettings(cfg *config.Config, program config.Program, welcomeLines, overlayLines []string) Settings {
	welcome := overlay.DefaultWelcomeStyle(program.WelcomeTextSize)
	welcome.CanvasWidth = cfg.FFmpeg.Width
	welcome.CanvasHeight = cfg.FFmpeg.Height
	welcome.FontFile = cfg.FFmpeg.FontFile

	countdown := overlay.DefaultCountdownStyle()
	countdown.FontFile = cfg.FFmpeg.FontFile

	watermark := overlay.DefaultWatermarkStyle(program.OverlayTextSize)
	watermark.FontFile = cfg.FFmpeg.FontFile

	return Settings{
		SegmentSeconds: program.AdInterval.Seconds(),
		WelcomeSeconds: program.WelcomeDuration.Seconds(),
		WelcomeLines:   welcomeLines,
		OverlayLines:   overlayLines,
		WelcomeStyle:   welcome,
		Countdown:      countdown,
		Watermark:      watermark,
		MinFreeBytes:   cfg.MinFreeBytes(),
	}
}
