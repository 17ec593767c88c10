package preflight

import (
	"context"
	"strings"

	"adreel/internal/config"
	"adreel/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Optional checks never block a run; a failing optional check only
	// means a feature will be skipped.
	Optional bool
	Detail   string
}

// RunAll executes every preflight check for cfg in display order.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, fromStatus(status))
	}
	if ffmpeg := cfg.FFmpeg.FFmpegBinary; ffmpeg != "" {
		results = append(results, fromStatus(deps.CheckFFmpegCapabilities(ctx, ffmpeg)))
	}

	results = append(results,
		CheckDirectoryReadable("Movies directory", cfg.Paths.MoviesDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Work root", cfg.Paths.WorkRoot),
		CheckFreeSpace("Work root free space", cfg.Paths.WorkRoot, cfg.MinFreeBytes()),
		CheckFileReadable("Program config", cfg.Paths.ProgramConfig),
	)

	ads := CheckDirectoryReadable("Ads directory", cfg.Paths.AdsDir)
	ads.Optional = true
	results = append(results, ads)

	for _, optional := range []struct{ name, path string }{
		{"Welcome text", cfg.Paths.WelcomeText},
		{"Overlay text", cfg.Paths.OverlayText},
	} {
		result := CheckFileReadable(optional.name, optional.path)
		result.Optional = true
		results = append(results, result)
	}

	if strings.TrimSpace(cfg.FFmpeg.FontFile) != "" {
		results = append(results, CheckFileReadable("Font file", cfg.FFmpeg.FontFile))
	}
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed && !result.Optional {
			failed = append(failed, result)
		}
	}
	return failed
}

func fromStatus(status deps.Status) Result {
	result := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional, Detail: status.Detail}
	if status.Available {
		result.Detail = status.Command
	}
	return result
}
