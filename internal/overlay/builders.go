package overlay

import (
	"fmt"
	"strconv"
	"strings"
)

// WelcomeStyle controls the welcome card layout.
type WelcomeStyle struct {
	CanvasWidth  int
	CanvasHeight int
	BoxWidth     int
	BoxHeight    int
	Border       int
	BoxColor     string
	BorderColor  string
	FontFile     string
	FontSize     int
	FontColor    string
	// LineGap is added to FontSize to get the line height.
	LineGap int
}

// DefaultWelcomeStyle returns the 800x300 blue card on a 1280x720 canvas.
func DefaultWelcomeStyle(fontSize int) WelcomeStyle {
	return WelcomeStyle{
		CanvasWidth:  1280,
		CanvasHeight: 720,
		BoxWidth:     800,
		BoxHeight:    300,
		Border:       3,
		BoxColor:     "blue@0.7",
		BorderColor:  "white",
		FontSize:     fontSize,
		FontColor:    "white",
		LineGap:      10,
	}
}

// Welcome lays out lines centred inside a bordered box. A box larger than the
// canvas shrinks to fit inside it with its border. It reports false when there
// is nothing to show.
func Welcome(lines []string, style WelcomeStyle) (Chain, bool) {
	lines = nonEmpty(lines)
	if len(lines) == 0 {
		return nil, false
	}

	style.BoxWidth = fitBox(style.BoxWidth, style.CanvasWidth, style.Border)
	style.BoxHeight = fitBox(style.BoxHeight, style.CanvasHeight, style.Border)
	bgX := (style.CanvasWidth - style.BoxWidth) / 2
	bgY := (style.CanvasHeight - style.BoxHeight) / 2
	lineH := style.FontSize + style.LineGap

	chain := Chain{
		Box{
			X:      strconv.Itoa(bgX - style.Border),
			Y:      strconv.Itoa(bgY - style.Border),
			Width:  style.BoxWidth + 2*style.Border,
			Height: style.BoxHeight + 2*style.Border,
			Color:  style.BorderColor,
		},
		Box{
			X:      strconv.Itoa(bgX),
			Y:      strconv.Itoa(bgY),
			Width:  style.BoxWidth,
			Height: style.BoxHeight,
			Color:  style.BoxColor,
		},
	}

	top := float64(bgY) + float64(style.BoxHeight-len(lines)*lineH)/2
	for i, line := range lines {
		chain = append(chain, Text{
			Content:   line,
			FontFile:  style.FontFile,
			FontSize:  style.FontSize,
			FontColor: style.FontColor,
			X:         "(w-text_w)/2",
			Y:         formatNumber(top + float64(i*lineH)),
		})
	}
	return chain, true
}

// fitBox clamps a box side so it and its border stay on the canvas.
func fitBox(size, canvas, border int) int {
	if limit := canvas - 2*border; limit > 0 && size > limit {
		return limit
	}
	return size
}

// CountdownStyle controls the ad-break countdown.
type CountdownStyle struct {
	// Window is how many seconds before the end of a chunk the countdown appears.
	Window    float64
	FontFile  string
	FontSize  int
	FontColor string
}

// DefaultCountdownStyle returns a five second white countdown.
func DefaultCountdownStyle() CountdownStyle {
	return CountdownStyle{Window: 5, FontSize: 36, FontColor: "white"}
}

// CountdownWindow returns when the countdown starts and how many seconds it
// counts down from for a chunk of the given duration. Chunks shorter than the
// window start at zero and count their real remaining time.
func CountdownWindow(duration, window float64) (start, span float64) {
	start = duration - window
	span = window
	if start < 0 {
		start = 0
		span = duration
	}
	return start, span
}

// Countdown builds the "Ads in Ns" text shown during the last seconds of a chunk.
func Countdown(duration float64, style CountdownStyle) Text {
	start, span := CountdownWindow(duration, style.Window)
	return Text{
		Content:     fmt.Sprintf("Ads in %%{eif:%s-(t-%s):d}s", FormatSeconds(span), FormatSeconds(start)),
		FontFile:    style.FontFile,
		FontSize:    style.FontSize,
		FontColor:   style.FontColor,
		X:           "w-text_w-20",
		Y:           "h-100",
		Expand:      true,
		ShadowX:     3,
		ShadowY:     3,
		ShadowColor: "black",
		EnableFrom:  &start,
	}
}

// CountdownRemaining evaluates the countdown number drawn at time t, matching
// drawtext's eif truncation.
func CountdownRemaining(duration, window, t float64) int {
	start, span := CountdownWindow(duration, window)
	return int(span - (t - start))
}

// WatermarkStyle controls the whole-program corner text.
type WatermarkStyle struct {
	FontFile  string
	FontSize  int
	FontColor string
	Margin    int
}

// DefaultWatermarkStyle returns white corner text with a 10px margin.
func DefaultWatermarkStyle(fontSize int) WatermarkStyle {
	return WatermarkStyle{FontSize: fontSize, FontColor: "white", Margin: 10}
}

// Watermark places the first line top-left and the second top-right. Extra
// lines are dropped. It reports false when there are no lines.
func Watermark(lines []string, style WatermarkStyle) (Chain, bool) {
	lines = nonEmpty(lines)
	if len(lines) == 0 {
		return nil, false
	}
	if len(lines) > 2 {
		lines = lines[:2]
	}
	margin := strconv.Itoa(style.Margin)
	xs := []string{margin, "w-text_w-" + margin}

	chain := make(Chain, 0, len(lines))
	for i, line := range lines {
		chain = append(chain, Text{
			Content:     line,
			FontFile:    style.FontFile,
			FontSize:    style.FontSize,
			FontColor:   style.FontColor,
			X:           xs[i],
			Y:           margin,
			ShadowX:     3,
			ShadowY:     3,
			ShadowColor: "black",
		})
	}
	return chain, true
}

func nonEmpty(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
