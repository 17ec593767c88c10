package encoding

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ProgressSample is one parsed ffmpeg status line.
type ProgressSample struct {
	Frame int64
	// Timecode is the position as printed by ffmpeg, e.g. 00:01:02.50.
	Timecode string
	Position time.Duration
	Speed    float64
	// Percent is Position relative to the expected length, or -1 when the
	// length is unknown.
	Percent float64
}

var progressPattern = regexp.MustCompile(`frame=\s*(\d+)\s+fps=.*time=([0-9:.]+).*speed=\s*([\d.]+)`)

// ParseProgress extracts a sample from an ffmpeg status line. total is the
// expected output length in seconds; zero or less leaves Percent at -1.
func ParseProgress(line string, total float64) (ProgressSample, bool) {
	m := progressPattern.FindStringSubmatch(line)
	if m == nil {
		return ProgressSample{}, false
	}
	frame, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return ProgressSample{}, false
	}
	speed, err := strconv.ParseFloat(strings.TrimSuffix(m[3], "."), 64)
	if err != nil {
		return ProgressSample{}, false
	}
	sample := ProgressSample{Frame: frame, Timecode: m[2], Speed: speed, Percent: -1}
	if pos, ok := ParseTimecode(m[2]); ok {
		sample.Position = pos
		if total > 0 {
			sample.Percent = min(pos.Seconds()/total*100, 100)
		}
	}
	return sample, true
}

// ParseTimecode parses HH:MM:SS(.frac), MM:SS or plain seconds.
func ParseTimecode(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, false
	}
	var seconds float64
	for _, part := range parts {
		n, err := strconv.ParseFloat(part, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		seconds = seconds*60 + n
	}
	return time.Duration(math.Round(seconds*1000)) * time.Millisecond, true
}
