package ffmpeg

import (
	"fmt"
	"strconv"

	"adreel/internal/config"
	"adreel/internal/overlay"
)

// Builder produces ffmpeg argument lists for the uniform output format.
type Builder struct {
	Preset       string
	CRF          int
	AudioBitrate string
	SampleRate   int
	Width        int
	Height       int
}

// NewBuilder returns a builder for the configured output format.
func NewBuilder(cfg config.FFmpeg) Builder {
	return Builder{
		Preset:       cfg.Preset,
		CRF:          cfg.CRF,
		AudioBitrate: cfg.AudioBitrate,
		SampleRate:   cfg.AudioSampleRate,
		Width:        cfg.Width,
		Height:       cfg.Height,
	}
}

// stagePrefix quiets ffmpeg for intermediate stages so failures leave a short,
// relevant log tail.
var stagePrefix = []string{"-hide_banner", "-nostdin", "-nostats", "-loglevel", "error", "-y"}

// finalPrefix keeps stats and warnings on for the supervised final encode.
var finalPrefix = []string{"-hide_banner", "-nostdin", "-y"}

func (b Builder) videoCodec() []string {
	return []string{"-c:v", "libx264", "-preset", b.Preset, "-crf", strconv.Itoa(b.CRF), "-pix_fmt", "yuv420p"}
}

func (b Builder) audioCodec() []string {
	return []string{"-c:a", "aac", "-b:a", b.AudioBitrate, "-ar", strconv.Itoa(b.SampleRate), "-ac", "2"}
}

// SilentSource is the lavfi source used when an input has no audio.
func (b Builder) SilentSource() string {
	return fmt.Sprintf("anullsrc=r=%d:cl=stereo", b.SampleRate)
}

// ScaleChain prefixes chain with a scale to the output frame size.
func (b Builder) ScaleChain(chain overlay.Chain) overlay.Chain {
	out := make(overlay.Chain, 0, len(chain)+1)
	out = append(out, overlay.Scale{Width: b.Width, Height: b.Height})
	return append(out, chain...)
}

// inputs returns the input and map arguments for a media file, adding a
// silent stereo track when the file has no audio.
func (b Builder) inputs(in string, hasAudio bool) []string {
	if hasAudio {
		return []string{"-i", in, "-map", "0:v:0", "-map", "0:a:0"}
	}
	return []string{"-i", in, "-f", "lavfi", "-i", b.SilentSource(), "-map", "0:v:0", "-map", "1:a:0"}
}

// Normalize re-encodes in to the output format, scaling first and then
// applying chain.
func (b Builder) Normalize(in, out string, chain overlay.Chain, hasAudio bool) []string {
	args := append([]string{}, stagePrefix...)
	args = append(args, b.inputs(in, hasAudio)...)
	args = append(args, "-vf", b.ScaleChain(chain).String())
	args = append(args, b.videoCodec()...)
	args = append(args, b.audioCodec()...)
	args = append(args, "-shortest", out)
	return args
}

// Segment re-encodes in and splits it into pieces of the given length
// written to pattern (a printf-style path such as chunk_%03d.mkv). Key frames
// are forced on each boundary so pieces come out at the requested length.
func (b Builder) Segment(in, pattern string, seconds float64, hasAudio bool) []string {
	span := overlay.FormatSeconds(seconds)
	args := append([]string{}, stagePrefix...)
	args = append(args, b.inputs(in, hasAudio)...)
	args = append(args, "-vf", b.ScaleChain(nil).String())
	args = append(args, b.videoCodec()...)
	args = append(args, "-force_key_frames", "expr:gte(t,n_forced*"+span+")")
	args = append(args, b.audioCodec()...)
	if !hasAudio {
		args = append(args, "-shortest")
	}
	args = append(args,
		"-f", "segment",
		"-segment_time", span,
		"-reset_timestamps", "1",
		pattern,
	)
	return args
}

// Welcome renders chain over a black frame for the given number of seconds
// with a silent audio track.
func (b Builder) Welcome(out string, chain overlay.Chain, seconds float64) []string {
	d := overlay.FormatSeconds(seconds)
	args := append([]string{}, stagePrefix...)
	args = append(args,
		"-f", "lavfi", "-i", fmt.Sprintf("color=c=black:s=%dx%d:d=%s", b.Width, b.Height, d),
		"-f", "lavfi", "-i", b.SilentSource(),
		"-map", "0:v:0", "-map", "1:a:0",
	)
	if !chain.Empty() {
		args = append(args, "-vf", chain.String())
	}
	args = append(args, b.videoCodec()...)
	args = append(args, b.audioCodec()...)
	args = append(args, "-t", d, "-shortest", out)
	return args
}

// Concat joins the files named in a concat demuxer list without re-encoding.
func (b Builder) Concat(list, out string) []string {
	args := append([]string{}, stagePrefix...)
	return append(args, "-f", "concat", "-safe", "0", "-i", list, "-c", "copy", out)
}

// Final re-encodes the concatenated program, drawing chain over every frame.
func (b Builder) Final(in, out string, chain overlay.Chain) []string {
	args := append([]string{}, finalPrefix...)
	args = append(args, "-i", in)
	if !chain.Empty() {
		args = append(args, "-vf", chain.String())
	}
	args = append(args, b.videoCodec()...)
	args = append(args, b.audioCodec()...)
	return append(args, out)
}
