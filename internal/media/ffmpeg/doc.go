// Package ffmpeg turns playlist operations into ffmpeg invocations.
//
// Builder holds the uniform output format (libx264 video, AAC audio at a fixed
// sample rate and layout, fixed frame size) and produces argument lists for
// each operation without running anything. CLI executes those argument lists
// with a per-stage deadline, checks the exit status, and reports failures as
// services.ErrExternalTool carrying the last lines ffmpeg printed.
//
// Every part of a playlist goes through the same Builder so the final concat
// can stream-copy without mixing codecs, sizes, or sample rates.
package ffmpeg
