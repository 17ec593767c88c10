// Package ffprobe wraps the ffprobe queries adreel needs: full JSON
// inspection so unplayable movies are rejected before encoding, audio stream
// detection so silent clips can be given a silent track, and plain-text
// duration probes for chunk timing.
//
// Each query runs in its own process group under the client's timeout.
// Failures carry services.ErrExternalTool with ffprobe's stderr, an expired
// deadline carries services.ErrTimeout, and unusable output carries
// services.ErrValidation.
package ffprobe
