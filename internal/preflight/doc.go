// Package preflight checks that a run can succeed before any encoding starts.
//
// RunAll verifies the ffmpeg and ffprobe binaries (including the encoders and
// filters the overlay chains depend on), input and output directories, the
// program configuration file, and free space on the work root. The run and
// check commands both use it; a failing required check maps to exit code 2.
//
// Missing ads, welcome text, or overlay text are reported as optional: the
// run continues with that feature omitted.
package preflight
