// Package encoding supervises the final ffmpeg encode of an assembled program.
//
// The supervisor starts ffmpeg in its own process group, reads its combined
// output line by line while it runs, and turns progress lines into samples for
// a ProgressReporter (in-place on a terminal, sampled structured logs
// otherwise). Every line is kept so that known quality signatures can be
// reported as warnings once ffmpeg exits. The exit status alone decides
// success. A deadline or cancellation stops the whole process group and
// removes the partial output.
package encoding
