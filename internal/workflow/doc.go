// Package workflow turns a movies directory into finished programs.
//
// Discover walks the movies root and produces one MovieJob per movie, with the
// output directory mirroring the movie's relative location. Runner processes a
// job inside its own workspace: it assembles the playlist, concatenates the
// parts into an intermediate file, runs the supervised final encode with the
// whole-program watermark and cleans up on every exit path. RunBatch fans jobs
// out over a bounded worker pool and collects a report per job so one failure
// does not stop the rest.
package workflow
