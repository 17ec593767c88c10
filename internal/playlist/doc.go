// Package playlist composes the ordered list of parts that make up a finished
// program: an optional welcome clip, then the movie chunks with an ad in each
// gap between consecutive chunks.
//
// Assembler drives the media stages needed to produce those parts inside a
// job workspace and records progress through a Tracker. Interleave and Plan
// are pure and back both the assembler and the dry-run planner, so a dry run
// predicts exactly the order a real run produces.
package playlist
