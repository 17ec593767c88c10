// Package services defines shared utilities consumed by the pipeline stages
// and the external tool adapters.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and movie paths for
//     logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent job outcomes (failed vs timed out vs canceled).
//
// Use these helpers when wiring new stage logic so operational behaviour (error
// handling, observability) stays uniform across the pipeline.
package services
