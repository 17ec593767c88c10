// Package main hosts the adreel CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration, runs preflight checks, and
// hands discovered movies to the workflow runner. Dry runs (plan), health
// checks (check), and workspace cleanup (sweep) share the same configuration
// resolution and logging setup.
//
// Keep this package lean: new behaviour belongs in the internal packages and
// is only surfaced here through commands or flags.
package main
