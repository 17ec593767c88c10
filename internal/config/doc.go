// Package config loads, normalizes, and validates adreel configuration data.
//
// Two files feed a run. The TOML application config names directories,
// ffmpeg settings, deadlines, and logging options; it has repository
// defaults, tilde expansion, and validation. The program configuration is a
// line-oriented KEY = VALUE file with // comments that operators edit by hand;
// LoadValues parses it into Values and LoadProgram turns that into the typed
// Program settings used to time welcome clips and ad breaks.
//
// Both are loaded once at startup and passed explicitly to the components
// that need them.
package config
