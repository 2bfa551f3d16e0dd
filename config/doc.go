// Package config loads, normalizes, and validates robodata configuration.
//
// Settings come from a TOML file (an explicit path, ./robodata.toml, or
// nothing) layered over repository defaults. Command-line flags are applied on
// top by the CLI, so the file only needs the knobs a project wants to pin.
package config
