// Package config loads, normalizes, and validates whisperwiz configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// WHISPERWIZ_MODEL. The Config type centralizes every knob the CLI and the
// transcription pipeline need, so directories, the engine backend, output
// layout, and failure policy are resolved in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
