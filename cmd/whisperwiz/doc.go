// Package main hosts the whisperwiz CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, then hands batch runs to
// internal/pipeline and renders its events as a live status line (on a
// terminal) or one line per event. The remaining commands cover configuration
// scaffolding, dependency checks, run history, and the model catalogue.
//
// Add functionality to the internal packages first and surface it here as a
// command or flag.
package main
