// Package logging assembles structured slog loggers and formatting helpers used
// across whisperwiz.
//
// It owns the console/JSON handlers, centralizes level and output plumbing, and
// exposes context-aware helpers so pipeline code tags log lines with the run
// ID, the current work item, and the pipeline stage. A no-op logger is
// provided for tests and wiring code that cannot fail.
package logging
