// Package services defines shared utilities consumed by the transcription
// pipeline and the external tool integrations beneath it.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, work item paths, and pipeline stages
//     for logging and history records.
//   - Structured error markers plus the Wrap helper that classify failures
//     (engine load, transcode, transcribe, write, discovery, cancellation) and
//     Describe, which renders them as the single human-readable message the
//     controlling context receives.
//
// Use these helpers when wiring new pipeline steps so failure classification
// and observability stay uniform across the run.
package services
