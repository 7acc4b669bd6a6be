// Package pipeline runs one batch: load the model, discover inputs, then
// prepare, transcribe and write each file in order while reporting status and
// progress to a Notifier.
//
// A run owns its RunState and advances it through a validated phase machine.
// Start runs the batch on its own goroutine and exposes notifications as a
// channel so the caller never blocks on pipeline work.
package pipeline
