// Package media prepares discovered files for the recognition engine.
//
// Audio inputs pass through untouched. Video inputs are transcoded with ffmpeg
// into a 16 kHz mono PCM WAV inside a per-run scratch directory; the returned
// Prepared value owns that artifact and removes it on Cleanup.
//
// All external processes, including the engine backends, are spawned through
// Runner so that window suppression on Windows is an explicit option instead
// of process-wide state.
package media
