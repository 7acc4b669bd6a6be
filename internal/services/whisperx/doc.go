// Package whisperx runs WhisperX through uvx as a recognition engine.
//
// Load resolves uvx, validates the model name, and warms the uvx package
// cache with a `whisperx --help` invocation so the first file does not pay
// the environment install cost. Transcribe writes JSON into a temporary
// directory and decodes the segments from it.
//
// Index URLs, decoding parameters, and the VAD method follow Config; the
// Hugging Face token is only passed when pyannote VAD is selected.
package whisperx
