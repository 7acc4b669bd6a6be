// Package whisper drives the openai-whisper command line tool as a
// recognition engine.
//
// Load checks the executable and the model name and prepares the model
// directory; the CLI downloads weights there on first use. Each Transcribe
// call runs the CLI with JSON output into a private temporary directory and
// decodes the segments from it.
package whisper
