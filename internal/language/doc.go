// Package language normalizes the transcription language setting.
//
// Users may write a language as an ISO 639-1 code ("de"), an ISO 639-2 code
// ("deu" or "ger"), or an English word ("german"). Engines receive the
// two-letter form; "auto" or an empty value lets the engine detect it.
package language
