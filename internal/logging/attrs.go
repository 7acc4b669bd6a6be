package logging

import (
	"log/slog"
	"time"
)

// Attr is a slog.Attr; the alias keeps callers from importing log/slog.
type Attr = slog.Attr

// Keys shared by pipeline, media and engine log lines.
const (
	KeyFile      = "file"
	KeyAudio     = "audio"
	KeyElapsed   = "elapsed"
	KeySegments  = "segments"
	KeyErrorKind = "error_kind"
)

func String(key, value string) Attr             { return slog.String(key, value) }
func Int(key string, value int) Attr            { return slog.Int(key, value) }
func Int64(key string, value int64) Attr        { return slog.Int64(key, value) }
func Duration(key string, d time.Duration) Attr { return slog.Duration(key, d) }
func Any(key string, value any) Attr            { return slog.Any(key, value) }

// Error returns the conventional "error" attr. A nil error logs as "<nil>".
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// File names the media file an entry is about.
func File(name string) Attr { return slog.String(KeyFile, name) }

// Audio names a transcoded scratch file.
func Audio(path string) Attr { return slog.String(KeyAudio, path) }

// Since records the time elapsed since start.
func Since(start time.Time) Attr { return slog.Duration(KeyElapsed, time.Since(start)) }

// Elapsed records an already measured duration.
func Elapsed(d time.Duration) Attr { return slog.Duration(KeyElapsed, d) }

// Segments records how many transcript segments were produced.
func Segments(n int) Attr { return slog.Int(KeySegments, n) }

// ErrorKind records the failure category ("transcode", "write", ...).
func ErrorKind(kind string) Attr { return slog.String(KeyErrorKind, kind) }

// Count renders progress as a completed/total group.
func Count(completed, total int) Attr {
	return slog.Group("count", slog.Int("completed", completed), slog.Int("total", total))
}

func toArgs(attrs []Attr) []any {
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return args
}
