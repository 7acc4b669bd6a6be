package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"whisperwiz/internal/config"
)

// LogFileName is the file created under the configured log directory.
const LogFileName = "whisperwiz.log"

// Options describes logger construction parameters.
type Options struct {
	Level       string
	Format      string   // "console" (default) or "json"
	OutputPaths []string // "stdout", "stderr" or file paths; empty means stderr
	Development bool     // adds caller info at every level
}

type handlerFactory func(w io.Writer, level slog.Leveler, addSource bool) slog.Handler

var formats = map[string]handlerFactory{
	"console": func(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
		return newPrettyHandler(w, level, addSource)
	},
	"json": newJSONHandler,
}

// New constructs a slog logger from opts.
func New(opts Options) (*slog.Logger, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	factory, ok := formats[format]
	if !ok {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	paths := opts.OutputPaths
	if len(paths) == 0 {
		paths = []string{"stderr"}
	}
	w, err := openSinks(paths)
	if err != nil {
		return nil, err
	}

	level := parseLevel(opts.Level)
	return slog.New(factory(w, level, opts.Development || level <= slog.LevelDebug)), nil
}

// NewFromConfig logs to <log_dir>/whisperwiz.log and, when console names a
// stream ("stdout" or "stderr"), to that stream too.
func NewFromConfig(cfg *config.Config, console string) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info"})
	}
	var paths []string
	if console != "" {
		paths = append(paths, console)
	}
	if dir := cfg.Paths.LogDir; dir != "" {
		paths = append(paths, filepath.Join(dir, LogFileName))
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: paths,
	})
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	name := strings.TrimSpace(level)
	if strings.EqualFold(name, "warning") {
		name = "warn"
	}
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// openSinks resolves each distinct path once. Files are opened for append
// and never closed; the process owns them until exit.
func openSinks(paths []string) (io.Writer, error) {
	var writers []io.Writer
	var seen []string
	for _, raw := range paths {
		path := strings.TrimSpace(raw)
		if path == "" || slices.Contains(seen, path) {
			continue
		}
		seen = append(seen, path)

		w, err := openSink(path)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}
	switch len(writers) {
	case 0:
		return io.Discard, nil
	case 1:
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

func openSink(path string) (io.Writer, error) {
	switch path {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure log dir for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}

func newJSONHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		AddSource:   addSource,
		ReplaceAttr: jsonReplace,
	})
}

// jsonReplace renames time to "ts", lowercases levels and trims source paths.
func jsonReplace(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		attr.Key = "ts"
		if attr.Value.Kind() == slog.KindTime {
			attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
		}
	case slog.LevelKey:
		attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
	case slog.SourceKey:
		if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
			attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
	}
	return attr
}
