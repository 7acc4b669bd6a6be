package testsupport

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"whisperwiz/internal/config"
)

// ConfigOption adjusts the config NewConfig returns.
type ConfigOption func(f *fixture)

type fixture struct {
	t    testing.TB
	root string
	cfg  config.Config
}

// NewConfig returns defaults rooted in a fresh temp dir:
//
//	<root>/output  <root>/scratch  <root>/models  <root>/logs
//
// with model "tiny" and run history off.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()
	f := &fixture{t: t, root: t.TempDir(), cfg: config.Default()}
	f.cfg.Paths = config.Paths{
		OutputDir:  f.path("output"),
		ScratchDir: f.path("scratch"),
		ModelDir:   f.path("models"),
		LogDir:     f.path("logs"),
	}
	f.cfg.Transcription.Model = "tiny"
	f.cfg.History.Enabled = false
	for _, opt := range opts {
		opt(f)
	}
	return &f.cfg
}

func (f *fixture) path(name string) string { return filepath.Join(f.root, name) }

// BaseDir returns the temp root behind cfg.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}

// WithHistory turns on the history database at <logs>/history.db.
func WithHistory() ConfigOption {
	return func(f *fixture) {
		f.cfg.History.Enabled = true
		f.cfg.History.Path = filepath.Join(f.cfg.Paths.LogDir, "history.db")
	}
}

func WithOutputMode(mode string) ConfigOption {
	return func(f *fixture) { f.cfg.Transcription.OutputMode = mode }
}

// WithStubbedBinaries puts no-op executables on the front of PATH. With no
// names it stubs ffmpeg and whisper.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(f *fixture) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "whisper"}
		}
		bin := f.path("bin")
		if err := os.MkdirAll(bin, 0o755); err != nil {
			f.t.Fatalf("create bin dir: %v", err)
		}
		for _, name := range names {
			StubBinary(f.t, bin, name)
		}
		f.t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// StubBinary writes a script named name into dir that exits 0 and returns
// its path. On Windows the script is a .bat file.
func StubBinary(t testing.TB, dir, name string) string {
	t.Helper()
	path, body := filepath.Join(dir, name), "#!/bin/sh\nexit 0\n"
	if runtime.GOOS == "windows" {
		path, body = path+".bat", "@exit /b 0\r\n"
	}
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}
