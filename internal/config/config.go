package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir  string `toml:"output_dir"`
	ScratchDir string `toml:"scratch_dir"`
	ModelDir   string `toml:"model_dir"`
	LogDir     string `toml:"log_dir"`
}

// Transcription contains recognition engine and output layout settings.
type Transcription struct {
	Backend           string `toml:"backend"`
	Model             string `toml:"model"`
	Language          string `toml:"language"`
	Device            string `toml:"device"`
	IncludeTimestamps bool   `toml:"include_timestamps"`
	OutputMode        string `toml:"output_mode"`
}

// FFmpeg contains configuration for the transcoding binary.
type FFmpeg struct {
	Binary string `toml:"binary"`
	// HideWindow suppresses the console window ffmpeg would open on Windows.
	HideWindow bool `toml:"hide_window"`
}

// Pipeline contains batch execution policy and per-call timeouts (seconds, 0 disables).
type Pipeline struct {
	FailurePolicy       string `toml:"failure_policy"`
	HeartbeatIntervalMS int    `toml:"heartbeat_interval_ms"`
	ModelLoadTimeout    int    `toml:"model_load_timeout"`
	TranscodeTimeout    int    `toml:"transcode_timeout"`
	TranscribeTimeout   int    `toml:"transcribe_timeout"`
}

// History contains configuration for the run history database.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for whisperwiz.
//
// Configuration sections by subsystem:
//   - Paths: output, scratch, model, and log directories
//   - Transcription: backend, model, language, timestamps, output mode
//   - FFmpeg: transcoder binary and window suppression
//   - Pipeline: failure policy, heartbeat period, call timeouts
//   - History: SQLite run ledger
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Transcription Transcription `toml:"transcription"`
	FFmpeg        FFmpeg        `toml:"ffmpeg"`
	Pipeline      Pipeline      `toml:"pipeline"`
	History       History       `toml:"history"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads the config at path, or searches the default locations when path
// is empty. It returns the normalized, validated config, the file it
// resolved to and whether that file existed. A missing file yields defaults.
// Unknown keys are rejected.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	cfg := Default()
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	err = dec.Decode(cfg)
	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		return fmt.Errorf("parse config: unknown keys in %s:\n%s", path, strict.String())
	}
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// resolveConfigPath expands an explicit path, or picks the first existing
// file among the user config and ./whisperwiz.toml. With nothing found it
// returns the user config path.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		switch _, err := os.Stat(expanded); {
		case err == nil:
			return expanded, true, nil
		case errors.Is(err, fs.ErrNotExist):
			return expanded, false, nil
		default:
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}

	userPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

// EnsureDirectories creates every configured directory, the output
// directory included, so an unwritable target fails before the model loads.
func (c *Config) EnsureDirectories() error {
	dirs := []struct{ name, path string }{
		{"log", c.Paths.LogDir},
		{"model", c.Paths.ModelDir},
		{"scratch", c.Paths.ScratchDir},
		{"output", c.Paths.OutputDir},
	}
	for _, d := range dirs {
		if strings.TrimSpace(d.path) == "" {
			continue
		}
		if err := os.MkdirAll(d.path, 0o755); err != nil {
			return fmt.Errorf("create %s directory %q: %w", d.name, d.path, err)
		}
	}
	return nil
}

// HeartbeatInterval returns the liveness marker period used during model load.
func (c *Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.Pipeline.HeartbeatIntervalMS) * time.Millisecond
}

// ModelLoadTimeout returns the model load deadline, or zero for none.
func (c *Config) ModelLoadTimeout() time.Duration {
	return seconds(c.Pipeline.ModelLoadTimeout)
}

// TranscodeTimeout returns the per-file ffmpeg deadline, or zero for none.
func (c *Config) TranscodeTimeout() time.Duration {
	return seconds(c.Pipeline.TranscodeTimeout)
}

// TranscribeTimeout returns the per-file recognition deadline, or zero for none.
func (c *Config) TranscribeTimeout() time.Duration {
	return seconds(c.Pipeline.TranscribeTimeout)
}

// HistoryPath returns the run history database path, or "" when history is disabled.
func (c *Config) HistoryPath() string {
	if !c.History.Enabled {
		return ""
	}
	return c.History.Path
}

func seconds(v int) time.Duration {
	if v <= 0 {
		return 0
	}
	return time.Duration(v) * time.Second
}

func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if rest, ok := strings.CutPrefix(value, "~"); ok && (rest == "" || rest[0] == '/' || rest[0] == '\\') {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, rest)
	}
	abs, err := filepath.Abs(filepath.Clean(value))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return abs, nil
}

// ExpandPath resolves "~" and makes value absolute. Empty stays empty.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
