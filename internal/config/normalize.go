package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"whisperwiz/internal/engine"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeFFmpeg()
	c.normalizePipeline()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir == "" {
		if value, ok := os.LookupEnv("WHISPERWIZ_OUTPUT_DIR"); ok {
			c.Paths.OutputDir = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		c.Paths.ScratchDir = os.TempDir()
	}
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ModelDir) == "" {
		c.Paths.ModelDir = defaultModelDir
	}
	if c.Paths.ModelDir, err = expandPath(c.Paths.ModelDir); err != nil {
		return fmt.Errorf("paths.model_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	t := &c.Transcription
	t.Backend = strings.ToLower(strings.TrimSpace(t.Backend))
	if t.Backend == "" {
		t.Backend = defaultBackend
	}
	t.Model = strings.ToLower(strings.TrimSpace(t.Model))
	if t.Model == "" {
		if value, ok := os.LookupEnv("WHISPERWIZ_MODEL"); ok {
			t.Model = strings.ToLower(strings.TrimSpace(value))
		}
	}
	if t.Model == "" {
		t.Model = engine.DefaultModel
	}
	t.Language = strings.ToLower(strings.TrimSpace(t.Language))
	if t.Language == "" {
		t.Language = defaultLanguage
	}
	t.Device = strings.ToLower(strings.TrimSpace(t.Device))
	if t.Device == "" {
		t.Device = defaultDevice
	}
	t.OutputMode = strings.ToLower(strings.TrimSpace(t.OutputMode))
	switch t.OutputMode {
	case "", "txt", OutputModeText:
		t.OutputMode = OutputModeText
	case "table", OutputModeCSV:
		t.OutputMode = OutputModeCSV
	}
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
}

func (c *Config) normalizePipeline() {
	c.Pipeline.FailurePolicy = strings.ToLower(strings.TrimSpace(c.Pipeline.FailurePolicy))
	if c.Pipeline.FailurePolicy == "" {
		c.Pipeline.FailurePolicy = defaultFailurePolicy
	}
	if c.Pipeline.HeartbeatIntervalMS <= 0 {
		c.Pipeline.HeartbeatIntervalMS = defaultHeartbeatIntervalMS
	}
}

func (c *Config) normalizeHistory() error {
	var err error
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.LogDir, defaultHistoryFile)
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
