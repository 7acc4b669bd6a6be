package config

import (
	"errors"
	"fmt"
	"strings"

	"whisperwiz/internal/engine"
	"whisperwiz/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranscription() error {
	t := c.Transcription
	switch t.Backend {
	case BackendWhisper, BackendWhisperX:
	default:
		return fmt.Errorf("transcription.backend must be %q or %q, got %q", BackendWhisper, BackendWhisperX, t.Backend)
	}
	if !engine.IsKnownModel(t.Model) {
		return fmt.Errorf("transcription.model %q is not a known model (run 'whisperwiz models')", t.Model)
	}
	if !language.Valid(t.Language) {
		return fmt.Errorf("transcription.language %q is not a recognized language code", t.Language)
	}
	switch t.OutputMode {
	case OutputModeText, OutputModeCSV:
	default:
		return fmt.Errorf("transcription.output_mode must be %q or %q, got %q", OutputModeText, OutputModeCSV, t.OutputMode)
	}
	switch t.Device {
	case "cpu", "cuda", "auto":
	default:
		return fmt.Errorf("transcription.device must be cpu, cuda, or auto, got %q", t.Device)
	}
	return nil
}

func (c *Config) validatePipeline() error {
	switch c.Pipeline.FailurePolicy {
	case FailurePolicyAbort, FailurePolicyContinue:
	default:
		return fmt.Errorf("pipeline.failure_policy must be %q or %q, got %q", FailurePolicyAbort, FailurePolicyContinue, c.Pipeline.FailurePolicy)
	}
	if err := ensureNonNegativeMap(map[string]int{
		"pipeline.model_load_timeout": c.Pipeline.ModelLoadTimeout,
		"pipeline.transcode_timeout":  c.Pipeline.TranscodeTimeout,
		"pipeline.transcribe_timeout": c.Pipeline.TranscribeTimeout,
	}); err != nil {
		return err
	}
	if c.Pipeline.HeartbeatIntervalMS <= 0 {
		return errors.New("pipeline.heartbeat_interval_ms must be positive")
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return errors.New("history.path must be set when history.enabled is true")
	}
	return nil
}

func ensureNonNegativeMap(values map[string]int) error {
	for key, value := range values {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
	}
	return nil
}
