package whisperx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"whisperwiz/internal/engine"
	"whisperwiz/internal/fileutil"
	"whisperwiz/internal/language"
	"whisperwiz/internal/logging"
	"whisperwiz/internal/media"
	"whisperwiz/internal/services"
)

const diagnosticsLimit = 2048

// Service provides WhisperX transcription as an engine.Loader.
type Service struct {
	cfg      Config
	runner   media.Runner
	lookPath func(string) (string, error)
	logger   *slog.Logger
}

// NewService creates a WhisperX service. A nil runner spawns processes
// through media.ExecRunner with the torch compatibility variable set.
func NewService(cfg Config, runner media.Runner, logger *slog.Logger) *Service {
	if runner == nil {
		opts := media.RunnerOptions{HideWindow: cfg.HideWindow}
		if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
			opts.Env = []string{torchEnv}
		}
		runner = media.NewRunner(opts)
	}
	return &Service{
		cfg:      cfg,
		runner:   runner,
		lookPath: exec.LookPath,
		logger:   logging.NewComponentLogger(logger, "whisperx"),
	}
}

// WithLookPath replaces the executable resolver (for testing).
func (s *Service) WithLookPath(fn func(string) (string, error)) {
	s.lookPath = fn
}

// Load validates model, resolves uvx, and optionally warms the package cache.
func (s *Service) Load(ctx context.Context, model string) (engine.Model, error) {
	model = strings.ToLower(strings.TrimSpace(model))
	if !engine.IsKnownModel(model) {
		return nil, services.Wrap(services.ErrEngineLoad, "whisperx", "validate model", fmt.Sprintf("unknown model %q", model), nil)
	}
	uvx, err := s.lookPath(UVXCommand)
	if err != nil {
		return nil, services.Wrap(services.ErrEngineLoad, "whisperx", "locate uvx", UVXCommand, err)
	}
	if s.cfg.ModelDir != "" {
		if err := fileutil.EnsureDir(s.cfg.ModelDir); err != nil {
			return nil, services.Wrap(services.ErrEngineLoad, "whisperx", "ensure model dir", s.cfg.ModelDir, err)
		}
	}
	if s.cfg.Warmup {
		started := time.Now()
		if output, err := s.runner.Run(ctx, uvx, s.warmupArgs()...); err != nil {
			return nil, services.Wrap(services.ErrEngineLoad, "whisperx", "warm up", media.Diagnostics(output, diagnosticsLimit), err)
		}
		s.logger.Info("whisperx environment ready", logging.Since(started))
	}
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrEngineLoad, "whisperx", "load", model, err)
	}
	return &Model{service: s, uvx: uvx, name: model}, nil
}

// Model is a WhisperX model bound to a Service.
type Model struct {
	service *Service
	uvx     string
	name    string
}

// Name returns the model identifier.
func (m *Model) Name() string {
	return m.name
}

// Transcribe runs WhisperX on audioPath and returns the decoded segments.
func (m *Model) Transcribe(ctx context.Context, audioPath string) ([]engine.Segment, error) {
	s := m.service
	outputDir, err := os.MkdirTemp(s.cfg.WorkDir, "whisperx-*")
	if err != nil {
		return nil, services.Wrap(services.ErrTranscribe, "whisperx", "create work dir", "", err)
	}
	defer os.RemoveAll(outputDir)

	started := time.Now()
	args := s.buildArgs(fileutil.NormalizePath(audioPath), m.name, outputDir)
	output, err := s.runner.Run(ctx, m.uvx, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrTranscribe, "whisperx", "run", media.Diagnostics(output, diagnosticsLimit), err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	segments, err := engine.LoadSegments(jsonPath)
	if err != nil {
		return nil, services.Wrap(services.ErrTranscribe, "whisperx", "read output", jsonPath, err)
	}
	s.logger.Debug("whisperx transcription finished",
		logging.Audio(audioPath),
		logging.Segments(len(segments)),
		logging.Since(started),
	)
	return segments, nil
}

func (s *Service) indexArgs() []string {
	if s.cfg.CUDAEnabled {
		return []string{"--index-url", CUDAIndexURL, "--extra-index-url", PypiIndexURL}
	}
	return []string{"--index-url", PypiIndexURL}
}

func (s *Service) warmupArgs() []string {
	return append(s.indexArgs(), "whisperx", "--help")
}

// buildArgs returns the uvx argument list for one transcription.
func (s *Service) buildArgs(source, model, outputDir string) []string {
	args := append(s.indexArgs(), "whisperx", source, "--model", model, "--output_dir", outputDir)
	if s.cfg.ModelDir != "" {
		args = append(args, "--model_dir", s.cfg.ModelDir)
	}
	args = append(args, decodeFlags...)

	vad := s.cfg.VADMethod
	if vad == "" {
		vad = VADMethodSilero
	}
	args = append(args, "--vad_method", vad)
	if vad == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}
	if lang := language.ToISO2(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	if s.cfg.CUDAEnabled {
		return append(args, "--device", CUDADevice)
	}
	return append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
}
