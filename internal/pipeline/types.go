package pipeline

import (
	"context"
	"time"

	"whisperwiz/internal/config"
	"whisperwiz/internal/history"
)

// Phase is the lifecycle position of a run.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseLoadingModel Phase = "loading_model"
	PhaseDiscovering  Phase = "discovering"
	PhaseProcessing   Phase = "processing"
	PhaseFinalizing   Phase = "finalizing"
	PhaseFailed       Phase = "failed"
	PhaseComplete     Phase = "complete"
)

// Terminal reports whether no further transition can leave p.
func (p Phase) Terminal() bool {
	return p == PhaseFailed || p == PhaseComplete
}

// RunState is a snapshot of a run's progress.
type RunState struct {
	RunID       string
	Total       int
	Completed   int
	Failed      int
	CurrentFile string
	Phase       Phase
}

// EventKind identifies the Notifier callback an Event stands for.
type EventKind string

const (
	EventStatus   EventKind = "status"
	EventProgress EventKind = "progress"
	EventError    EventKind = "error"
	EventComplete EventKind = "complete"
)

// Event is one notification delivered over the channel returned by Start.
type Event struct {
	Kind    EventKind
	State   RunState
	Message string
	Percent int
}

// Terminal reports whether e is the last event of a run.
func (e Event) Terminal() bool {
	return e.Kind == EventError || e.Kind == EventComplete
}

// Notifier receives run notifications. Calls are never concurrent.
type Notifier interface {
	OnStatus(state RunState, message string)
	OnProgress(state RunState, percent int)
	OnError(state RunState, message string)
	OnComplete(state RunState)
}

// Recorder persists run outcomes. history.Store implements it.
type Recorder interface {
	RunStarted(ctx context.Context, run history.Run) error
	RunTotal(ctx context.Context, runID string, total int) error
	ItemFinished(ctx context.Context, item history.Item) error
	RunFinished(ctx context.Context, runID string, status history.RunStatus, message string) error
}

// BatchConfig describes one batch.
type BatchConfig struct {
	InputDir          string
	OutputDir         string
	Model             string
	IncludeTimestamps bool
	// OutputMode is config.OutputModeText or config.OutputModeCSV.
	OutputMode string
	// Backend is recorded in history only; the Loader decides what runs.
	Backend string
	// FailurePolicy is config.FailurePolicyAbort or config.FailurePolicyContinue.
	FailurePolicy string
	// ScratchDir is the parent of the per-run scratch directory; empty uses
	// the OS temp directory.
	ScratchDir   string
	FFmpegBinary string
	HideWindow   bool

	HeartbeatInterval time.Duration
	// Zero disables the corresponding deadline.
	ModelLoadTimeout  time.Duration
	TranscodeTimeout  time.Duration
	TranscribeTimeout time.Duration
}

// NewBatchConfig derives a BatchConfig from cfg for the files under inputDir.
func NewBatchConfig(cfg *config.Config, inputDir string) BatchConfig {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return BatchConfig{
		InputDir:          inputDir,
		OutputDir:         cfg.Paths.OutputDir,
		Model:             cfg.Transcription.Model,
		IncludeTimestamps: cfg.Transcription.IncludeTimestamps,
		OutputMode:        cfg.Transcription.OutputMode,
		Backend:           cfg.Transcription.Backend,
		FailurePolicy:     cfg.Pipeline.FailurePolicy,
		ScratchDir:        cfg.Paths.ScratchDir,
		FFmpegBinary:      cfg.FFmpeg.Binary,
		HideWindow:        cfg.FFmpeg.HideWindow,
		HeartbeatInterval: cfg.HeartbeatInterval(),
		ModelLoadTimeout:  cfg.ModelLoadTimeout(),
		TranscodeTimeout:  cfg.TranscodeTimeout(),
		TranscribeTimeout: cfg.TranscribeTimeout(),
	}
}

func (c BatchConfig) continueOnError() bool {
	return c.FailurePolicy == config.FailurePolicyContinue
}

func (c BatchConfig) tableLayout() bool {
	return c.OutputMode == config.OutputModeCSV
}
