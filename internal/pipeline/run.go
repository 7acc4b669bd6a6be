package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"whisperwiz/internal/discovery"
	"whisperwiz/internal/engine"
	"whisperwiz/internal/history"
	"whisperwiz/internal/logging"
	"whisperwiz/internal/media"
	"whisperwiz/internal/output"
	"whisperwiz/internal/progress"
	"whisperwiz/internal/services"
)

// run carries the mutable state of one batch. It is confined to the
// goroutine executing Pipeline.Run.
type run struct {
	p        *Pipeline
	ctx      context.Context
	cfg      BatchConfig
	notifier Notifier
	logger   *slog.Logger
	sampler  *logging.ProgressSampler

	state    RunState
	started  time.Time
	model    engine.Model
	items    []discovery.WorkItem
	reporter *progress.Reporter
	writer   output.Writer
	preparer *media.Preparer
}

func (p *Pipeline) newRun(ctx context.Context, cfg BatchConfig, notifier Notifier) *run {
	id := uuid.NewString()
	ctx = services.WithRunID(ctx, id)
	return &run{
		p:        p,
		ctx:      ctx,
		cfg:      cfg,
		notifier: notifier,
		logger:   logging.WithContext(ctx, p.logger),
		sampler:  logging.NewProgressSampler(10),
		state:    RunState{RunID: id, Phase: PhaseIdle},
		started:  p.now(),
	}
}

func (r *run) execute() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("pipeline panic recovered",
				logging.Any("panic", rec),
				logging.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("pipeline panic: %v", rec)
		}
	}()

	r.recordStart()
	if err := r.validate(); err != nil {
		return err
	}
	if err := r.loadModel(); err != nil {
		return err
	}
	if err := r.discover(); err != nil {
		return err
	}
	if err := r.openOutputs(); err != nil {
		return err
	}
	if len(r.items) > 0 {
		if err := r.process(); err != nil {
			return err
		}
	}
	return r.finalize()
}

func (r *run) validate() error {
	switch {
	case strings.TrimSpace(r.cfg.InputDir) == "":
		return services.Wrap(services.ErrDiscovery, "setup", "validate batch", "input directory not set", nil)
	case strings.TrimSpace(r.cfg.OutputDir) == "":
		return services.Wrap(services.ErrWrite, "setup", "validate batch", "output directory not set", nil)
	case strings.TrimSpace(r.cfg.Model) == "":
		return services.Wrap(services.ErrEngineLoad, "setup", "validate batch", "model not set", nil)
	}
	return nil
}

func (r *run) transition(to Phase) error {
	from := r.state.Phase
	if !isValidTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	r.state.Phase = to
	r.logger.Debug("phase transition",
		logging.String("from", string(from)),
		logging.String("to", string(to)),
	)
	return nil
}

func (r *run) status(message string) {
	r.notifier.OnStatus(r.state, message)
}

func (r *run) loadModel() error {
	if err := r.transition(PhaseLoadingModel); err != nil {
		return err
	}
	r.status(progress.LoadingModel(r.cfg.Model))

	ctx, cancel := withTimeout(services.WithStage(r.ctx, "load"), r.cfg.ModelLoadTimeout)
	defer cancel()

	started := time.Now()
	hb := progress.StartHeartbeat(r.cfg.HeartbeatInterval, r.cfg.Model, r.status)
	model, err := r.loadWithHeartbeat(ctx, hb)
	if err != nil {
		if !errors.Is(err, services.ErrEngineLoad) {
			err = services.Wrap(services.ErrEngineLoad, "load", "load model", r.cfg.Model, err)
		}
		return err
	}
	if model == nil {
		return services.Wrap(services.ErrEngineLoad, "load", "load model", r.cfg.Model+": loader returned no model", nil)
	}
	r.model = model
	r.logger.Info("model loaded",
		logging.String("model", r.cfg.Model),
		logging.Since(started),
	)
	r.status(progress.StatusModelLoaded)
	return nil
}

// loadWithHeartbeat stops hb before returning, including when Load panics.
func (r *run) loadWithHeartbeat(ctx context.Context, hb *progress.Heartbeat) (engine.Model, error) {
	defer hb.Stop()
	return r.p.loader.Load(ctx, r.cfg.Model)
}

func (r *run) discover() error {
	if err := r.transition(PhaseDiscovering); err != nil {
		return err
	}
	items, err := discovery.Discover(r.cfg.InputDir)
	if err != nil {
		return err
	}
	r.items = items
	r.state.Total = len(items)
	r.reporter = progress.NewReporter(len(items), r.progress)
	r.logger.Info("discovered inputs",
		logging.String("input_dir", r.cfg.InputDir),
		logging.Int("total", len(items)),
	)
	r.record(func(ctx context.Context, rec Recorder) error {
		return rec.RunTotal(ctx, r.state.RunID, len(items))
	})
	return nil
}

func (r *run) openOutputs() error {
	writer, err := output.Open(output.Options{
		Layout:            r.cfg.OutputMode,
		OutputDir:         r.cfg.OutputDir,
		IncludeTimestamps: r.cfg.IncludeTimestamps,
		Now:               r.p.now(),
	})
	if err != nil {
		if !errors.Is(err, services.ErrWrite) {
			err = services.Wrap(services.ErrWrite, "setup", "open output", r.cfg.OutputDir, err)
		}
		return err
	}
	r.writer = writer

	scratchRoot := strings.TrimSpace(r.cfg.ScratchDir)
	if scratchRoot == "" {
		scratchRoot = os.TempDir()
	}
	runner := r.p.runner
	if runner == nil {
		runner = media.NewRunner(media.RunnerOptions{HideWindow: r.cfg.HideWindow})
	}
	preparer, err := media.NewPreparer(media.PreparerOptions{
		Binary:     r.cfg.FFmpegBinary,
		ScratchDir: filepath.Join(scratchRoot, "whisperwiz-"+r.state.RunID),
		Runner:     runner,
		Logger:     r.p.logger,
	})
	if err != nil {
		return services.Wrap(services.ErrTranscode, "setup", "create preparer", "", err)
	}
	r.preparer = preparer
	return nil
}

func (r *run) process() error {
	if err := r.transition(PhaseProcessing); err != nil {
		return err
	}
	for i, item := range r.items {
		if err := r.ctx.Err(); err != nil {
			return cancelled("processing", err)
		}
		if err := r.processItem(i+1, item); err != nil {
			return err
		}
	}
	r.state.CurrentFile = ""
	return nil
}

// processItem handles one file. A returned error aborts the batch; failures
// tolerated by the continue policy are reported as a skip instead.
func (r *run) processItem(seq int, item discovery.WorkItem) error {
	name := item.Name()
	r.state.CurrentFile = name
	r.status(progress.Transcribing(name))

	ctx := services.WithItem(services.WithStage(r.ctx, "processing"), item.Path)
	logger := logging.WithContext(ctx, r.p.logger)
	started := time.Now()

	outPath, segments, err := r.transcribeItem(ctx, logger, item)
	rec := history.Item{
		RunID:      r.state.RunID,
		Seq:        seq,
		SourcePath: item.Path,
		OutputPath: outPath,
		Segments:   segments,
		Elapsed:    time.Since(started),
	}
	if err != nil {
		rec.Status = history.ItemFailed
		rec.ErrorKind = services.Kind(err)
		rec.Error = err.Error()
		r.recordItem(rec)
		if cause := r.ctx.Err(); cause != nil && !errors.Is(err, services.ErrCancelled) {
			logger.Warn("file interrupted", logging.File(name), logging.Error(err))
			return cancelled("processing", cause)
		}
		if !r.tolerable(err) {
			return err
		}
		r.state.Failed++
		logger.Warn("skipping failed file",
			logging.File(name),
			logging.ErrorKind(rec.ErrorKind),
			logging.Error(err),
		)
		r.status(progress.Skipped(name, services.Describe(err)))
		r.reporter.Advance()
		return nil
	}

	rec.Status = history.ItemDone
	r.recordItem(rec)
	logger.Info("transcribed file",
		logging.File(name),
		logging.String("output", outPath),
		logging.Segments(segments),
		logging.Elapsed(rec.Elapsed),
	)
	r.reporter.Advance()
	return nil
}

func (r *run) transcribeItem(ctx context.Context, logger *slog.Logger, item discovery.WorkItem) (string, int, error) {
	prepCtx, cancel := withTimeout(ctx, r.cfg.TranscodeTimeout)
	prepared, err := r.preparer.Prepare(prepCtx, item)
	cancel()
	if err != nil {
		return "", 0, err
	}
	defer func() {
		if err := prepared.Cleanup(); err != nil {
			logger.Warn("remove transcoded audio failed",
				logging.Audio(prepared.AudioPath),
				logging.Error(err),
			)
		}
	}()

	tctx, cancel := withTimeout(ctx, r.cfg.TranscribeTimeout)
	segments, err := r.model.Transcribe(tctx, prepared.AudioPath)
	cancel()
	if err != nil {
		if !errors.Is(err, services.ErrTranscribe) {
			err = services.Wrap(services.ErrTranscribe, "transcribe", "transcribe file", item.Name(), err)
		}
		return "", 0, err
	}
	if segments == nil {
		segments = []engine.Segment{}
	}

	outPath, err := r.writer.Write(item.Path, segments)
	if err != nil {
		return outPath, 0, err
	}
	return outPath, len(segments), nil
}

// tolerable reports whether err may be skipped under the configured policy.
// Cancellation and failures of the shared CSV writer always abort.
func (r *run) tolerable(err error) bool {
	if !r.cfg.continueOnError() {
		return false
	}
	if r.ctx.Err() != nil || errors.Is(err, services.ErrCancelled) {
		return false
	}
	if errors.Is(err, services.ErrWrite) && r.cfg.tableLayout() {
		return false
	}
	return true
}

func (r *run) progress(percent int) {
	r.state.Completed = r.reporter.Completed()
	r.notifier.OnProgress(r.state, percent)
	if r.sampler.Admit(percent, string(r.state.Phase)) {
		r.logger.Info("batch progress",
			logging.Int("percent", percent),
			logging.Count(r.state.Completed, r.state.Total),
		)
	}
}

func (r *run) finalize() error {
	if err := r.transition(PhaseFinalizing); err != nil {
		return err
	}
	if err := r.closeWriter(); err != nil {
		return err
	}
	r.closeScratch()

	if r.state.Failed > 0 {
		r.status(progress.CompleteWithFailures(r.state.Failed))
	} else {
		r.status(progress.StatusComplete)
	}
	if err := r.transition(PhaseComplete); err != nil {
		return err
	}

	r.record(func(ctx context.Context, rec Recorder) error {
		return rec.RunFinished(ctx, r.state.RunID, history.RunComplete, "")
	})
	r.logger.Info("batch complete",
		logging.Int("total", r.state.Total),
		logging.Int("failed", r.state.Failed),
		logging.Elapsed(r.p.now().Sub(r.started)),
	)
	r.notifier.OnComplete(r.state)
	return nil
}

// fail releases every resource, moves the run to Failed and emits the single
// error notification.
func (r *run) fail(err error) error {
	if closeErr := r.closeWriter(); closeErr != nil {
		r.logger.Warn("close output after failure", logging.Error(closeErr))
	}
	r.closeScratch()

	if !r.state.Phase.Terminal() {
		r.state.Phase = PhaseFailed
	}
	message := services.Describe(err)
	r.record(func(ctx context.Context, rec Recorder) error {
		return rec.RunFinished(ctx, r.state.RunID, history.RunFailed, message)
	})
	r.logger.Error("batch failed",
		logging.ErrorKind(services.Kind(err)),
		logging.File(r.state.CurrentFile),
		logging.Count(r.state.Completed, r.state.Total),
		logging.Error(err),
	)
	r.notifier.OnError(r.state, message)
	return err
}

func (r *run) closeWriter() error {
	if r.writer == nil {
		return nil
	}
	w := r.writer
	r.writer = nil
	if err := w.Close(); err != nil {
		if !errors.Is(err, services.ErrWrite) {
			err = services.Wrap(services.ErrWrite, "finalize", "close output", "", err)
		}
		return err
	}
	return nil
}

func (r *run) closeScratch() {
	if r.preparer == nil {
		return
	}
	p := r.preparer
	r.preparer = nil
	if err := p.Close(); err != nil {
		r.logger.Warn("remove scratch directory failed",
			logging.String("dir", p.ScratchDir()),
			logging.Error(err),
		)
	}
}

func (r *run) recordStart() {
	r.record(func(ctx context.Context, rec Recorder) error {
		return rec.RunStarted(ctx, history.Run{
			ID:         r.state.RunID,
			StartedAt:  r.started,
			InputDir:   r.cfg.InputDir,
			OutputDir:  r.cfg.OutputDir,
			Backend:    r.cfg.Backend,
			Model:      r.cfg.Model,
			OutputMode: r.cfg.OutputMode,
			Status:     history.RunRunning,
		})
	})
}

func (r *run) recordItem(item history.Item) {
	item.FinishedAt = r.p.now()
	r.record(func(ctx context.Context, rec Recorder) error {
		return rec.ItemFinished(ctx, item)
	})
}

// record runs op against the recorder. History is best effort: failures are
// logged and never change the run outcome. Writes use a context detached from
// cancellation so an interrupted run is still recorded.
func (r *run) record(op func(ctx context.Context, rec Recorder) error) {
	if r.p.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.ctx), 5*time.Second)
	defer cancel()
	if err := op(ctx, r.p.recorder); err != nil {
		r.logger.Warn("record run history failed", logging.Error(err))
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// cancelled tags a parent context error found between items.
func cancelled(stage string, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return services.Wrap(services.ErrCancelled, stage, "", "", err)
	case errors.Is(err, context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, stage, "", "", err)
	}
	return services.Wrap(services.ErrTranscribe, stage, "", "", err)
}
