package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"whisperwiz/internal/engine"
	"whisperwiz/internal/logging"
	"whisperwiz/internal/media"
)

// eventBuffer sizes the channel returned by Start.
const eventBuffer = 64

// Options wires a Pipeline's collaborators.
type Options struct {
	Loader engine.Loader
	// Runner spawns ffmpeg; nil uses media.NewRunner with the batch's
	// HideWindow setting.
	Runner media.Runner
	// Recorder is optional.
	Recorder Recorder
	Logger   *slog.Logger
	// Now stamps history records and the CSV file name; nil uses time.Now.
	Now func() time.Time
}

// Pipeline executes batches. A Pipeline may run several batches one after
// another; concurrent runs against the same output directory are prevented
// by the caller.
type Pipeline struct {
	loader   engine.Loader
	runner   media.Runner
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// New validates opts and returns a Pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Loader == nil {
		return nil, errors.New("pipeline: engine loader required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		loader:   opts.Loader,
		runner:   opts.Runner,
		recorder: opts.Recorder,
		logger:   logging.NewComponentLogger(opts.Logger, "pipeline"),
		now:      now,
	}, nil
}

// Run executes one batch synchronously. Every failure, including a recovered
// panic, is reported through exactly one notifier.OnError call and returned.
// A successful run ends with exactly one OnComplete call.
func (p *Pipeline) Run(ctx context.Context, cfg BatchConfig, notifier Notifier) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if notifier == nil {
		notifier = NotifierFuncs{}
	}
	r := p.newRun(ctx, cfg, notifier)
	if err := r.execute(); err != nil {
		return r.fail(err)
	}
	return nil
}

// Start runs the batch on a new goroutine. The returned channel carries every
// notification and is closed after the terminal event. Callers must drain it.
func (p *Pipeline) Start(ctx context.Context, cfg BatchConfig) <-chan Event {
	if ctx == nil {
		ctx = context.Background()
	}
	events := make(chan Event, eventBuffer)
	go func() {
		defer close(events)
		_ = p.Run(ctx, cfg, NewChannelNotifier(ctx, events))
	}()
	return events
}
