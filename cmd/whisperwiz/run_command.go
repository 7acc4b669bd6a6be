package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"whisperwiz/internal/config"
	"whisperwiz/internal/deps"
	"whisperwiz/internal/history"
	"whisperwiz/internal/logging"
	"whisperwiz/internal/pipeline"
	"whisperwiz/internal/runlock"
)

type runOptions struct {
	input      string
	output     string
	model      string
	timestamps bool
	format     string
	backend    string
	policy     string
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [input-dir]",
		Short: "Transcribe every audio and video file under a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && strings.TrimSpace(opts.input) == "" {
				opts.input = args[0]
			}
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *base
			input, err := opts.apply(cmd, &cfg)
			if err != nil {
				return err
			}
			return executeRun(cmd, ctx, &cfg, input)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "Folder to scan for audio and video files")
	flags.StringVarP(&opts.output, "output", "o", "", "Folder that receives transcripts (overrides paths.output_dir)")
	flags.StringVarP(&opts.model, "model", "m", "", "Model identifier (overrides transcription.model)")
	flags.BoolVar(&opts.timestamps, "timestamps", false, "Include segment timestamps")
	flags.StringVar(&opts.format, "format", "", "Output layout: text or csv")
	flags.StringVar(&opts.backend, "backend", "", "Recognition backend: whisper or whisperx")
	flags.StringVar(&opts.policy, "policy", "", "Failure policy: abort or continue")
	return cmd
}

// apply overlays the flags the user set onto cfg and returns the absolute
// input directory.
func (o runOptions) apply(cmd *cobra.Command, cfg *config.Config) (string, error) {
	input := strings.TrimSpace(o.input)
	if input == "" {
		return "", errors.New("input directory required (pass --input or a positional argument)")
	}
	input, err := absPath(input)
	if err != nil {
		return "", fmt.Errorf("resolve input directory: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		out, err := absPath(o.output)
		if err != nil {
			return "", fmt.Errorf("resolve output directory: %w", err)
		}
		cfg.Paths.OutputDir = out
	}
	if flags.Changed("model") {
		cfg.Transcription.Model = strings.ToLower(strings.TrimSpace(o.model))
	}
	if flags.Changed("timestamps") {
		cfg.Transcription.IncludeTimestamps = o.timestamps
	}
	if flags.Changed("format") {
		cfg.Transcription.OutputMode = strings.ToLower(strings.TrimSpace(o.format))
	}
	if flags.Changed("backend") {
		cfg.Transcription.Backend = strings.ToLower(strings.TrimSpace(o.backend))
	}
	if flags.Changed("policy") {
		cfg.Pipeline.FailurePolicy = strings.ToLower(strings.TrimSpace(o.policy))
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	return input, nil
}

func absPath(path string) (string, error) {
	expanded, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}

func executeRun(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, input string) error {
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg, "")
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	logger = logging.NewComponentLogger(logger, "cli")

	lock, err := runlock.Acquire(cfg.Paths.OutputDir)
	if err != nil {
		if errors.Is(err, runlock.ErrLocked) {
			return fmt.Errorf("another run is using %s", cfg.Paths.OutputDir)
		}
		return err
	}
	defer func() { _ = lock.Release() }()

	var recorder pipeline.Recorder
	if store := openHistory(cfg, logger); store != nil {
		defer store.Close()
		recorder = store
	}

	if ffmpeg := deps.ResolveFFmpeg(cfg.FFmpeg.Binary); ffmpeg.Available {
		cfg.FFmpeg.Binary = ffmpeg.Resolved
	} else {
		logger.Warn("ffmpeg not resolved; video inputs will fail to transcode",
			logging.String("binary", cfg.FFmpeg.Binary),
			logging.String("detail", ffmpeg.Detail),
		)
	}

	loader, err := ctx.newLoader(cfg, logger)
	if err != nil {
		return err
	}
	p, err := pipeline.New(pipeline.Options{
		Loader:   loader,
		Runner:   ctx.runner,
		Recorder: recorder,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	renderer := newRunRenderer(out, shouldColorize(out))
	for ev := range p.Start(runCtx, pipeline.NewBatchConfig(cfg, input)) {
		renderer.handle(ev)
	}

	if renderer.failed {
		if runCtx.Err() != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), renderer.message)
			return context.Canceled
		}
		return errors.New(renderer.message)
	}
	for _, line := range renderer.summary(cfg.Paths.OutputDir) {
		fmt.Fprintln(out, line)
	}
	return nil
}

// openHistory returns nil when history is disabled or the database cannot be
// opened; a run never fails because of its ledger.
func openHistory(cfg *config.Config, logger *slog.Logger) *history.Store {
	path := cfg.HistoryPath()
	if path == "" {
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		logger.Warn("run history unavailable", logging.String("path", path), logging.Error(err))
		return nil
	}
	return store
}
