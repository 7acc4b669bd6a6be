package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"whisperwiz/internal/discovery"
	"whisperwiz/internal/fileutil"
	"whisperwiz/internal/logging"
)

// DefaultBinary is the transcoder looked up on PATH when none is configured.
const DefaultBinary = "ffmpeg"

const diagnosticsLimit = 2048

// Prepared is an engine-ready input. Cleanup removes any temporary artifact
// created for it and may be called any number of times.
type Prepared struct {
	Item       discovery.WorkItem
	AudioPath  string
	Transcoded bool
	cleanup    func() error
}

// Cleanup deletes the transcoded artifact, if any.
func (p Prepared) Cleanup() error {
	if p.cleanup == nil {
		return nil
	}
	return p.cleanup()
}

// PreparerOptions configures a Preparer.
type PreparerOptions struct {
	// Binary is the ffmpeg executable; empty uses DefaultBinary.
	Binary string
	// ScratchDir is the per-run directory for transcoded artifacts. It is
	// created on first use and removed by Close.
	ScratchDir string
	Runner     Runner
	Logger     *slog.Logger
}

// Preparer turns work items into audio files the engine can read.
type Preparer struct {
	binary     string
	scratchDir string
	runner     Runner
	logger     *slog.Logger

	mu  sync.Mutex
	seq int
}

// NewPreparer validates opts and returns a Preparer.
func NewPreparer(opts PreparerOptions) (*Preparer, error) {
	if strings.TrimSpace(opts.ScratchDir) == "" {
		return nil, errors.New("media preparer: scratch directory required")
	}
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = DefaultBinary
	}
	runner := opts.Runner
	if runner == nil {
		runner = NewRunner(RunnerOptions{HideWindow: true})
	}
	return &Preparer{
		binary:     binary,
		scratchDir: opts.ScratchDir,
		runner:     runner,
		logger:     logging.NewComponentLogger(opts.Logger, "media"),
	}, nil
}

// ScratchDir returns the directory holding transcoded artifacts.
func (p *Preparer) ScratchDir() string {
	return p.scratchDir
}

// Prepare returns the audio path for item. Video items are transcoded; on any
// failure the partial output is removed and a *TranscodeError is returned.
func (p *Preparer) Prepare(ctx context.Context, item discovery.WorkItem) (Prepared, error) {
	if !item.IsVideo {
		return Prepared{Item: item, AudioPath: item.Path}, nil
	}

	if err := fileutil.EnsureDir(p.scratchDir); err != nil {
		return Prepared{}, &TranscodeError{Source: item.Path, Err: fmt.Errorf("ensure scratch dir: %w", err)}
	}

	out := filepath.Join(p.scratchDir, p.nextName())
	started := time.Now()
	output, err := p.runner.Run(ctx, p.binary, TranscodeArgs(fileutil.NormalizePath(item.Path), fileutil.NormalizePath(out))...)
	if err != nil {
		_ = fileutil.RemoveQuietly(out)
		return Prepared{}, &TranscodeError{Source: item.Path, Output: Diagnostics(output, diagnosticsLimit), Err: err}
	}
	info, statErr := os.Stat(out)
	if statErr != nil || info.Size() == 0 {
		_ = fileutil.RemoveQuietly(out)
		cause := errors.New("transcoder produced no output")
		if statErr != nil && !os.IsNotExist(statErr) {
			cause = statErr
		}
		return Prepared{}, &TranscodeError{Source: item.Path, Output: Diagnostics(output, diagnosticsLimit), Err: cause}
	}

	p.logger.Debug("transcoded video",
		logging.String("source", item.Path),
		logging.Audio(out),
		logging.Int64("bytes", info.Size()),
		logging.Since(started),
	)

	var once sync.Once
	var cleanupErr error
	return Prepared{
		Item:       item,
		AudioPath:  out,
		Transcoded: true,
		cleanup: func() error {
			once.Do(func() {
				cleanupErr = fileutil.RemoveQuietly(out)
			})
			return cleanupErr
		},
	}, nil
}

// Close removes the scratch directory and everything left in it.
func (p *Preparer) Close() error {
	if err := os.RemoveAll(p.scratchDir); err != nil {
		return fmt.Errorf("remove scratch dir: %w", err)
	}
	return nil
}

func (p *Preparer) nextName() string {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.mu.Unlock()
	return fmt.Sprintf("%04d-%s.wav", seq, uuid.NewString())
}

// TranscodeArgs returns the ffmpeg arguments converting input to a 16 kHz
// mono 16-bit PCM WAV at output.
func TranscodeArgs(input, output string) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", input,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		output,
	}
}
