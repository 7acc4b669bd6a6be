package main

import (
	"fmt"
	"log/slog"

	"whisperwiz/internal/config"
	"whisperwiz/internal/engine"
	"whisperwiz/internal/services/whisper"
	"whisperwiz/internal/services/whisperx"
)

func newEngineLoader(cfg *config.Config, logger *slog.Logger) (engine.Loader, error) {
	t := cfg.Transcription
	switch t.Backend {
	case config.BackendWhisper:
		return whisper.New(whisper.Config{
			ModelDir:   cfg.Paths.ModelDir,
			WorkDir:    cfg.Paths.ScratchDir,
			Language:   t.Language,
			Device:     t.Device,
			HideWindow: cfg.FFmpeg.HideWindow,
		}, nil, logger), nil
	case config.BackendWhisperX:
		return whisperx.NewService(whisperx.Config{
			ModelDir:    cfg.Paths.ModelDir,
			WorkDir:     cfg.Paths.ScratchDir,
			Language:    t.Language,
			CUDAEnabled: t.Device == "cuda",
			VADMethod:   whisperx.VADMethodSilero,
			Warmup:      true,
			HideWindow:  cfg.FFmpeg.HideWindow,
		}, nil, logger), nil
	default:
		return nil, fmt.Errorf("unsupported transcription backend %q", t.Backend)
	}
}
