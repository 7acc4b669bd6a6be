package preflight

import (
	"strings"

	"whisperwiz/internal/config"
	"whisperwiz/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks every directory the configuration touches. inputDir is
// optional; when set it must exist and be readable.
func RunAll(cfg *config.Config, inputDir string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if strings.TrimSpace(inputDir) != "" {
		results = append(results, CheckReadableDirectory("Input directory", inputDir))
	}
	results = append(results,
		CheckWritableTarget("Output directory", cfg.Paths.OutputDir),
		CheckWritableTarget("Scratch directory", cfg.Paths.ScratchDir),
		CheckWritableTarget("Model directory", cfg.Paths.ModelDir),
		CheckWritableTarget("Log directory", cfg.Paths.LogDir),
	)
	return results
}

// CheckSystemDeps evaluates the external binaries a run with cfg needs.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	if cfg == nil {
		return nil
	}
	return deps.Requirements(cfg.FFmpeg.Binary, cfg.Transcription.Backend)
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
