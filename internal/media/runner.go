package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"unicode/utf8"
)

// RunnerOptions controls how child processes are spawned.
type RunnerOptions struct {
	// HideWindow starts children without a console window on Windows. It has
	// no effect on other platforms.
	HideWindow bool
	// Env holds extra KEY=VALUE pairs appended to the parent environment.
	Env []string
	// Dir is the working directory for the child; empty inherits the parent's.
	Dir string
}

// Runner executes an external command and returns its combined stdout and
// stderr.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return f(ctx, name, args...)
}

// ExecRunner spawns commands with os/exec.
type ExecRunner struct {
	opts RunnerOptions
}

// NewRunner returns an ExecRunner using opts for every spawned process.
func NewRunner(opts RunnerOptions) *ExecRunner {
	return &ExecRunner{opts: opts}
}

// Options returns the spawn options this runner applies.
func (r *ExecRunner) Options() RunnerOptions {
	return r.opts
}

// Run executes name with args. A non-zero exit is returned as an error that
// carries the exit code; the combined output is returned in every case.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	configureProcess(cmd, r.opts)
	if len(r.opts.Env) > 0 {
		cmd.Env = append(os.Environ(), r.opts.Env...)
	}
	if r.opts.Dir != "" {
		cmd.Dir = r.opts.Dir
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return output, fmt.Errorf("%s: %w", name, errors.Join(ctxErr, err))
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, fmt.Errorf("%s: exit status %d: %w", name, exitErr.ExitCode(), err)
		}
		return output, fmt.Errorf("%s: %w", name, err)
	}
	return output, nil
}

// Diagnostics trims process output for inclusion in error messages, keeping
// the tail when it exceeds limit bytes.
func Diagnostics(output []byte, limit int) string {
	text := strings.TrimSpace(string(output))
	if limit > 0 && len(text) > limit {
		start := len(text) - limit
		for start < len(text) && !utf8.RuneStart(text[start]) {
			start++
		}
		text = "..." + text[start:]
	}
	return text
}
