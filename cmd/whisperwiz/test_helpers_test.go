package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"whisperwiz/internal/config"
	"whisperwiz/internal/engine"
	"whisperwiz/internal/media"
	"whisperwiz/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	inputDir   string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("WHISPERWIZ_MODEL", "")
	t.Setenv("WHISPERWIZ_OUTPUT_DIR", "")
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithHistory()}, opts...)...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	input := filepath.Join(base, "input")
	if err := os.MkdirAll(input, 0o755); err != nil {
		t.Fatalf("mkdir input: %v", err)
	}
	return &cliTestEnv{cfg: cfg, configPath: configPath, inputDir: input}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// helloLoader returns one segment per file.
func helloLoader() engine.Loader {
	return engine.LoaderFunc(func(context.Context, string) (engine.Model, error) {
		return engine.ModelFunc(func(context.Context, string) ([]engine.Segment, error) {
			return []engine.Segment{{Start: 0, End: 1.5, Text: "hello"}}, nil
		}), nil
	})
}

func fakeTranscoder() media.RunnerFunc {
	return func(_ context.Context, _ string, args ...string) ([]byte, error) {
		return nil, os.WriteFile(args[len(args)-1], []byte("RIFF"), 0o644)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, loader engine.Loader, args ...string) (string, string, error) {
	t.Helper()
	var configFlag string
	ctx := newCommandContext(&configFlag)
	if loader != nil {
		ctx.newLoader = func(*config.Config, *slog.Logger) (engine.Loader, error) {
			return loader, nil
		}
	}
	ctx.runner = fakeTranscoder()

	cmd := newRootCommandWithContext(ctx, &configFlag)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if env != nil {
		flags = append(flags, "--config", env.configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
