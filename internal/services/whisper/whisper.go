package whisper

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"whisperwiz/internal/engine"
	"whisperwiz/internal/fileutil"
	"whisperwiz/internal/language"
	"whisperwiz/internal/logging"
	"whisperwiz/internal/media"
	"whisperwiz/internal/services"
)

// DefaultBinary is the whisper executable looked up on PATH.
const DefaultBinary = "whisper"

const diagnosticsLimit = 2048

// fetchScript downloads (or verifies the checksum of) the weights for
// argv[1] into argv[2] and loads them once, the way the CLI will.
const fetchScript = "import sys, whisper; " +
	"whisper.load_model(sys.argv[1], device='cpu', download_root=sys.argv[2] or None)"

// Config captures runtime settings for the whisper CLI.
type Config struct {
	// Binary overrides DefaultBinary.
	Binary string
	// Python runs the weight fetch during Load. Empty uses the interpreter
	// named in the whisper script's shebang, then python3.
	Python string
	// ModelDir is where the CLI caches model weights.
	ModelDir string
	// WorkDir holds per-call output directories; empty uses the OS temp dir.
	WorkDir string
	// Language is a code or name understood by the language package, or "auto".
	Language string
	// Device is cpu, cuda, or auto (let the CLI pick).
	Device string
	// HideWindow suppresses console windows on Windows.
	HideWindow bool
}

// Loader implements engine.Loader for the whisper CLI.
type Loader struct {
	cfg      Config
	runner   media.Runner
	lookPath func(string) (string, error)
	logger   *slog.Logger
}

// New returns a Loader. A nil runner spawns processes with media.ExecRunner.
func New(cfg Config, runner media.Runner, logger *slog.Logger) *Loader {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = DefaultBinary
	}
	if runner == nil {
		runner = media.NewRunner(media.RunnerOptions{HideWindow: cfg.HideWindow})
	}
	return &Loader{
		cfg:      cfg,
		runner:   runner,
		lookPath: exec.LookPath,
		logger:   logging.NewComponentLogger(logger, "whisper"),
	}
}

// WithLookPath replaces the executable resolver (for testing).
func (l *Loader) WithLookPath(fn func(string) (string, error)) {
	l.lookPath = fn
}

// Load validates model, resolves the CLI and fetches the model weights into
// ModelDir, so a missing or corrupt download fails here rather than on the
// first file.
func (l *Loader) Load(ctx context.Context, model string) (engine.Model, error) {
	model = strings.ToLower(strings.TrimSpace(model))
	if !engine.IsKnownModel(model) {
		return nil, services.Wrap(services.ErrEngineLoad, "whisper", "validate model", fmt.Sprintf("unknown model %q", model), nil)
	}
	binary, err := l.lookPath(l.cfg.Binary)
	if err != nil {
		return nil, services.Wrap(services.ErrEngineLoad, "whisper", "locate binary", l.cfg.Binary, err)
	}
	if l.cfg.ModelDir != "" {
		if err := fileutil.EnsureDir(l.cfg.ModelDir); err != nil {
			return nil, services.Wrap(services.ErrEngineLoad, "whisper", "ensure model dir", l.cfg.ModelDir, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrEngineLoad, "whisper", "load", model, err)
	}

	python, err := l.lookPath(l.interpreter(binary))
	if err != nil {
		return nil, services.Wrap(services.ErrEngineLoad, "whisper", "locate python", l.interpreter(binary), err)
	}
	started := time.Now()
	output, err := l.runner.Run(ctx, python, FetchArgs(model, l.cfg.ModelDir)...)
	if err != nil {
		return nil, services.Wrap(services.ErrEngineLoad, "whisper", "fetch weights", media.Diagnostics(output, diagnosticsLimit), err)
	}
	l.logger.Info("whisper model ready",
		logging.String("model", model),
		logging.String("binary", binary),
		logging.Since(started),
	)
	return &Model{loader: l, binary: binary, name: model}, nil
}

// FetchArgs returns the interpreter arguments that fetch and load model.
func FetchArgs(model, modelDir string) []string {
	return []string{"-c", fetchScript, model, modelDir}
}

func (l *Loader) interpreter(binary string) string {
	if p := strings.TrimSpace(l.cfg.Python); p != "" {
		return p
	}
	if p := shebang(binary); p != "" {
		return p
	}
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// shebang returns the interpreter of a "#!/path/python" script, or "" when
// path is not such a script. "#!/usr/bin/env python3" yields "python3".
func shebang(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), "#!")
	if !ok {
		return ""
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	if filepath.Base(fields[0]) == "env" && len(fields) > 1 {
		fields = fields[1:]
	}
	if !strings.HasPrefix(filepath.Base(fields[0]), "python") {
		return ""
	}
	return fields[0]
}

// Model is a loaded whisper model.
type Model struct {
	loader *Loader
	binary string
	name   string
}

// Name returns the model identifier.
func (m *Model) Name() string {
	return m.name
}

// Transcribe runs the CLI against audioPath and returns its segments.
func (m *Model) Transcribe(ctx context.Context, audioPath string) ([]engine.Segment, error) {
	cfg := m.loader.cfg
	outDir, err := os.MkdirTemp(cfg.WorkDir, "whisper-*")
	if err != nil {
		return nil, services.Wrap(services.ErrTranscribe, "whisper", "create work dir", "", err)
	}
	defer os.RemoveAll(outDir)

	started := time.Now()
	args := BuildArgs(fileutil.NormalizePath(audioPath), m.name, cfg.ModelDir, outDir, cfg.Language, cfg.Device)
	output, err := m.loader.runner.Run(ctx, m.binary, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrTranscribe, "whisper", "run", media.Diagnostics(output, diagnosticsLimit), err)
	}

	jsonPath := filepath.Join(outDir, OutputName(audioPath))
	segments, err := engine.LoadSegments(jsonPath)
	if err != nil {
		return nil, services.Wrap(services.ErrTranscribe, "whisper", "read output", jsonPath, err)
	}
	m.loader.logger.Debug("whisper transcription finished",
		logging.Audio(audioPath),
		logging.Segments(len(segments)),
		logging.Since(started),
	)
	return segments, nil
}

// BuildArgs constructs the whisper CLI arguments.
func BuildArgs(audioPath, model, modelDir, outputDir, lang, device string) []string {
	args := []string{
		audioPath,
		"--model", model,
	}
	if modelDir != "" {
		args = append(args, "--model_dir", modelDir)
	}
	args = append(args,
		"--output_format", "json",
		"--output_dir", outputDir,
		"--verbose", "False",
	)
	if code := language.ToISO2(lang); code != "" {
		args = append(args, "--language", code)
	}
	switch strings.ToLower(strings.TrimSpace(device)) {
	case "cpu":
		args = append(args, "--device", "cpu", "--fp16", "False")
	case "cuda":
		args = append(args, "--device", "cuda")
	}
	return args
}

// OutputName is the JSON file the CLI writes for audioPath.
func OutputName(audioPath string) string {
	base := filepath.Base(audioPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}
