package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"whisperwiz/internal/config"
	"whisperwiz/internal/engine"
	"whisperwiz/internal/history"
	"whisperwiz/internal/logging"
	"whisperwiz/internal/media"
	"whisperwiz/internal/output"
	"whisperwiz/internal/progress"
	"whisperwiz/internal/services"
	"whisperwiz/internal/testsupport"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)

// recordingNotifier captures events in delivery order.
type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) OnStatus(state RunState, message string) {
	n.add(Event{Kind: EventStatus, State: state, Message: message})
}

func (n *recordingNotifier) OnProgress(state RunState, percent int) {
	n.add(Event{Kind: EventProgress, State: state, Percent: percent})
}

func (n *recordingNotifier) OnError(state RunState, message string) {
	n.add(Event{Kind: EventError, State: state, Message: message})
}

func (n *recordingNotifier) OnComplete(state RunState) {
	n.add(Event{Kind: EventComplete, State: state})
}

func (n *recordingNotifier) add(ev Event) {
	n.mu.Lock()
	n.events = append(n.events, ev)
	n.mu.Unlock()
}

func (n *recordingNotifier) kinds(kind EventKind) []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Event
	for _, ev := range n.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func (n *recordingNotifier) statuses() []string {
	var out []string
	for _, ev := range n.kinds(EventStatus) {
		out = append(out, ev.Message)
	}
	return out
}

func (n *recordingNotifier) percents() []int {
	var out []int
	for _, ev := range n.kinds(EventProgress) {
		out = append(out, ev.Percent)
	}
	return out
}

// fakeFFmpeg writes a placeholder WAV to the output argument.
func fakeFFmpeg(calls *[]string) media.RunnerFunc {
	return func(_ context.Context, _ string, args ...string) ([]byte, error) {
		out := args[len(args)-1]
		if calls != nil {
			*calls = append(*calls, out)
		}
		return nil, os.WriteFile(out, []byte("RIFF"), 0o644)
	}
}

func failingFFmpeg() media.RunnerFunc {
	return func(context.Context, string, ...string) ([]byte, error) {
		return []byte("moov atom not found"), errors.New("exit status 1")
	}
}

func staticLoader(model engine.Model) engine.Loader {
	return engine.LoaderFunc(func(context.Context, string) (engine.Model, error) {
		return model, nil
	})
}

// segmentsByName returns canned segments keyed by the audio base name; any
// transcoded scratch file gets the "video" entry.
func segmentsByName(m map[string][]engine.Segment) engine.Model {
	return engine.ModelFunc(func(_ context.Context, audioPath string) ([]engine.Segment, error) {
		if segs, ok := m[filepath.Base(audioPath)]; ok {
			return segs, nil
		}
		return m["video"], nil
	})
}

func newBatch(t *testing.T, cfg *config.Config) (BatchConfig, string) {
	t.Helper()
	input := filepath.Join(testsupport.BaseDir(cfg), "input")
	if err := os.MkdirAll(input, 0o755); err != nil {
		t.Fatal(err)
	}
	batch := NewBatchConfig(cfg, input)
	batch.HeartbeatInterval = time.Millisecond
	return batch, input
}

func newPipeline(t *testing.T, loader engine.Loader, runner media.Runner, rec Recorder) *Pipeline {
	t.Helper()
	p, err := New(Options{
		Loader:   loader,
		Runner:   runner,
		Recorder: rec,
		Now:      func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func assertScratchClean(t *testing.T, cfg *config.Config) {
	t.Helper()
	entries, err := os.ReadDir(cfg.Paths.ScratchDir)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		t.Fatalf("read scratch: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("scratch not cleaned: %v", testsupport.ListDir(t, cfg.Paths.ScratchDir))
	}
}

func TestNewRequiresLoader(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error without loader")
	}
}

func TestRunWritesSingleTable(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOutputMode(config.OutputModeCSV))
	cfg.Transcription.IncludeTimestamps = true
	batch, input := newBatch(t, cfg)
	testsupport.WriteFiles(t, input, "b.mp4", "a.wav", "notes.txt")

	var transcodes []string
	model := segmentsByName(map[string][]engine.Segment{
		"a.wav": {{Start: 0, End: 1.5, Text: " hello "}},
		"video": {{Start: 0, End: 2.56, Text: "first"}, {Start: 2.56, End: 4, Text: "second, part"}},
	})
	p := newPipeline(t, staticLoader(model), fakeFFmpeg(&transcodes), nil)
	notifier := &recordingNotifier{}

	if err := p.Run(context.Background(), batch, notifier); err != nil {
		t.Fatalf("Run: %v", err)
	}

	path := filepath.Join(cfg.Paths.OutputDir, output.TableName(fixedNow))
	got := testsupport.ReadFile(t, path)
	want := "\ufefffilename,start_time,stop_time,text\r\n" +
		"a.wav,0.0,1.5,hello\r\n" +
		"b.mp4,0.0,2.56,first\r\n" +
		"b.mp4,2.56,4.0,\"second, part\"\r\n"
	if got != want {
		t.Fatalf("csv mismatch\n got: %q\nwant: %q", got, want)
	}

	if len(transcodes) != 1 {
		t.Fatalf("expected one transcode, got %v", transcodes)
	}
	if _, err := os.Stat(transcodes[0]); !os.IsNotExist(err) {
		t.Fatalf("transcoded artifact left behind: %v", err)
	}
	assertScratchClean(t, cfg)

	if errs := notifier.kinds(EventError); len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	complete := notifier.kinds(EventComplete)
	if len(complete) != 1 {
		t.Fatalf("expected one completion, got %d", len(complete))
	}
	final := complete[0].State
	if final.Phase != PhaseComplete || final.Total != 2 || final.Completed != 2 || final.RunID == "" {
		t.Fatalf("unexpected final state %+v", final)
	}

	statuses := notifier.statuses()
	wantOrder := []string{
		progress.LoadingModel("tiny"),
		progress.StatusModelLoaded,
		progress.Transcribing("a.wav"),
		progress.Transcribing("b.mp4"),
		progress.StatusComplete,
	}
	var filtered []string
	for _, s := range statuses {
		if !strings.HasPrefix(s, "Downloading/loading model") {
			filtered = append(filtered, s)
		}
	}
	if !slices.Equal(filtered, wantOrder) {
		t.Fatalf("status order = %q, want %q", filtered, wantOrder)
	}
}

func TestRunTextLayoutWithoutTimestamps(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	batch, input := newBatch(t, cfg)
	testsupport.WriteFiles(t, input, "talk.mp3")

	model := segmentsByName(map[string][]engine.Segment{
		"talk.mp3": {{Start: 0, End: 1, Text: "one"}, {Start: 1, End: 2, Text: "two"}},
	})
	p := newPipeline(t, staticLoader(model), fakeFFmpeg(nil), nil)
	if err := p.Run(context.Background(), batch, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := testsupport.ReadFile(t, filepath.Join(cfg.Paths.OutputDir, "talk.mp3.txt"))
	if got != "\ufeffone\ntwo\n" {
		t.Fatalf("unexpected transcript %q", got)
	}
}

func TestRunFatalTranscodeAborts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	batch, input := newBatch(t, cfg)
	testsupport.WriteFiles(t, input, "a.wav", "b.mp4", "c.wav")

	var transcribed []string
	model := engine.ModelFunc(func(_ context.Context, audioPath string) ([]engine.Segment, error) {
		transcribed = append(transcribed, filepath.Base(audioPath))
		return []engine.Segment{{Start: 0, End: 1, Text: "ok"}}, nil
	})
	p := newPipeline(t, staticLoader(model), failingFFmpeg(), nil)
	notifier := &recordingNotifier{}

	err := p.Run(context.Background(), batch, notifier)
	if err == nil {
		t.Fatal("expected failure")
	}
	if !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("expected transcode marker, got %v", err)
	}
	var terr *media.TranscodeError
	if !errors.As(err, &terr) || !strings.Contains(terr.Output, "moov atom") {
		t.Fatalf("expected TranscodeError with diagnostics, got %v", err)
	}

	errs := notifier.kinds(EventError)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error event, got %d", len(errs))
	}
	if !strings.Contains(errs[0].Message, "b.mp4") {
		t.Fatalf("error message should name the file: %q", errs[0].Message)
	}
	if errs[0].State.Phase != PhaseFailed {
		t.Fatalf("expected failed phase, got %s", errs[0].State.Phase)
	}
	if len(notifier.kinds(EventComplete)) != 0 {
		t.Fatal("failed run must not complete")
	}
	if !slices.Equal(transcribed, []string{"a.wav"}) {
		t.Fatalf("c.wav must not run after the failure: %v", transcribed)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "a.wav.txt")); err != nil {
		t.Fatalf("earlier output should remain: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "c.wav.txt")); !os.IsNotExist(err) {
		t.Fatalf("later output should not exist: %v", err)
	}
	assertScratchClean(t, cfg)
}

func TestRunProgressIsMonotonic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	batch, input := newBatch(t, cfg)
	testsupport.WriteFiles(t, input, "1.wav", "2.wav", "3.wav")

	p := newPipeline(t, staticLoader(segmentsByName(nil)), fakeFFmpeg(nil), nil)
	notifier := &recordingNotifier{}
	if err := p.Run(context.Background(), batch, notifier); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := notifier.percents()
	if !slices.Equal(got, []int{33, 66, 100}) {
		t.Fatalf("progress = %v", got)
	}
	for i, ev := range notifier.kinds(EventProgress) {
		if ev.State.Completed != i+1 {
			t.Fatalf("event %d carries completed=%d", i, ev.State.Completed)
		}
	}
}

func TestRunEmptyBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOutputMode(config.OutputModeCSV))
	batch, _ := newBatch(t, cfg)

	p := newPipeline(t, staticLoader(segmentsByName(nil)), fakeFFmpeg(nil), nil)
	notifier := &recordingNotifier{}
	if err := p.Run(context.Background(), batch, notifier); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := notifier.percents(); len(got) != 0 {
		t.Fatalf("empty batch must not report progress: %v", got)
	}
	statuses := notifier.statuses()
	if statuses[len(statuses)-1] != progress.StatusComplete {
		t.Fatalf("last status = %q", statuses[len(statuses)-1])
	}
	if len(notifier.kinds(EventComplete)) != 1 {
		t.Fatal("expected completion")
	}
	got := testsupport.ReadFile(t, filepath.Join(cfg.Paths.OutputDir, output.TableName(fixedNow)))
	if got != "\ufefffilename,text\r\n" {
		t.Fatalf("expected header-only table, got %q", got)
	}
}

func TestRunEngineLoadFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	batch, input := newBatch(t, cfg)
	testsupport.WriteFiles(t, input, "a.wav")

	loader := engine.LoaderFunc(func(context.Context, string) (engine.Model, error) {
		return nil, errors.New("weights corrupt")
	})
	p := newPipeline(t, loader, fakeFFmpeg(nil), nil)
	notifier := &recordingNotifier{}

	err := p.Run(context.Background(), batch, notifier)
	if !errors.Is(err, services.ErrEngineLoad) {
		t.Fatalf("expected engine load marker, got %v", err)
	}
	errs := notifier.kinds(EventError)
	if len(errs) != 1 || !strings.HasPrefix(errs[0].Message, "Error loading model:") {
		t.Fatalf("unexpected error events %+v", errs)
	}
	if _, statErr := os.Stat(cfg.Paths.OutputDir); !os.IsNotExist(statErr) {
		t.Fatal("nothing should be written when the model fails to load")
	}
}

func TestRunHeartbeatStopsBeforeModelLoaded(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	batch, _ := newBatch(t, cfg)

	loader := engine.LoaderFunc(func(ctx context.Context, _ string) (engine.Model, error) {
		select {
		case <-time.After(30 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return segmentsByName(nil), nil
	})
	p := newPipeline(t, loader, fakeFFmpeg(nil), nil)
	notifier := &recordingNotifier{}
	if err := p.Run(context.Background(), batch, notifier); err != nil {
		t.Fatalf("Run: %v", err)
	}

	statuses := notifier.statuses()
	loaded := slices.Index(statuses, progress.StatusModelLoaded)
	if loaded < 0 {
		t.Fatalf("missing model loaded status: %q", statuses)
	}
	beats := 0
	for i, s := range statuses {
		if strings.HasPrefix(s, "Downloading/loading model: tiny... ") {
			beats++
			if i > loaded {
				t.Fatalf("heartbeat after model load at %d: %q", i, statuses)
			}
		}
	}
	if beats == 0 {
		t.Fatal("expected heartbeat messages during load")
	}
}

func TestRunModelLoadTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	batch, _ := newBatch(t, cfg)
	batch.ModelLoadTimeout = 10 * time.Millisecond

	loader := engine.LoaderFunc(func(ctx context.Context, _ string) (engine.Model, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	p := newPipeline(t, loader, fakeFFmpeg(nil), nil)
	notifier := &recordingNotifier{}
	err := p.Run(context.Background(), batch, notifier)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
	if errs := notifier.kinds(EventError); len(errs) != 1 || !strings.HasPrefix(errs[0].Message, "Transcription timed out:") {
		t.Fatalf("unexpected error events %+v", errs)
	}
}

func TestRunCancellationStopsBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	batch, input := newBatch(t, cfg)
	batch.FailurePolicy = config.FailurePolicyContinue
	testsupport.WriteFiles(t, input, "a.wav", "b.wav")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var calls int
	model := engine.ModelFunc(func(context.Context, string) ([]engine.Segment, error) {
		calls++
		cancel()
		return []engine.Segment{{Text: "x"}}, nil
	})
	p := newPipeline(t, staticLoader(model), fakeFFmpeg(nil), nil)
	notifier := &recordingNotifier{}

	err := p.Run(ctx, batch, notifier)
	if !errors.Is(err, services.ErrCancelled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one transcription before cancel, got %d", calls)
	}
	errs := notifier.kinds(EventError)
	if len(errs) != 1 || !strings.HasPrefix(errs[0].Message, "Transcription cancelled:") {
		t.Fatalf("unexpected error events %+v", errs)
	}
}

func TestRunParentDeadlineIsTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	batch, input := newBatch(t, cfg)
	batch.FailurePolicy = config.FailurePolicyContinue
	testsupport.WriteFiles(t, input, "a.wav", "b.wav")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	model := engine.ModelFunc(func(callCtx context.Context, _ string) ([]engine.Segment, error) {
		<-callCtx.Done()
		return []engine.Segment{{Text: "x"}}, nil
	})
	p := newPipeline(t, staticLoader(model), fakeFFmpeg(nil), nil)
	notifier := &recordingNotifier{}

	err := p.Run(ctx, batch, notifier)
	if !errors.Is(err, services.ErrTimeout) || errors.Is(err, services.ErrTranscribe) {
		t.Fatalf("expected timeout marker only, got %v", err)
	}
	if got := services.Kind(err); got != "timeout" {
		t.Fatalf("Kind = %q, want timeout", got)
	}
	errs := notifier.kinds(EventError)
	if len(errs) != 1 || !strings.HasPrefix(errs[0].Message, "Transcription timed out:") {
		t.Fatalf("unexpected error events %+v", errs)
	}
}

func TestRunContinuePolicySkipsFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	batch, input := newBatch(t, cfg)
	batch.FailurePolicy = config.FailurePolicyContinue
	testsupport.WriteFiles(t, input, "a.wav", "b.mp4", "c.wav")

	p := newPipeline(t, staticLoader(segmentsByName(nil)), failingFFmpeg(), nil)
	notifier := &recordingNotifier{}
	if err := p.Run(context.Background(), batch, notifier); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if errs := notifier.kinds(EventError); len(errs) != 0 {
		t.Fatalf("skips must not raise errors: %+v", errs)
	}
	statuses := notifier.statuses()
	skipped := false
	for _, s := range statuses {
		if strings.HasPrefix(s, "Skipped b.mp4: ") {
			skipped = true
		}
	}
	if !skipped {
		t.Fatalf("missing skip status: %q", statuses)
	}
	if last := statuses[len(statuses)-1]; last != progress.CompleteWithFailures(1) {
		t.Fatalf("final status = %q", last)
	}
	if got := notifier.percents(); !slices.Equal(got, []int{33, 66, 100}) {
		t.Fatalf("progress = %v", got)
	}
	final := notifier.kinds(EventComplete)[0].State
	if final.Failed != 1 || final.Completed != 3 {
		t.Fatalf("unexpected final state %+v", final)
	}
	for _, name := range []string{"a.wav.txt", "c.wav.txt"} {
		if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestTolerable(t *testing.T) {
	writeErr := &output.WriteError{Path: "x", Err: errors.New("disk full")}
	transcodeErr := &media.TranscodeError{Source: "x"}

	tests := []struct {
		name   string
		policy string
		mode   string
		err    error
		want   bool
	}{
		{"abort", config.FailurePolicyAbort, config.OutputModeText, transcodeErr, false},
		{"continue transcode", config.FailurePolicyContinue, config.OutputModeText, transcodeErr, true},
		{"continue text write", config.FailurePolicyContinue, config.OutputModeText, writeErr, true},
		{"continue csv write", config.FailurePolicyContinue, config.OutputModeCSV, writeErr, false},
		{"continue cancelled", config.FailurePolicyContinue, config.OutputModeText, services.ErrCancelled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &run{ctx: context.Background(), cfg: BatchConfig{FailurePolicy: tt.policy, OutputMode: tt.mode}}
			if got := r.tolerable(tt.err); got != tt.want {
				t.Fatalf("tolerable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunRecoversPanics(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	batch, input := newBatch(t, cfg)
	testsupport.WriteFiles(t, input, "a.wav")

	model := engine.ModelFunc(func(context.Context, string) ([]engine.Segment, error) {
		panic("decoder exploded")
	})
	p := newPipeline(t, staticLoader(model), fakeFFmpeg(nil), nil)
	notifier := &recordingNotifier{}

	err := p.Run(context.Background(), batch, notifier)
	if err == nil || !strings.Contains(err.Error(), "decoder exploded") {
		t.Fatalf("expected recovered panic, got %v", err)
	}
	if errs := notifier.kinds(EventError); len(errs) != 1 {
		t.Fatalf("expected one error event, got %d", len(errs))
	}
}

func TestRunRejectsMissingInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	batch := NewBatchConfig(cfg, filepath.Join(t.TempDir(), "missing"))
	p := newPipeline(t, staticLoader(segmentsByName(nil)), fakeFFmpeg(nil), nil)
	notifier := &recordingNotifier{}

	err := p.Run(context.Background(), batch, notifier)
	if !errors.Is(err, services.ErrDiscovery) {
		t.Fatalf("expected discovery failure, got %v", err)
	}
	if errs := notifier.kinds(EventError); len(errs) != 1 || !strings.HasPrefix(errs[0].Message, "Error reading input folder:") {
		t.Fatalf("unexpected error events %+v", errs)
	}
}

func TestTransitions(t *testing.T) {
	valid := [][2]Phase{
		{PhaseIdle, PhaseLoadingModel},
		{PhaseLoadingModel, PhaseDiscovering},
		{PhaseDiscovering, PhaseProcessing},
		{PhaseDiscovering, PhaseFinalizing},
		{PhaseProcessing, PhaseFinalizing},
		{PhaseFinalizing, PhaseComplete},
		{PhaseProcessing, PhaseFailed},
	}
	for _, edge := range valid {
		if !isValidTransition(edge[0], edge[1]) {
			t.Errorf("%s -> %s should be allowed", edge[0], edge[1])
		}
	}
	invalid := [][2]Phase{
		{PhaseIdle, PhaseProcessing},
		{PhaseLoadingModel, PhaseProcessing},
		{PhaseComplete, PhaseIdle},
		{PhaseFailed, PhaseLoadingModel},
		{PhaseProcessing, PhaseDiscovering},
	}
	for _, edge := range invalid {
		if isValidTransition(edge[0], edge[1]) {
			t.Errorf("%s -> %s should be rejected", edge[0], edge[1])
		}
	}

	r := &run{state: RunState{Phase: PhaseIdle}, logger: logging.NewNop()}
	err := r.transition(PhaseProcessing)
	var terr *TransitionError
	if !errors.As(err, &terr) || terr.From != PhaseIdle || terr.To != PhaseProcessing {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if r.state.Phase != PhaseIdle {
		t.Fatalf("rejected transition changed phase to %s", r.state.Phase)
	}
}

func TestStartClosesChannelAfterTerminalEvent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	batch, input := newBatch(t, cfg)
	testsupport.WriteFiles(t, input, "a.wav", "b.wav")

	p := newPipeline(t, staticLoader(segmentsByName(nil)), fakeFFmpeg(nil), nil)
	var events []Event
	for ev := range p.Start(context.Background(), batch) {
		events = append(events, ev)
	}
	if len(events) == 0 {
		t.Fatal("no events")
	}
	last := events[len(events)-1]
	if last.Kind != EventComplete || last.State.Phase != PhaseComplete {
		t.Fatalf("last event = %+v", last)
	}
	for _, ev := range events[:len(events)-1] {
		if ev.Terminal() {
			t.Fatalf("terminal event before the end: %+v", ev)
		}
	}
}

func TestRunRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistory())
	batch, input := newBatch(t, cfg)
	batch.FailurePolicy = config.FailurePolicyContinue
	testsupport.WriteFiles(t, input, "a.wav", "b.mp4")

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()

	p := newPipeline(t, staticLoader(segmentsByName(nil)), failingFFmpeg(), store)
	notifier := &recordingNotifier{}
	if err := p.Run(context.Background(), batch, notifier); err != nil {
		t.Fatalf("Run: %v", err)
	}
	runID := notifier.kinds(EventComplete)[0].State.RunID

	ctx := context.Background()
	run, err := store.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != history.RunComplete || run.Total != 2 || run.Completed != 2 || run.Failed != 1 {
		t.Fatalf("unexpected run record %+v", run)
	}
	if run.Model != "tiny" || run.InputDir != input {
		t.Fatalf("unexpected run metadata %+v", run)
	}
	items, err := store.ListItems(ctx, runID)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Status != history.ItemDone || items[1].Status != history.ItemFailed || items[1].ErrorKind != "transcode" {
		t.Fatalf("unexpected items %+v", items)
	}
}
