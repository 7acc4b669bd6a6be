package output

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"whisperwiz/internal/engine"
	"whisperwiz/internal/services"
)

const bom = "\xef\xbb\xbf"

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestFormatSeconds(t *testing.T) {
	tests := map[float64]string{
		0:      "0.0",
		1.5:    "1.5",
		2.56:   "2.56",
		12:     "12.0",
		0.1234: "0.1234",
		3600.5: "3600.5",
	}
	for in, want := range tests {
		if got := FormatSeconds(in); got != want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatLine(t *testing.T) {
	seg := engine.Segment{Start: 0, End: 1.5, Text: "  hello  "}
	if got := FormatLine(seg, true); got != "[0.00s - 1.50s]: hello" {
		t.Fatalf("with timestamps: %q", got)
	}
	if got := FormatLine(seg, false); got != "hello" {
		t.Fatalf("without timestamps: %q", got)
	}
}

func TestTextWriterTimestampToggle(t *testing.T) {
	segments := []engine.Segment{
		{Start: 0, End: 1.5, Text: " hello"},
		{Start: 1.5, End: 3.256, Text: "world "},
	}
	tests := []struct {
		name       string
		timestamps bool
		want       string
	}{
		{"with timestamps", true, bom + "[0.00s - 1.50s]: hello\n[1.50s - 3.26s]: world\n"},
		{"text only", false, bom + "hello\nworld\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			w := NewTextWriter(dir, tt.timestamps)
			path, err := w.Write("/in/clip.mp4", segments)
			if err != nil {
				t.Fatalf("Write: %v", err)
			}
			if path != filepath.Join(dir, "clip.mp4.txt") {
				t.Fatalf("unexpected path %q", path)
			}
			if got := readFile(t, path); got != tt.want {
				t.Fatalf("content = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextWriterTruncatesExisting(t *testing.T) {
	dir := t.TempDir()
	w := NewTextWriter(dir, false)
	if _, err := w.Write("a.wav", []engine.Segment{{Text: "a much longer first transcript"}}); err != nil {
		t.Fatal(err)
	}
	path, err := w.Write("a.wav", []engine.Segment{{Text: "short"}})
	if err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, path); got != bom+"short\n" {
		t.Fatalf("content = %q", got)
	}
}

func TestTextWriterFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("path semantics differ")
	}
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w := NewTextWriter(filepath.Join(blocker, "sub"), false)
	_, err := w.Write("a.wav", []engine.Segment{{Text: "x"}})
	var wErr *WriteError
	if !errors.As(err, &wErr) || !errors.Is(err, services.ErrWrite) {
		t.Fatalf("expected WriteError with marker, got %v", err)
	}
}

func TestTableWriterEndToEnd(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)
	w, err := OpenTable(dir, true, now)
	if err != nil {
		t.Fatalf("OpenTable: %v", err)
	}
	if filepath.Base(w.Path()) != "2026-03-04_05-06-07 - Whispering Wizard Output.csv" {
		t.Fatalf("unexpected name %q", filepath.Base(w.Path()))
	}
	if _, err := w.Write("/in/a.wav", []engine.Segment{{Start: 0, End: 1.5, Text: "hello"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write("/in/sub/b.mp4", []engine.Segment{
		{Start: 0, End: 2, Text: "hi"},
		{Start: 2, End: 2.56, Text: `say "cheese", please`},
	}); err != nil {
		t.Fatal(err)
	}

	partial := readFile(t, w.Path())
	if !strings.Contains(partial, "b.mp4,0.0,2.0,hi\r\n") {
		t.Fatalf("rows should be flushed per item, got %q", partial)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	want := bom +
		"filename,start_time,stop_time,text\r\n" +
		"a.wav,0.0,1.5,hello\r\n" +
		"b.mp4,0.0,2.0,hi\r\n" +
		"b.mp4,2.0,2.56,\"say \"\"cheese\"\", please\"\r\n"
	if got := readFile(t, w.Path()); got != want {
		t.Fatalf("content = %q\nwant %q", got, want)
	}
}

func TestTableWriterWithoutTimestamps(t *testing.T) {
	dir := t.TempDir()
	w, err := OpenTable(dir, false, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write("a.wav", []engine.Segment{{Start: 0, End: 1, Text: " hello "}}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, w.Path()); got != bom+"filename,text\r\na.wav,hello\r\n" {
		t.Fatalf("content = %q", got)
	}
}

func TestTableWriterHeaderOnlyWhenEmpty(t *testing.T) {
	w, err := OpenTable(t.TempDir(), true, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, w.Path()); got != bom+"filename,start_time,stop_time,text\r\n" {
		t.Fatalf("content = %q", got)
	}
}

func TestTableWriterWriteAfterClose(t *testing.T) {
	w, err := OpenTable(t.TempDir(), true, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	_ = w.Close()
	if _, err := w.Write("a.wav", nil); !errors.Is(err, services.ErrWrite) {
		t.Fatalf("expected write failure, got %v", err)
	}
}

func TestOpenSelectsLayout(t *testing.T) {
	dir := t.TempDir()
	text, err := Open(Options{Layout: "text", OutputDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := text.(*TextWriter); !ok {
		t.Fatalf("expected TextWriter, got %T", text)
	}
	table, err := Open(Options{Layout: "CSV", OutputDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer table.Close()
	if _, ok := table.(*TableWriter); !ok {
		t.Fatalf("expected TableWriter, got %T", table)
	}
	if _, err := Open(Options{Layout: "xlsx", OutputDir: dir}); err == nil {
		t.Fatal("expected error for unknown layout")
	}
}
