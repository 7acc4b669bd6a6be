package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"whisperwiz/internal/engine"
	"whisperwiz/internal/services"
)

// Layout names accepted by Open.
const (
	LayoutText = "text"
	LayoutCSV  = "csv"
)

// Writer receives the segments of one input at a time.
type Writer interface {
	// Write stores segments for the input at sourcePath and returns the file
	// that now holds them.
	Write(sourcePath string, segments []engine.Segment) (string, error)
	Close() error
}

// WriteError reports a failure to create or write an output file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s: %v", services.ErrWrite, e.Path, e.Err)
}

// Unwrap exposes both the write marker and the underlying cause.
func (e *WriteError) Unwrap() []error {
	if e == nil {
		return nil
	}
	return []error{services.ErrWrite, e.Err}
}

// Options selects the layout and row format.
type Options struct {
	Layout            string
	OutputDir         string
	IncludeTimestamps bool
	// Now stamps the CSV file name; zero uses the current local time.
	Now time.Time
}

// Open returns the writer for opts.Layout. The CSV layout creates its file
// and header immediately so that an unwritable output folder fails before
// any transcription work.
func Open(opts Options) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Layout)) {
	case "", LayoutText:
		return NewTextWriter(opts.OutputDir, opts.IncludeTimestamps), nil
	case LayoutCSV:
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		return OpenTable(opts.OutputDir, opts.IncludeTimestamps, now)
	default:
		return nil, fmt.Errorf("output layout: unsupported value %q", opts.Layout)
	}
}

// bomWriter wraps w so the first byte written is preceded by a UTF-8 BOM.
func bomWriter(w io.Writer) *transform.Writer {
	return transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
}

// FormatSeconds renders a timestamp in its shortest round-trip decimal form
// with at least one fractional digit: 0 -> "0.0", 1.5 -> "1.5", 2.56 -> "2.56".
func FormatSeconds(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// FormatLine renders one text-layout line without the trailing newline.
func FormatLine(seg engine.Segment, includeTimestamps bool) string {
	text := strings.TrimSpace(seg.Text)
	if !includeTimestamps {
		return text
	}
	return fmt.Sprintf("[%.2fs - %.2fs]: %s", seg.Start, seg.End, text)
}
