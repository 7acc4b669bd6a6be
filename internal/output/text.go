package output

import (
	"bufio"
	"os"
	"path/filepath"

	"whisperwiz/internal/engine"
	"whisperwiz/internal/fileutil"
)

// TextWriter writes `<output>/<input name>.txt` for every input, keeping the
// input's own extension in the name (clip.mp4 -> clip.mp4.txt).
type TextWriter struct {
	dir        string
	timestamps bool
}

// NewTextWriter returns a TextWriter rooted at outputDir.
func NewTextWriter(outputDir string, includeTimestamps bool) *TextWriter {
	return &TextWriter{dir: outputDir, timestamps: includeTimestamps}
}

// PathFor returns the transcript path for sourcePath.
func (w *TextWriter) PathFor(sourcePath string) string {
	return filepath.Join(w.dir, filepath.Base(sourcePath)+".txt")
}

// Write creates or truncates the transcript for sourcePath and closes it
// before returning.
func (w *TextWriter) Write(sourcePath string, segments []engine.Segment) (string, error) {
	path := w.PathFor(sourcePath)
	if err := fileutil.EnsureDir(w.dir); err != nil {
		return path, &WriteError{Path: w.dir, Err: err}
	}
	file, err := os.Create(fileutil.NormalizePath(path))
	if err != nil {
		return path, &WriteError{Path: path, Err: err}
	}

	enc := bomWriter(file)
	buf := bufio.NewWriter(enc)
	for _, seg := range segments {
		buf.WriteString(FormatLine(seg, w.timestamps))
		buf.WriteByte('\n')
	}
	err = buf.Flush()
	if closeErr := enc.Close(); err == nil {
		err = closeErr
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return path, &WriteError{Path: path, Err: err}
	}
	return path, nil
}

// Close is a no-op; every transcript is closed as soon as it is written.
func (w *TextWriter) Close() error {
	return nil
}
