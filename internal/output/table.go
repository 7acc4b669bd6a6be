package output

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/transform"

	"whisperwiz/internal/engine"
	"whisperwiz/internal/fileutil"
)

// TableFileLayout is the time layout of the aggregate CSV file name.
const TableFileLayout = "2006-01-02_15-04-05"

// TableFileSuffix follows the timestamp in the aggregate CSV file name.
const TableFileSuffix = " - Whispering Wizard Output.csv"

// TableName returns the aggregate CSV file name for a run started at now.
func TableName(now time.Time) string {
	return now.Format(TableFileLayout) + TableFileSuffix
}

// TableWriter appends the segments of every input to one CSV file. It is the
// only writer of that file for the run.
type TableWriter struct {
	path       string
	file       *os.File
	enc        *transform.Writer
	csv        *csv.Writer
	timestamps bool
	closed     bool
}

// OpenTable creates the CSV file in outputDir and writes its header.
func OpenTable(outputDir string, includeTimestamps bool, now time.Time) (*TableWriter, error) {
	path := filepath.Join(outputDir, TableName(now))
	if err := fileutil.EnsureDir(outputDir); err != nil {
		return nil, &WriteError{Path: outputDir, Err: err}
	}
	file, err := os.Create(fileutil.NormalizePath(path))
	if err != nil {
		return nil, &WriteError{Path: path, Err: err}
	}
	enc := bomWriter(file)
	cw := csv.NewWriter(enc)
	cw.UseCRLF = true

	w := &TableWriter{path: path, file: file, enc: enc, csv: cw, timestamps: includeTimestamps}
	if err := w.writeRows([][]string{w.header()}); err != nil {
		_ = file.Close()
		return nil, err
	}
	return w, nil
}

// Path returns the CSV file path.
func (w *TableWriter) Path() string {
	return w.path
}

func (w *TableWriter) header() []string {
	if w.timestamps {
		return []string{"filename", "start_time", "stop_time", "text"}
	}
	return []string{"filename", "text"}
}

// Write appends one row per segment and flushes them to disk.
func (w *TableWriter) Write(sourcePath string, segments []engine.Segment) (string, error) {
	if w.closed {
		return w.path, &WriteError{Path: w.path, Err: os.ErrClosed}
	}
	name := filepath.Base(sourcePath)
	rows := make([][]string, 0, len(segments))
	for _, seg := range segments {
		text := FormatLine(seg, false)
		if w.timestamps {
			rows = append(rows, []string{name, FormatSeconds(seg.Start), FormatSeconds(seg.End), text})
		} else {
			rows = append(rows, []string{name, text})
		}
	}
	return w.path, w.writeRows(rows)
}

func (w *TableWriter) writeRows(rows [][]string) error {
	for _, row := range rows {
		if err := w.csv.Write(row); err != nil {
			return &WriteError{Path: w.path, Err: err}
		}
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return &WriteError{Path: w.path, Err: err}
	}
	return nil
}

// Close flushes and closes the CSV file. Subsequent calls return nil.
func (w *TableWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.csv.Flush()
	err := errors.Join(w.csv.Error(), w.enc.Close(), w.file.Close())
	if err != nil {
		return &WriteError{Path: w.path, Err: err}
	}
	return nil
}
