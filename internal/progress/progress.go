// Package progress computes batch completion and renders the status lines a
// run reports, including the spinner shown while a model loads.
package progress

import "fmt"

// Status lines reported by a run.
const (
	StatusModelLoaded = "Model loaded successfully."
	StatusComplete    = "Transcription complete."
)

// LoadingModel is reported when model loading begins.
func LoadingModel(model string) string {
	return "Loading model: " + model
}

// Transcribing is reported before each file is processed.
func Transcribing(name string) string {
	return "Transcribing file: " + name
}

// Skipped is reported when a failed file is skipped under the lenient policy.
func Skipped(name, reason string) string {
	return fmt.Sprintf("Skipped %s: %s", name, reason)
}

// CompleteWithFailures reports completion when some files were skipped.
func CompleteWithFailures(failed int) string {
	noun := "files"
	if failed == 1 {
		noun = "file"
	}
	return fmt.Sprintf("%s %d %s failed.", StatusComplete, failed, noun)
}

// Percent returns floor(100*completed/total), clamped to 0..100. A zero total
// yields 0.
func Percent(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return int(int64(completed) * 100 / int64(total))
}

// Reporter counts finished items and emits a percentage after each one. The
// emitted sequence never decreases and ends at 100.
type Reporter struct {
	total     int
	completed int
	last      int
	emit      func(percent int)
}

// NewReporter returns a Reporter for total items. emit may be nil.
func NewReporter(total int, emit func(percent int)) *Reporter {
	if emit == nil {
		emit = func(int) {}
	}
	return &Reporter{total: total, emit: emit}
}

// Advance records one finished item, emits the new percentage and returns it.
func (r *Reporter) Advance() int {
	if r.completed < r.total {
		r.completed++
	}
	pct := Percent(r.completed, r.total)
	if pct < r.last {
		pct = r.last
	}
	r.last = pct
	r.emit(pct)
	return pct
}

// Completed returns the number of finished items.
func (r *Reporter) Completed() int {
	return r.completed
}

// Total returns the batch size.
func (r *Reporter) Total() int {
	return r.total
}

// Last returns the most recently emitted percentage.
func (r *Reporter) Last() int {
	return r.last
}
