package history

import "time"

// RunStatus is the terminal or in-progress state of a run.
type RunStatus string

const (
	RunRunning  RunStatus = "running"
	RunComplete RunStatus = "complete"
	RunFailed   RunStatus = "failed"
)

// ItemStatus is the outcome of one file.
type ItemStatus string

const (
	ItemDone   ItemStatus = "done"
	ItemFailed ItemStatus = "failed"
)

// Run is one batch invocation.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	InputDir   string
	OutputDir  string
	Backend    string
	Model      string
	OutputMode string
	Status     RunStatus
	Total      int
	Completed  int
	Failed     int
	Error      string
}

// Item is the recorded outcome of one file within a run.
type Item struct {
	RunID      string
	Seq        int
	SourcePath string
	OutputPath string
	Status     ItemStatus
	Segments   int
	Elapsed    time.Duration
	ErrorKind  string
	Error      string
	FinishedAt time.Time
}
