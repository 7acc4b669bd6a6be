// Package deps reports on the external binaries whisperwiz needs.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external command and whether a run can go ahead
// without it.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is the outcome of locating one Requirement. Resolved is set only
// when Available is true; Detail explains a miss.
type Status struct {
	Name        string
	Command     string
	Resolved    string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

var lookPath = exec.LookPath

func (r Requirement) status() Status {
	return Status{
		Name:        r.Name,
		Command:     strings.TrimSpace(r.Command),
		Description: strings.TrimSpace(r.Description),
		Optional:    r.Optional,
	}
}

func (s Status) found(path string) Status {
	s.Resolved, s.Available, s.Detail = path, true, ""
	return s
}

func (s Status) missing(format string, args ...any) Status {
	s.Available, s.Detail = false, fmt.Sprintf(format, args...)
	return s
}

// CheckBinaries resolves each requirement on PATH, preserving order.
func CheckBinaries(requirements []Requirement) []Status {
	out := make([]Status, len(requirements))
	for i, req := range requirements {
		st := req.status()
		switch resolved, err := lookPath(st.Command); {
		case st.Command == "":
			st = st.missing("command not configured")
		case err != nil:
			st = st.missing("binary %q not found", st.Command)
		default:
			st = st.found(resolved)
		}
		out[i] = st
	}
	return out
}

// EngineCommand returns the executable a transcription backend launches.
func EngineCommand(backend string) string {
	if strings.EqualFold(strings.TrimSpace(backend), "whisperx") {
		return "uvx"
	}
	return "whisper"
}

// Requirements lists ffmpeg (via ResolveFFmpeg) followed by the backend's
// engine command.
func Requirements(ffmpegBinary, backend string) []Status {
	backend = strings.ToLower(strings.TrimSpace(backend))
	engine := Requirement{
		Name:        "Engine",
		Command:     EngineCommand(backend),
		Description: "Runs the " + backend + " recognition backend",
	}
	return []Status{ResolveFFmpeg(ffmpegBinary), CheckBinaries([]Requirement{engine})[0]}
}
