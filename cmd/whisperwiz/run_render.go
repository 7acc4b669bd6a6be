package main

import (
	"fmt"
	"io"
	"strings"

	"whisperwiz/internal/pipeline"
	"whisperwiz/internal/progress"
)

const progressBarWidth = 24

// runRenderer prints pipeline events. On a terminal it keeps a single
// rewritten status line; otherwise every event gets its own line and
// consecutive heartbeat frames collapse into one.
type runRenderer struct {
	out      io.Writer
	live     bool
	colorize bool

	status    string
	percent   int
	heartbeat bool
	drawn     bool

	final    pipeline.RunState
	failed   bool
	message  string
	finished bool
}

func newRunRenderer(out io.Writer, live bool) *runRenderer {
	return &runRenderer{out: out, live: live, colorize: live}
}

func (r *runRenderer) handle(ev pipeline.Event) {
	switch ev.Kind {
	case pipeline.EventStatus:
		beat := progress.IsHeartbeat(ev.Message)
		r.status = ev.Message
		if !r.live && beat && r.heartbeat {
			return
		}
		r.heartbeat = beat
		if r.live {
			r.redraw()
			return
		}
		fmt.Fprintln(r.out, ev.Message)
	case pipeline.EventProgress:
		r.percent = ev.Percent
		if r.live {
			r.redraw()
			return
		}
		fmt.Fprintf(r.out, "Progress: %d%% (%d/%d)\n", ev.Percent, ev.State.Completed, ev.State.Total)
	case pipeline.EventError:
		r.endLine()
		r.finished = true
		r.failed = true
		r.message = ev.Message
		r.final = ev.State
	case pipeline.EventComplete:
		r.endLine()
		r.finished = true
		r.final = ev.State
	}
}

func (r *runRenderer) redraw() {
	fmt.Fprint(r.out, ansiClearLine+liveLine(r.percent, r.status))
	r.drawn = true
}

func (r *runRenderer) endLine() {
	if r.live && r.drawn {
		fmt.Fprintln(r.out)
		r.drawn = false
	}
}

// summary returns the closing lines printed after a successful run.
func (r *runRenderer) summary(outputDir string) []string {
	state := r.final
	kind := statusOK
	if state.Failed > 0 {
		kind = statusWarn
	}
	done := state.Completed - state.Failed
	lines := []string{
		renderStatusLine("Transcribed", kind, fmt.Sprintf("%d of %d file(s)", done, state.Total), r.colorize),
	}
	if state.Failed > 0 {
		lines = append(lines, renderStatusLine("Failed", statusWarn, fmt.Sprintf("%d file(s), see `whisperwiz history show %s`", state.Failed, shortRunID(state.RunID)), r.colorize))
	}
	lines = append(lines, renderStatusLine("Output", statusInfo, outputDir, r.colorize))
	return lines
}

func liveLine(percent int, status string) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * progressBarWidth / 100
	bar := strings.Repeat("#", filled) + strings.Repeat(".", progressBarWidth-filled)
	return fmt.Sprintf("[%s] %3d%%  %s", bar, percent, status)
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
