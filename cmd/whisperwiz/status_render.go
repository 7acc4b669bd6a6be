package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"whisperwiz/internal/deps"
	"whisperwiz/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	// ansiClearLine returns the cursor to column 0 and erases the line.
	ansiClearLine = "\r\x1b[2K"

	statusLabelWidth = 20
	statusIndent     = "  "
)

var statusStyles = [...]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

func paint(s, color string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

// renderStatusLine formats "  Label:   [KIND] message" with the label padded
// to statusLabelWidth.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style := statusStyles[statusInfo]
	if int(kind) >= 0 && int(kind) < len(statusStyles) {
		style = statusStyles[kind]
	}
	tag := "[" + style.label + "]"
	if message != "" {
		tag += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", tag)
	return paint(line, style.color, colorize)
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	return []string{
		paint(heading, ansiBlue, colorize),
		paint(strings.Repeat("-", len(heading)), ansiBlue, colorize),
	}
}

// dependencyLines renders one line per binary and, when required binaries
// are absent, a closing line naming them.
func dependencyLines(statuses []deps.Status, colorize bool) []string {
	var lines, missing []string
	for _, dep := range statuses {
		kind, message := statusOK, "Ready"
		switch {
		case dep.Available:
			if dep.Resolved != "" {
				message = "Ready (" + dep.Resolved + ")"
			}
		case dep.Optional:
			kind, message = statusWarn, orDefault(dep.Detail, "not available")
		default:
			kind, message = statusError, orDefault(dep.Detail, "not available")
			missing = append(missing, dep.Name)
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, message, colorize))
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, strings.Join(missing, ", "), colorize))
	}
	return lines
}

func preflightLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, len(results))
	for i, r := range results {
		kind := statusError
		if r.Passed {
			kind = statusOK
		}
		lines[i] = renderStatusLine(r.Name, kind, r.Detail, colorize)
	}
	return lines
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

// shouldColorize reports whether w is an interactive terminal.
func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
