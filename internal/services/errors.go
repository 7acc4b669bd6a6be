package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEngineLoad = errors.New("engine load failure")
	ErrTranscode  = errors.New("transcode failure")
	ErrTranscribe = errors.New("transcription failure")
	ErrWrite      = errors.New("write failure")
	ErrDiscovery  = errors.New("discovery failure")
	ErrCancelled  = errors.New("run cancelled")
	ErrTimeout    = errors.New("run timed out")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTranscribe
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Describe renders err as the single message handed to the controlling context.
// Context cancellation and deadline errors are reported as a cancelled or
// timed-out run rather than as the failure of whichever call was in flight.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	detail := strings.TrimSpace(err.Error())
	switch {
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return "Transcription cancelled: " + detail
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "Transcription timed out: " + detail
	case errors.Is(err, ErrEngineLoad):
		return "Error loading model: " + detail
	case errors.Is(err, ErrWrite):
		return "Error writing to output folder: " + detail
	case errors.Is(err, ErrDiscovery):
		return "Error reading input folder: " + detail
	default:
		return "Error during transcription: " + detail
	}
}

// Kind returns a short stable label for the failure class, used in history
// records and structured logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrEngineLoad):
		return "engine_load"
	case errors.Is(err, ErrTranscode):
		return "transcode"
	case errors.Is(err, ErrWrite):
		return "write"
	case errors.Is(err, ErrDiscovery):
		return "discovery"
	default:
		return "transcribe"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
