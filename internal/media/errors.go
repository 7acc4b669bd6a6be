package media

import (
	"fmt"

	"whisperwiz/internal/services"
)

// TranscodeError reports a failed video to audio conversion. Output holds the
// transcoder's combined diagnostics.
type TranscodeError struct {
	Source string
	Output string
	Err    error
}

func (e *TranscodeError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: transcode %s", services.ErrTranscode, e.Source)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

// Unwrap exposes both the transcode marker and the underlying cause.
func (e *TranscodeError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return []error{services.ErrTranscode}
	}
	return []error{services.ErrTranscode, e.Err}
}
