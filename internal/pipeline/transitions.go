package pipeline

import "fmt"

// isValidTransition enforces the allowed run state machine edges.
func isValidTransition(from, to Phase) bool {
	switch from {
	case PhaseIdle:
		return to == PhaseLoadingModel || to == PhaseFailed
	case PhaseLoadingModel:
		return to == PhaseDiscovering || to == PhaseFailed
	case PhaseDiscovering:
		return to == PhaseProcessing || to == PhaseFinalizing || to == PhaseFailed
	case PhaseProcessing:
		return to == PhaseFinalizing || to == PhaseFailed
	case PhaseFinalizing:
		return to == PhaseComplete || to == PhaseFailed
	default:
		return false
	}
}

// TransitionError reports a phase change the state machine does not allow.
type TransitionError struct {
	From Phase
	To   Phase
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.To)
}
