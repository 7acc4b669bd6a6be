package logging

import "strings"

// ProgressSampler keeps batch progress logs readable on large batches. It
// admits an update when the phase changes or when the integer percent moves
// into a new bucket. Completion (100) is always admitted once.
type ProgressSampler struct {
	step      int
	lastPhase string
	lastStep  int
}

// NewProgressSampler returns a sampler with the given bucket width in percent.
// Widths outside 1..100 fall back to 10.
func NewProgressSampler(step int) *ProgressSampler {
	if step <= 0 || step > 100 {
		step = 10
	}
	return &ProgressSampler{step: step, lastStep: -1}
}

// Admit reports whether an update at percent within phase should be logged.
func (s *ProgressSampler) Admit(percent int, phase string) bool {
	if s == nil {
		return true
	}
	phase = strings.TrimSpace(phase)
	admit := false
	if phase != "" && phase != s.lastPhase {
		s.lastPhase = phase
		s.lastStep = -1
		admit = true
	}
	if percent < 0 {
		return admit
	}
	if percent > 100 {
		percent = 100
	}
	bucket := percent / s.step
	if percent == 100 {
		bucket = 100/s.step + 1
	}
	if bucket > s.lastStep {
		s.lastStep = bucket
		admit = true
	}
	return admit
}

// Reset forgets the last phase and bucket.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastPhase = ""
	s.lastStep = -1
}
