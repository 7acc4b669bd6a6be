// Package engine defines the boundary between the pipeline and a speech
// recognition backend.
//
// A Loader resolves a model identifier into a ready Model; loading may block for
// a long time while weights are fetched. A Model turns one audio file into an
// ordered sequence of timestamped segments. Concrete backends live under
// internal/services.
package engine

import (
	"context"
	"slices"
	"strings"
)

// Segment is one timestamped span of recognized text.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Loader initializes a recognition model.
type Loader interface {
	Load(ctx context.Context, model string) (Model, error)
}

// Model transcribes a single audio file. Segments are returned in
// chronological order.
type Model interface {
	Transcribe(ctx context.Context, audioPath string) ([]Segment, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, model string) (Model, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, model string) (Model, error) {
	return f(ctx, model)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(ctx context.Context, audioPath string) ([]Segment, error)

// Transcribe calls f.
func (f ModelFunc) Transcribe(ctx context.Context, audioPath string) ([]Segment, error) {
	return f(ctx, audioPath)
}

// DefaultModel is used when no model is configured.
const DefaultModel = "turbo"

// KnownModels lists the model identifiers accepted by the bundled backends.
var KnownModels = []string{
	"tiny", "tiny.en",
	"base", "base.en",
	"small", "small.en",
	"medium", "medium.en",
	"large", "large-v1", "large-v2", "large-v3",
	"large-v3-turbo", "turbo",
}

// IsKnownModel reports whether name is one of KnownModels (case-insensitive).
func IsKnownModel(name string) bool {
	return slices.Contains(KnownModels, strings.ToLower(strings.TrimSpace(name)))
}
