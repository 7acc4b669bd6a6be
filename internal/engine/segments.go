package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

type segmentPayload struct {
	Segments []Segment `json:"segments"`
}

// DecodeSegments parses the `{"segments":[{"start","end","text"}]}` document
// written by whisper-style CLIs. Extra fields are ignored and the document's
// order is kept.
func DecodeSegments(data []byte) ([]Segment, error) {
	var payload segmentPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse segments json: %w", err)
	}
	if payload.Segments == nil {
		return []Segment{}, nil
	}
	return payload.Segments, nil
}

// LoadSegments reads and decodes a segment document from path.
func LoadSegments(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeSegments(data)
}
