package vision

import (
	"context"
	"encoding/json"
)

// Label is a single image label with the service's confidence score in [0,1].
type Label struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// Object is a localized object detected in the image.
type Object struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Text is a fragment of text detected in the image. By service convention the
// first element of Analysis.Texts holds the full concatenated text block and
// the remaining elements are individual fragments.
type Text struct {
	Content string `json:"content"`
}

// Analysis is the normalized result of a vision service call. Every slice
// field is non-nil once normalization completes; downstream code only ever
// checks for emptiness, never absence.
type Analysis struct {
	Labels     []Label           `json:"labels"`
	Objects    []Object          `json:"objects"`
	Texts      []Text            `json:"texts"`
	Faces      []json.RawMessage `json:"faces"`
	Landmarks  []json.RawMessage `json:"landmarks"`
	SafeSearch json.RawMessage   `json:"safeSearch,omitempty"`
}

// Analyzer can analyze an encoded image and return a normalized Analysis.
type Analyzer interface {
	// Annotate takes a data-URI or bare base64 encoded image and returns the
	// normalized analysis.
	Annotate(ctx context.Context, imageData string) (*Analysis, error)
}
