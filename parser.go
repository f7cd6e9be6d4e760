package docqa

import "context"

// Parse progress stages. Plain text parsers typically emit only start and
// complete; OCR-backed parsers emit the full sequence.
const (
	ParseStageStart       = "start"
	ParseStageExtracting  = "extracting"
	ParseStageRecognizing = "recognizing"
	ParseStageComplete    = "complete"
)

// ParseProgress reports document parsing progress. Percent is in [0,100]
// and carries enough state for an observer to render progress without
// polling.
type ParseProgress struct {
	Stage   string  `json:"stage"`
	Message string  `json:"message"`
	Percent float64 `json:"percent"`
}

// ParseProgressFunc is a callback for reporting parse progress.
// A nil callback is always allowed.
type ParseProgressFunc func(ParseProgress)

// Parser extracts plain text from a document file.
type Parser interface {
	// Extensions returns the lowercase file extensions (without dot) this
	// parser handles.
	Extensions() []string

	// Parse extracts the text content of the file at path.
	Parse(ctx context.Context, path string, progress ParseProgressFunc) (string, error)
}
