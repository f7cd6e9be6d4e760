// Package fs provides filesystem-backed implementations: the plain text
// parser and the model cache.
package fs

import (
	"context"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/tverano/docqa"
)

// Ensure TextParser implements docqa.Parser at compile time.
var _ docqa.Parser = (*TextParser)(nil)

// TextParser reads plain text and markdown files as-is.
type TextParser struct{}

// NewTextParser creates a new TextParser.
func NewTextParser() *TextParser {
	return &TextParser{}
}

// Extensions returns the file extensions this parser handles.
func (p *TextParser) Extensions() []string {
	return []string{"txt", "md"}
}

// Parse reads the file and normalizes line endings.
func (p *TextParser) Parse(ctx context.Context, path string, progress docqa.ParseProgressFunc) (string, error) {
	report(progress, docqa.ParseProgress{Stage: docqa.ParseStageStart, Message: "Reading file", Percent: 0})

	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", docqa.Errorf(docqa.ENOTFOUND, "file not found: %s", path)
		}
		return "", err
	}
	if !utf8.Valid(data) {
		return "", docqa.Errorf(docqa.EINVALID, "file is not valid UTF-8 text: %s", path)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	report(progress, docqa.ParseProgress{Stage: docqa.ParseStageComplete, Message: "Done", Percent: 100})
	return text, nil
}

// report invokes the progress callback if one was provided.
func report(progress docqa.ParseProgressFunc, p docqa.ParseProgress) {
	if progress != nil {
		progress(p)
	}
}
