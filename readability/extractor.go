// Package readability provides a Readability-based fallback for HTML
// content extraction.
package readability

import (
	"strings"

	"github.com/go-shiori/go-readability"

	"github.com/tverano/docqa"
)

// Extractor wraps go-readability to isolate the main content of a page.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page title and the article content HTML.
func (e *Extractor) Extract(rawHTML string) (title, contentHTML string, err error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", "", docqa.Errorf(docqa.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return "", "", docqa.Errorf(docqa.EINVALID, "no readable content found")
	}

	return article.Title, article.Content, nil
}
