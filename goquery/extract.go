// Package goquery provides a selector-based fallback for HTML content
// extraction, used when the main extractor finds nothing.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tverano/docqa"
)

// containerSelectors are tried in order; the first non-empty match wins.
var containerSelectors = []string{
	"article",
	"main",
	"[role=main]",
	"body",
}

// Extractor pulls the main content container out of raw HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page title and the inner HTML of the best content
// container, with boilerplate elements removed.
func (e *Extractor) Extract(rawHTML string) (title, contentHTML string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", "", err
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, nav, header, footer, aside, noscript").Remove()

	for _, selector := range containerSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		inner, err := sel.Html()
		if err != nil {
			return "", "", err
		}
		if strings.TrimSpace(sel.Text()) == "" {
			continue
		}
		return title, inner, nil
	}

	return "", "", docqa.Errorf(docqa.EINVALID, "no readable content found")
}
