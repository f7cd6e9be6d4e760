// Package trafilatura implements the HTML document parser. Main content
// is isolated with go-trafilatura, falling back to selector-based
// extraction, and converted to Markdown for chunking.
package trafilatura

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"github.com/tverano/docqa"
	"github.com/tverano/docqa/goquery"
	"github.com/tverano/docqa/htmltomarkdown"
	"github.com/tverano/docqa/readability"
)

// Ensure HTMLParser implements docqa.Parser at compile time.
var _ docqa.Parser = (*HTMLParser)(nil)

// HTMLParser extracts readable text from saved HTML files.
type HTMLParser struct {
	readability *readability.Extractor
	selectors   *goquery.Extractor
	converter   *htmltomarkdown.Converter
}

// NewHTMLParser creates a new HTMLParser.
func NewHTMLParser() *HTMLParser {
	return &HTMLParser{
		readability: readability.NewExtractor(),
		selectors:   goquery.NewExtractor(),
		converter:   htmltomarkdown.NewConverter(),
	}
}

// Extensions returns the file extensions this parser handles.
func (p *HTMLParser) Extensions() []string {
	return []string{"html", "htm"}
}

// Parse extracts the main content of the HTML file as Markdown, prefixed
// with the page title when one was found.
func (p *HTMLParser) Parse(ctx context.Context, path string, progress docqa.ParseProgressFunc) (string, error) {
	report(progress, docqa.ParseProgress{Stage: docqa.ParseStageStart, Message: "Reading file", Percent: 0})

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", docqa.Errorf(docqa.ENOTFOUND, "file not found: %s", path)
		}
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	report(progress, docqa.ParseProgress{Stage: docqa.ParseStageExtracting, Message: "Extracting content", Percent: 30})

	title, contentHTML, err := p.extract(string(data))
	if err != nil {
		return "", err
	}

	markdown, err := p.converter.Convert(contentHTML)
	if err != nil {
		return "", err
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return "", docqa.Errorf(docqa.EINVALID, "no readable content found in %s", path)
	}

	if title != "" && !strings.HasPrefix(markdown, "# ") {
		markdown = "# " + title + "\n\n" + markdown
	}

	report(progress, docqa.ParseProgress{Stage: docqa.ParseStageComplete, Message: "Done", Percent: 100})
	return markdown, nil
}

// extract isolates the main content. Trafilatura handles most pages;
// Readability covers article-style pages it misses, and the selector
// extractor is the last resort.
func (p *HTMLParser) extract(rawHTML string) (title, contentHTML string, err error) {
	result, err := trafilatura.Extract(strings.NewReader(rawHTML), trafilatura.Options{
		EnableFallback: true,
	})
	if err == nil && result.ContentNode != nil {
		rendered, rerr := renderNode(result.ContentNode)
		if rerr == nil && strings.TrimSpace(rendered) != "" {
			return result.Metadata.Title, rendered, nil
		}
	}

	if title, contentHTML, err = p.readability.Extract(rawHTML); err == nil {
		return title, contentHTML, nil
	}

	return p.selectors.Extract(rawHTML)
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// report invokes the progress callback if one was provided.
func report(progress docqa.ParseProgressFunc, p docqa.ParseProgress) {
	if progress != nil {
		progress(p)
	}
}
