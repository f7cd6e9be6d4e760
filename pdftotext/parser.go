// Package pdftotext implements the PDF parser by shelling out to the
// poppler pdftotext utility.
package pdftotext

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/tverano/docqa"
)

// Ensure Parser implements docqa.Parser at compile time.
var _ docqa.Parser = (*Parser)(nil)

// Parser extracts text from PDF files via the pdftotext binary.
type Parser struct {
	// binary is the executable name, overridable for tests.
	binary string
}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{binary: "pdftotext"}
}

// NewParserWithBinary creates a Parser that runs the given executable.
func NewParserWithBinary(binary string) *Parser {
	return &Parser{binary: binary}
}

// Extensions returns the file extensions this parser handles.
func (p *Parser) Extensions() []string {
	return []string{"pdf"}
}

// Parse runs pdftotext over the file. Scanned PDFs with no text layer
// yield empty output and are rejected; OCR is not attempted here.
func (p *Parser) Parse(ctx context.Context, path string, progress docqa.ParseProgressFunc) (string, error) {
	report(progress, docqa.ParseProgress{Stage: docqa.ParseStageStart, Message: "Opening PDF", Percent: 0})

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", docqa.Errorf(docqa.ENOTFOUND, "file not found: %s", path)
		}
		return "", err
	}

	if _, err := exec.LookPath(p.binary); err != nil {
		return "", docqa.Errorf(docqa.EUNAVAILABLE, "pdftotext is not installed; install poppler-utils to ingest PDFs")
	}

	report(progress, docqa.ParseProgress{Stage: docqa.ParseStageExtracting, Message: "Extracting text", Percent: 20})

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.binary, "-layout", "-enc", "UTF-8", path, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", docqa.Errorf(docqa.EINVALID, "failed to extract PDF text: %s", msg)
	}

	report(progress, docqa.ParseProgress{Stage: docqa.ParseStageRecognizing, Message: "Checking text layer", Percent: 80})

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", docqa.Errorf(docqa.EINVALID, "PDF has no extractable text layer: %s", path)
	}

	report(progress, docqa.ParseProgress{Stage: docqa.ParseStageComplete, Message: "Done", Percent: 100})
	return stdout.String(), nil
}

// report invokes the progress callback if one was provided.
func report(progress docqa.ParseProgressFunc, p docqa.ParseProgress) {
	if progress != nil {
		progress(p)
	}
}
