package mock

import (
	"context"

	"github.com/tverano/docqa"
)

var _ docqa.Parser = (*Parser)(nil)

// Parser is a mock implementation of docqa.Parser.
type Parser struct {
	ExtensionsFn func() []string
	ParseFn      func(ctx context.Context, path string, progress docqa.ParseProgressFunc) (string, error)
}

func (p *Parser) Extensions() []string { return p.ExtensionsFn() }

func (p *Parser) Parse(ctx context.Context, path string, progress docqa.ParseProgressFunc) (string, error) {
	return p.ParseFn(ctx, path, progress)
}
