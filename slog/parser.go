// Package slog provides logging decorators for the core service
// interfaces, built on the standard structured logger.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/tverano/docqa"
)

// Ensure LoggingParser implements docqa.Parser.
var _ docqa.Parser = (*LoggingParser)(nil)

// LoggingParser wraps a Parser with per-file logging.
type LoggingParser struct {
	next   docqa.Parser
	logger *slog.Logger
}

// NewLoggingParser creates a new LoggingParser.
func NewLoggingParser(next docqa.Parser, logger *slog.Logger) *LoggingParser {
	return &LoggingParser{next: next, logger: logger}
}

// Extensions delegates to the wrapped parser.
func (p *LoggingParser) Extensions() []string {
	return p.next.Extensions()
}

// Parse delegates to the wrapped parser and logs the operation.
func (p *LoggingParser) Parse(ctx context.Context, path string, progress docqa.ParseProgressFunc) (text string, err error) {
	defer func(begin time.Time) {
		p.logger.Info("document parse",
			"path", path,
			"chars", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Parse(ctx, path, progress)
}
