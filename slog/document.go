package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/tverano/docqa"
)

// Ensure LoggingDocumentService implements docqa.DocumentService.
var _ docqa.DocumentService = (*LoggingDocumentService)(nil)

// LoggingDocumentService wraps a DocumentService, logging the mutating
// operations. Reads delegate silently.
type LoggingDocumentService struct {
	next   docqa.DocumentService
	logger *slog.Logger
}

// NewLoggingDocumentService creates a new LoggingDocumentService.
func NewLoggingDocumentService(next docqa.DocumentService, logger *slog.Logger) *LoggingDocumentService {
	return &LoggingDocumentService{next: next, logger: logger}
}

// CreateDocument delegates to the wrapped service and logs the operation.
func (s *LoggingDocumentService) CreateDocument(ctx context.Context, doc *docqa.Document, chunks []*docqa.Chunk) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("document create",
			"fileName", doc.FileName,
			"chunks", len(chunks),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateDocument(ctx, doc, chunks)
}

// FindDocumentByID delegates to the wrapped service.
func (s *LoggingDocumentService) FindDocumentByID(ctx context.Context, id int64) (*docqa.Document, error) {
	return s.next.FindDocumentByID(ctx, id)
}

// FindDocuments delegates to the wrapped service.
func (s *LoggingDocumentService) FindDocuments(ctx context.Context, filter docqa.DocumentFilter) ([]*docqa.Document, error) {
	return s.next.FindDocuments(ctx, filter)
}

// DeleteDocument delegates to the wrapped service and logs the operation.
func (s *LoggingDocumentService) DeleteDocument(ctx context.Context, id int64) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("document delete",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteDocument(ctx, id)
}
