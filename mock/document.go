package mock

import (
	"context"

	"github.com/tverano/docqa"
)

var _ docqa.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of docqa.DocumentService.
type DocumentService struct {
	CreateDocumentFn   func(ctx context.Context, doc *docqa.Document, chunks []*docqa.Chunk) error
	FindDocumentByIDFn func(ctx context.Context, id int64) (*docqa.Document, error)
	FindDocumentsFn    func(ctx context.Context, filter docqa.DocumentFilter) ([]*docqa.Document, error)
	DeleteDocumentFn   func(ctx context.Context, id int64) error
}

func (s *DocumentService) CreateDocument(ctx context.Context, doc *docqa.Document, chunks []*docqa.Chunk) error {
	return s.CreateDocumentFn(ctx, doc, chunks)
}

func (s *DocumentService) FindDocumentByID(ctx context.Context, id int64) (*docqa.Document, error) {
	return s.FindDocumentByIDFn(ctx, id)
}

func (s *DocumentService) FindDocuments(ctx context.Context, filter docqa.DocumentFilter) ([]*docqa.Document, error) {
	return s.FindDocumentsFn(ctx, filter)
}

func (s *DocumentService) DeleteDocument(ctx context.Context, id int64) error {
	return s.DeleteDocumentFn(ctx, id)
}

var _ docqa.ChunkService = (*ChunkService)(nil)

// ChunkService is a mock implementation of docqa.ChunkService.
type ChunkService struct {
	FindChunkByIDFn    func(ctx context.Context, id int64) (*docqa.Chunk, error)
	FindChunksFn       func(ctx context.Context, filter docqa.ChunkFilter) ([]*docqa.Chunk, error)
	ForEachEmbeddingFn func(ctx context.Context, fn func(chunkID int64, embedding []float32) error) error
}

func (s *ChunkService) FindChunkByID(ctx context.Context, id int64) (*docqa.Chunk, error) {
	return s.FindChunkByIDFn(ctx, id)
}

func (s *ChunkService) FindChunks(ctx context.Context, filter docqa.ChunkFilter) ([]*docqa.Chunk, error) {
	return s.FindChunksFn(ctx, filter)
}

func (s *ChunkService) ForEachEmbedding(ctx context.Context, fn func(chunkID int64, embedding []float32) error) error {
	return s.ForEachEmbeddingFn(ctx, fn)
}
