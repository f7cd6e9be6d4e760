package docqa

import (
	"context"
	"time"
)

// Document represents an ingested user document.
type Document struct {
	ID          int64     `json:"id"`
	FileName    string    `json:"fileName"`
	FilePath    string    `json:"filePath"`
	FileType    string    `json:"fileType"`
	SizeBytes   int64     `json:"sizeBytes"`
	ContentHash string    `json:"contentHash"`
	ChunkCount  int       `json:"chunkCount"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.FileName == "" {
		return Errorf(EINVALID, "document file name required")
	}
	if d.FileType == "" {
		return Errorf(EINVALID, "document file type required")
	}
	return nil
}

// DocumentService represents a service for managing documents.
type DocumentService interface {
	// CreateDocument creates a document together with all of its chunks in
	// a single transaction. Either the document and every chunk are stored,
	// or nothing is. ChunkCount is set from len(chunks).
	CreateDocument(ctx context.Context, doc *Document, chunks []*Chunk) error

	// FindDocumentByID retrieves a document by ID.
	// Returns ENOTFOUND if document does not exist.
	FindDocumentByID(ctx context.Context, id int64) (*Document, error)

	// FindDocuments retrieves documents matching the filter.
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)

	// DeleteDocument permanently removes a document and all of its chunks.
	// Returns ENOTFOUND if document does not exist.
	DeleteDocument(ctx context.Context, id int64) error
}

// DocumentFilter represents a filter for FindDocuments.
type DocumentFilter struct {
	ID          *int64  `json:"id"`
	ContentHash *string `json:"contentHash"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Chunk is a bounded slice of document text with its own embedding,
// the unit of retrieval. Chunks are created during ingestion, never
// mutated, and removed when their document is deleted.
type Chunk struct {
	ID         int64     `json:"id"`
	DocumentID int64     `json:"documentId"`
	Ordinal    int       `json:"ordinal"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding,omitempty"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.Text == "" {
		return Errorf(EINVALID, "chunk text required")
	}
	if len(c.Embedding) == 0 {
		return Errorf(EINVALID, "chunk embedding required")
	}
	return nil
}

// ChunkService represents a service for reading chunks.
// Chunk creation happens through DocumentService.CreateDocument so that a
// document and its chunks are always stored atomically.
type ChunkService interface {
	// FindChunkByID retrieves a chunk by ID.
	// Returns ENOTFOUND if chunk does not exist.
	FindChunkByID(ctx context.Context, id int64) (*Chunk, error)

	// FindChunks retrieves chunks matching the filter, ordered by
	// (document_id, ordinal).
	FindChunks(ctx context.Context, filter ChunkFilter) ([]*Chunk, error)

	// ForEachEmbedding streams every stored (chunk ID, embedding) pair in
	// insertion order. Used to rebuild the vector index at startup.
	ForEachEmbedding(ctx context.Context, fn func(chunkID int64, embedding []float32) error) error
}

// ChunkFilter represents a filter for FindChunks.
type ChunkFilter struct {
	ID         *int64 `json:"id"`
	DocumentID *int64 `json:"documentId"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
