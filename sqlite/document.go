package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/tverano/docqa"
)

// Compile-time interface verification.
var _ docqa.DocumentService = (*DocumentService)(nil)

// DocumentService implements docqa.DocumentService using SQLite.
type DocumentService struct {
	db    *DB
	codec codec
}

// NewDocumentService creates a new DocumentService. Chunk text and
// embeddings pass through cipher on the way in and out.
func NewDocumentService(db *DB, cipher docqa.Cipher) *DocumentService {
	return &DocumentService{db: db, codec: codec{cipher: cipher}}
}

// CreateDocument creates a document and all of its chunks in a single
// transaction.
func (s *DocumentService) CreateDocument(ctx context.Context, doc *docqa.Document, chunks []*docqa.Chunk) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	for _, chunk := range chunks {
		if err := chunk.Validate(); err != nil {
			return err
		}
	}

	doc.UploadedAt = time.Now().UTC()
	doc.ChunkCount = len(chunks)

	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO documents (file_name, file_path, file_type, size_bytes, content_hash, chunk_count, uploaded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, doc.FileName, doc.FilePath, doc.FileType, doc.SizeBytes, doc.ContentHash,
			doc.ChunkCount, doc.UploadedAt.Format(time.RFC3339))
		if err != nil {
			return err
		}
		doc.ID, err = result.LastInsertId()
		if err != nil {
			return err
		}

		for i, chunk := range chunks {
			chunk.DocumentID = doc.ID
			chunk.Ordinal = i

			text, encrypted, err := s.codec.seal([]byte(chunk.Text))
			if err != nil {
				return err
			}
			embedding, _, err := s.codec.seal(encodeEmbedding(chunk.Embedding))
			if err != nil {
				return err
			}

			result, err := tx.ExecContext(ctx, `
				INSERT INTO chunks (document_id, ordinal, text, embedding, is_encrypted)
				VALUES (?, ?, ?, ?, ?)
			`, chunk.DocumentID, chunk.Ordinal, text, embedding, encrypted)
			if err != nil {
				return err
			}
			chunk.ID, err = result.LastInsertId()
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// FindDocumentByID retrieves a document by ID.
func (s *DocumentService) FindDocumentByID(ctx context.Context, id int64) (*docqa.Document, error) {
	var doc docqa.Document
	var uploadedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, file_name, file_path, file_type, size_bytes, content_hash, chunk_count, uploaded_at
		FROM documents
		WHERE id = ?
	`, id).Scan(&doc.ID, &doc.FileName, &doc.FilePath, &doc.FileType, &doc.SizeBytes,
		&doc.ContentHash, &doc.ChunkCount, &uploadedAt)

	if err == sql.ErrNoRows {
		return nil, docqa.Errorf(docqa.ENOTFOUND, "document not found")
	}
	if err != nil {
		return nil, err
	}

	doc.UploadedAt, err = parseRFC3339(uploadedAt, "uploaded_at")
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// FindDocuments retrieves documents matching the filter, most recent
// first.
func (s *DocumentService) FindDocuments(ctx context.Context, filter docqa.DocumentFilter) ([]*docqa.Document, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, file_name, file_path, file_type, size_bytes, content_hash, chunk_count, uploaded_at FROM documents WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.ContentHash != nil {
		query.WriteString(" AND content_hash = ?")
		args = append(args, *filter.ContentHash)
	}

	query.WriteString(" ORDER BY uploaded_at DESC, id DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*docqa.Document
	for rows.Next() {
		var doc docqa.Document
		var uploadedAt string

		if err := rows.Scan(&doc.ID, &doc.FileName, &doc.FilePath, &doc.FileType,
			&doc.SizeBytes, &doc.ContentHash, &doc.ChunkCount, &uploadedAt); err != nil {
			return nil, err
		}

		doc.UploadedAt, err = parseRFC3339(uploadedAt, "uploaded_at")
		if err != nil {
			return nil, err
		}

		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}

// DeleteDocument permanently removes a document. Its chunks go with it
// via the foreign key cascade.
func (s *DocumentService) DeleteDocument(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return docqa.Errorf(docqa.ENOTFOUND, "document not found")
	}

	return nil
}

// Compile-time interface verification.
var _ docqa.ChunkService = (*ChunkService)(nil)

// ChunkService implements docqa.ChunkService using SQLite.
type ChunkService struct {
	db    *DB
	codec codec
}

// NewChunkService creates a new ChunkService.
func NewChunkService(db *DB, cipher docqa.Cipher) *ChunkService {
	return &ChunkService{db: db, codec: codec{cipher: cipher}}
}

// FindChunkByID retrieves a chunk by ID.
func (s *ChunkService) FindChunkByID(ctx context.Context, id int64) (*docqa.Chunk, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, ordinal, text, embedding, is_encrypted
		FROM chunks
		WHERE id = ?
	`, id)

	chunk, err := s.scanChunk(row.Scan)
	if err == sql.ErrNoRows {
		return nil, docqa.Errorf(docqa.ENOTFOUND, "chunk not found")
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// FindChunks retrieves chunks matching the filter, ordered by
// (document_id, ordinal).
func (s *ChunkService) FindChunks(ctx context.Context, filter docqa.ChunkFilter) ([]*docqa.Chunk, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, document_id, ordinal, text, embedding, is_encrypted FROM chunks WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.DocumentID != nil {
		query.WriteString(" AND document_id = ?")
		args = append(args, *filter.DocumentID)
	}

	query.WriteString(" ORDER BY document_id ASC, ordinal ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*docqa.Chunk
	for rows.Next() {
		chunk, err := s.scanChunk(rows.Scan)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

// ForEachEmbedding streams every stored (chunk ID, embedding) pair in
// insertion order.
func (s *ChunkService) ForEachEmbedding(ctx context.Context, fn func(chunkID int64, embedding []float32) error) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, embedding, is_encrypted FROM chunks ORDER BY id ASC")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var data []byte
		var encrypted bool
		if err := rows.Scan(&id, &data, &encrypted); err != nil {
			return err
		}

		plain, err := s.codec.open(data, encrypted)
		if err != nil {
			return err
		}
		embedding, err := decodeEmbedding(plain)
		if err != nil {
			return err
		}

		if err := fn(id, embedding); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (s *ChunkService) scanChunk(scan func(dest ...any) error) (*docqa.Chunk, error) {
	var chunk docqa.Chunk
	var text, embedding []byte
	var encrypted bool

	if err := scan(&chunk.ID, &chunk.DocumentID, &chunk.Ordinal, &text, &embedding, &encrypted); err != nil {
		return nil, err
	}

	plainText, err := s.codec.open(text, encrypted)
	if err != nil {
		return nil, err
	}
	chunk.Text = string(plainText)

	plainEmbedding, err := s.codec.open(embedding, encrypted)
	if err != nil {
		return nil, err
	}
	chunk.Embedding, err = decodeEmbedding(plainEmbedding)
	if err != nil {
		return nil, err
	}

	return &chunk, nil
}
