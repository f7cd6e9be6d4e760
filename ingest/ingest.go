// Package ingest turns document files into persisted, indexed chunks.
package ingest

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tverano/docqa"
	"github.com/tverano/docqa/bloom"
)

// Defaults for the dedup prefilter and embedding concurrency.
const (
	defaultExpectedDocs     = 100_000
	defaultFalsePositive    = 0.01
	defaultEmbedConcurrency = 4
)

// Ingestor runs the ingestion pipeline: parse, dedup, chunk, embed,
// persist, index.
type Ingestor struct {
	docs     docqa.DocumentService
	embedder docqa.Embedder
	index    docqa.VectorIndex
	parsers  map[string]docqa.Parser

	// seen prefilters content hashes so the common case (a new document)
	// skips the storage lookup. A positive is confirmed against storage.
	seen *bloom.Filter

	concurrency int
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithEmbedConcurrency bounds how many chunks embed in parallel.
func WithEmbedConcurrency(n int) Option {
	return func(ing *Ingestor) {
		if n > 0 {
			ing.concurrency = n
		}
	}
}

// NewIngestor creates an Ingestor routing files to parsers by extension.
func NewIngestor(docs docqa.DocumentService, embedder docqa.Embedder, index docqa.VectorIndex, parsers []docqa.Parser, opts ...Option) *Ingestor {
	byExt := make(map[string]docqa.Parser)
	for _, parser := range parsers {
		for _, ext := range parser.Extensions() {
			byExt[strings.ToLower(ext)] = parser
		}
	}

	ing := &Ingestor{
		docs:        docs,
		embedder:    embedder,
		index:       index,
		parsers:     byExt,
		seen:        bloom.NewFilter(defaultExpectedDocs, defaultFalsePositive),
		concurrency: defaultEmbedConcurrency,
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Prime seeds the dedup prefilter from already stored documents. Call
// once at startup.
func (ing *Ingestor) Prime(ctx context.Context) error {
	docs, err := ing.docs.FindDocuments(ctx, docqa.DocumentFilter{})
	if err != nil {
		return err
	}
	for _, doc := range docs {
		ing.seen.Add(doc.ContentHash)
	}
	return nil
}

// SupportedExtensions returns the extensions with a registered parser.
func (ing *Ingestor) SupportedExtensions() []string {
	exts := make([]string, 0, len(ing.parsers))
	for ext := range ing.parsers {
		exts = append(exts, ext)
	}
	return exts
}

// Ingest processes the file at path and returns the stored document.
// Duplicate content (by hash) fails with ECONFLICT, unsupported file
// types with EUNSUPPORTED. On any failure nothing is persisted and the
// index is unchanged.
func (ing *Ingestor) Ingest(ctx context.Context, path string, progress docqa.ParseProgressFunc) (*docqa.Document, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	parser, ok := ing.parsers[ext]
	if !ok {
		return nil, docqa.Errorf(docqa.EUNSUPPORTED, "unsupported file type: %q", ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, docqa.Errorf(docqa.ENOTFOUND, "file not found: %s", path)
		}
		return nil, err
	}

	text, err := parser.Parse(ctx, path, progress)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, docqa.Errorf(docqa.EINVALID, "document contains no text: %s", path)
	}

	hash := hashContent(text)
	if err := ing.checkDuplicate(ctx, hash); err != nil {
		return nil, err
	}

	texts := docqa.SplitChunks(text)
	chunks, err := ing.embedChunks(ctx, texts)
	if err != nil {
		return nil, err
	}

	doc := &docqa.Document{
		FileName:    filepath.Base(path),
		FilePath:    path,
		FileType:    ext,
		SizeBytes:   info.Size(),
		ContentHash: hash,
	}
	if err := ing.docs.CreateDocument(ctx, doc, chunks); err != nil {
		return nil, err
	}

	// Persisted first, indexed second: a crash in between is repaired by
	// the index rebuild at next startup.
	for _, chunk := range chunks {
		if err := ing.index.Insert(chunk.ID, chunk.Embedding); err != nil {
			ing.rollback(ctx, doc, chunks)
			return nil, err
		}
	}

	ing.seen.Add(hash)
	return doc, nil
}

// Delete removes a document from storage and its chunks from the index.
func (ing *Ingestor) Delete(ctx context.Context, chunks docqa.ChunkService, documentID int64) error {
	stored, err := chunks.FindChunks(ctx, docqa.ChunkFilter{DocumentID: &documentID})
	if err != nil {
		return err
	}
	if err := ing.docs.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	for _, chunk := range stored {
		ing.index.Remove(chunk.ID)
	}
	return nil
}

// checkDuplicate fails with ECONFLICT when the hash is already stored.
// The bloom filter short-circuits the storage lookup for new content.
func (ing *Ingestor) checkDuplicate(ctx context.Context, hash string) error {
	if !ing.seen.Test(hash) {
		return nil
	}
	existing, err := ing.docs.FindDocuments(ctx, docqa.DocumentFilter{ContentHash: &hash})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return docqa.Errorf(docqa.ECONFLICT, "document already ingested as %q", existing[0].FileName)
	}
	return nil
}

// embedChunks embeds chunk texts concurrently, preserving order.
func (ing *Ingestor) embedChunks(ctx context.Context, texts []string) ([]*docqa.Chunk, error) {
	chunks := make([]*docqa.Chunk, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ing.concurrency)

	for i, text := range texts {
		g.Go(func() error {
			embedding, err := ing.embedder.Embed(ctx, text)
			if err != nil {
				return err
			}
			chunks[i] = &docqa.Chunk{Ordinal: i, Text: text, Embedding: embedding}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// rollback undoes a partially indexed ingestion.
func (ing *Ingestor) rollback(ctx context.Context, doc *docqa.Document, chunks []*docqa.Chunk) {
	for _, chunk := range chunks {
		ing.index.Remove(chunk.ID)
	}
	ing.docs.DeleteDocument(ctx, doc.ID)
}

// hashContent computes the xxHash of content as a hex string.
func hashContent(content string) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64String(content))
	return hex.EncodeToString(b[:])
}
