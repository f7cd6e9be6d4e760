package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tverano/docqa"
	"github.com/tverano/docqa/fs"
	"github.com/tverano/docqa/ingest"
	"github.com/tverano/docqa/memory"
	"github.com/tverano/docqa/mock"
)

// docStore is an in-memory DocumentService backing ingest tests.
type docStore struct {
	mock.DocumentService
	docs   []*docqa.Document
	nextID int64
}

func newDocStore() *docStore {
	s := &docStore{nextID: 1}
	s.CreateDocumentFn = func(ctx context.Context, doc *docqa.Document, chunks []*docqa.Chunk) error {
		doc.ID = s.nextID
		s.nextID++
		doc.ChunkCount = len(chunks)
		for i, chunk := range chunks {
			chunk.ID = s.nextID
			s.nextID++
			chunk.DocumentID = doc.ID
			chunk.Ordinal = i
		}
		cp := *doc
		s.docs = append(s.docs, &cp)
		return nil
	}
	s.FindDocumentsFn = func(ctx context.Context, filter docqa.DocumentFilter) ([]*docqa.Document, error) {
		var out []*docqa.Document
		for _, doc := range s.docs {
			if filter.ContentHash != nil && doc.ContentHash != *filter.ContentHash {
				continue
			}
			out = append(out, doc)
		}
		return out, nil
	}
	s.DeleteDocumentFn = func(ctx context.Context, id int64) error {
		for i, doc := range s.docs {
			if doc.ID == id {
				s.docs = append(s.docs[:i], s.docs[i+1:]...)
				return nil
			}
		}
		return docqa.Errorf(docqa.ENOTFOUND, "document not found")
	}
	return s
}

func stubEmbedder() *mock.Embedder {
	return &mock.Embedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{float32(len(text)), 1, 0}, nil
		},
		DimensionFn: func() int { return 3 },
	}
}

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestor_Ingest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	parsers := []docqa.Parser{fs.NewTextParser()}

	t.Run("stores and indexes a document", func(t *testing.T) {
		t.Parallel()

		store := newDocStore()
		index := memory.NewVectorIndex()
		ing := ingest.NewIngestor(store, stubEmbedder(), index, parsers)

		path := writeDoc(t, "notes.txt", "some interesting document text")
		doc, err := ing.Ingest(ctx, path, nil)
		require.NoError(t, err)

		assert.Equal(t, "notes.txt", doc.FileName)
		assert.Equal(t, "txt", doc.FileType)
		assert.Equal(t, 1, doc.ChunkCount)
		assert.NotEmpty(t, doc.ContentHash)
		assert.Equal(t, 1, index.Len())
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()

		ing := ingest.NewIngestor(newDocStore(), stubEmbedder(), memory.NewVectorIndex(), parsers)
		_, err := ing.Ingest(ctx, "presentation.pptx", nil)
		assert.Equal(t, docqa.EUNSUPPORTED, docqa.ErrorCode(err))
	})

	t.Run("duplicate content conflicts", func(t *testing.T) {
		t.Parallel()

		store := newDocStore()
		ing := ingest.NewIngestor(store, stubEmbedder(), memory.NewVectorIndex(), parsers)

		first := writeDoc(t, "a.txt", "identical content")
		_, err := ing.Ingest(ctx, first, nil)
		require.NoError(t, err)

		// Same bytes under a different name.
		second := writeDoc(t, "b.txt", "identical content")
		_, err = ing.Ingest(ctx, second, nil)
		assert.Equal(t, docqa.ECONFLICT, docqa.ErrorCode(err))
		assert.Len(t, store.docs, 1)
	})

	t.Run("prime detects duplicates across restarts", func(t *testing.T) {
		t.Parallel()

		store := newDocStore()
		ing := ingest.NewIngestor(store, stubEmbedder(), memory.NewVectorIndex(), parsers)

		path := writeDoc(t, "a.txt", "persisted earlier")
		_, err := ing.Ingest(ctx, path, nil)
		require.NoError(t, err)

		// A fresh ingestor over the same store, as after a restart.
		restarted := ingest.NewIngestor(store, stubEmbedder(), memory.NewVectorIndex(), parsers)
		require.NoError(t, restarted.Prime(ctx))

		dup := writeDoc(t, "b.txt", "persisted earlier")
		_, err = restarted.Ingest(ctx, dup, nil)
		assert.Equal(t, docqa.ECONFLICT, docqa.ErrorCode(err))
	})

	t.Run("embedding failure persists nothing", func(t *testing.T) {
		t.Parallel()

		store := newDocStore()
		index := memory.NewVectorIndex()
		failing := &mock.Embedder{
			EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
				return nil, docqa.Errorf(docqa.EUNAVAILABLE, "embedding server is not reachable")
			},
			DimensionFn: func() int { return 3 },
		}
		ing := ingest.NewIngestor(store, failing, index, parsers)

		_, err := ing.Ingest(ctx, writeDoc(t, "doc.txt", "text"), nil)
		assert.Equal(t, docqa.EUNAVAILABLE, docqa.ErrorCode(err))
		assert.Empty(t, store.docs)
		assert.Zero(t, index.Len())
	})

	t.Run("empty document invalid", func(t *testing.T) {
		t.Parallel()

		ing := ingest.NewIngestor(newDocStore(), stubEmbedder(), memory.NewVectorIndex(), parsers)
		_, err := ing.Ingest(ctx, writeDoc(t, "empty.txt", "   \n"), nil)
		assert.Equal(t, docqa.EINVALID, docqa.ErrorCode(err))
	})
}

func TestIngestor_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newDocStore()
	index := memory.NewVectorIndex()
	ing := ingest.NewIngestor(store, stubEmbedder(), index, []docqa.Parser{fs.NewTextParser()})

	path := writeDoc(t, "doc.txt", "content that will be indexed")
	doc, err := ing.Ingest(ctx, path, nil)
	require.NoError(t, err)
	require.Equal(t, 1, index.Len())

	chunkSvc := &mock.ChunkService{
		FindChunksFn: func(ctx context.Context, filter docqa.ChunkFilter) ([]*docqa.Chunk, error) {
			return []*docqa.Chunk{{ID: doc.ID + 1, DocumentID: doc.ID}}, nil
		},
	}

	require.NoError(t, ing.Delete(ctx, chunkSvc, doc.ID))
	assert.Empty(t, store.docs)
	assert.Zero(t, index.Len())

	err = ing.Delete(ctx, chunkSvc, doc.ID)
	assert.Equal(t, docqa.ENOTFOUND, docqa.ErrorCode(err))
}
