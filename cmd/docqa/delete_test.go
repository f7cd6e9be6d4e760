package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tverano/docqa"
	main "github.com/tverano/docqa/cmd/docqa"
	"github.com/tverano/docqa/ingest"
	"github.com/tverano/docqa/mock"
)

func TestDeleteCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("deletes document and removes chunks from index", func(t *testing.T) {
		t.Parallel()

		var deletedID int64
		documents := &mock.DocumentService{
			FindDocumentByIDFn: func(_ context.Context, id int64) (*docqa.Document, error) {
				return &docqa.Document{ID: id, FileName: "handbook.pdf", ChunkCount: 2}, nil
			},
			FindDocumentsFn: func(_ context.Context, _ docqa.DocumentFilter) ([]*docqa.Document, error) {
				return nil, nil
			},
			DeleteDocumentFn: func(_ context.Context, id int64) error {
				deletedID = id
				return nil
			},
		}
		chunks := &mock.ChunkService{
			FindChunksFn: func(_ context.Context, filter docqa.ChunkFilter) ([]*docqa.Chunk, error) {
				return []*docqa.Chunk{{ID: 10}, {ID: 11}}, nil
			},
		}

		var removed []int64
		index := &mock.VectorIndex{
			RemoveFn: func(chunkID int64) { removed = append(removed, chunkID) },
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    stderr,
			Documents: documents,
			Chunks:    chunks,
			Ingestor:  ingest.NewIngestor(documents, nil, index, nil),
		}

		cmd := &main.DeleteCmd{ID: 7, Force: true}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, int64(7), deletedID)
		assert.Equal(t, []int64{10, 11}, removed)
		assert.Contains(t, stdout.String(), "handbook.pdf")
	})

	t.Run("requires --force", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
		}

		cmd := &main.DeleteCmd{ID: 7}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, docqa.EINVALID, docqa.ErrorCode(err))
		assert.Contains(t, stderr.String(), "--force")
	})

	t.Run("unknown document", func(t *testing.T) {
		t.Parallel()

		documents := &mock.DocumentService{
			FindDocumentByIDFn: func(_ context.Context, id int64) (*docqa.Document, error) {
				return nil, docqa.Errorf(docqa.ENOTFOUND, "document not found")
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    stderr,
			Documents: documents,
		}

		cmd := &main.DeleteCmd{ID: 99, Force: true}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, docqa.ENOTFOUND, docqa.ErrorCode(err))
		assert.Contains(t, stderr.String(), "docqa docs")
	})
}
