package main_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tverano/docqa"
	main "github.com/tverano/docqa/cmd/docqa"
	"github.com/tverano/docqa/mock"
)

func TestDocsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists documents with ID, name, and chunk count", func(t *testing.T) {
		t.Parallel()

		documents := &mock.DocumentService{
			FindDocumentsFn: func(_ context.Context, _ docqa.DocumentFilter) ([]*docqa.Document, error) {
				return []*docqa.Document{
					{
						ID:         1,
						FileName:   "handbook.pdf",
						FileType:   "pdf",
						SizeBytes:  2048,
						ChunkCount: 12,
						UploadedAt: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
					},
					{
						ID:         2,
						FileName:   "notes.md",
						FileType:   "md",
						SizeBytes:  512,
						ChunkCount: 3,
						UploadedAt: time.Date(2026, 3, 16, 11, 0, 0, 0, time.UTC),
					},
				}, nil
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

		cmd := &main.DocsCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)

		output := stdout.String()
		assert.Contains(t, output, "handbook.pdf")
		assert.Contains(t, output, "notes.md")
		assert.Contains(t, output, "12 chunks")
		assert.Contains(t, output, "3 chunks")
	})

	t.Run("shows helpful message when no documents exist", func(t *testing.T) {
		t.Parallel()

		documents := &mock.DocumentService{
			FindDocumentsFn: func(_ context.Context, _ docqa.DocumentFilter) ([]*docqa.Document, error) {
				return []*docqa.Document{}, nil
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

		cmd := &main.DocsCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No documents")
	})

	t.Run("returns error when FindDocuments fails", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("database connection failed")

		documents := &mock.DocumentService{
			FindDocumentsFn: func(_ context.Context, _ docqa.DocumentFilter) ([]*docqa.Document, error) {
				return nil, dbErr
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

		cmd := &main.DocsCmd{}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, dbErr, err)
		assert.Contains(t, stderr.String(), "error:")
	})
}
