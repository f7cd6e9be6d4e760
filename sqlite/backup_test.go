package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tverano/docqa"
	"github.com/tverano/docqa/sqlite"
)

func TestDB_Backup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dir := t.TempDir()
	db := sqlite.NewDB(filepath.Join(dir, "app.db"))
	require.NoError(t, db.Open())
	defer db.Close()

	docs := sqlite.NewDocumentService(db, nil)
	doc := testDocument()
	require.NoError(t, docs.CreateDocument(ctx, doc, testChunks(2)))

	archivePath, err := db.Backup(ctx, filepath.Join(dir, "backups"))
	require.NoError(t, err)
	assert.FileExists(t, archivePath)

	t.Run("restore round-trips data", func(t *testing.T) {
		restoredPath := filepath.Join(dir, "restored.db")
		manifest, err := sqlite.Restore(archivePath, restoredPath)
		require.NoError(t, err)
		_, err = uuid.Parse(manifest.ID)
		require.NoError(t, err)

		restored := sqlite.NewDB(restoredPath)
		require.NoError(t, restored.Open())
		defer restored.Close()

		found, err := sqlite.NewDocumentService(restored, nil).FindDocumentByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "notes.txt", found.FileName)

		chunks, err := sqlite.NewChunkService(restored, nil).FindChunks(ctx, docqa.ChunkFilter{DocumentID: &doc.ID})
		require.NoError(t, err)
		assert.Len(t, chunks, 2)
	})

	t.Run("restore rejects a non-archive", func(t *testing.T) {
		_, err := sqlite.Restore(db.Path(), filepath.Join(dir, "bad.db"))
		assert.Equal(t, docqa.EINVALID, docqa.ErrorCode(err))
	})
}

func TestDB_Backup_InMemory(t *testing.T) {
	t.Parallel()

	db := MustOpenDB(t)
	_, err := db.Backup(context.Background(), t.TempDir())
	assert.Equal(t, docqa.EUNSUPPORTED, docqa.ErrorCode(err))
}
