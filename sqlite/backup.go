package sqlite

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/tverano/docqa"
)

// Backup archive layout.
const (
	manifestName = "manifest.json"
	databaseName = "database.db"
)

// BackupManifest identifies a backup archive.
type BackupManifest struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	SizeBytes int64     `json:"sizeBytes"`
}

// Backup writes a zip archive into dir containing a compacted snapshot
// of the database plus a manifest, and returns the archive path. The
// snapshot is taken with VACUUM INTO so open connections are unaffected.
func (db *DB) Backup(ctx context.Context, dir string) (string, error) {
	if db.path == ":memory:" {
		return "", docqa.Errorf(docqa.EUNSUPPORTED, "cannot back up an in-memory database")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	manifest := BackupManifest{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	}

	snapshot := filepath.Join(dir, manifest.ID+".snapshot")
	if err := db.Vacuum(ctx, snapshot); err != nil {
		return "", fmt.Errorf("failed to snapshot database: %w", err)
	}
	defer os.Remove(snapshot)

	info, err := os.Stat(snapshot)
	if err != nil {
		return "", err
	}
	manifest.SizeBytes = info.Size()

	archivePath := filepath.Join(dir, fmt.Sprintf("docqa-backup-%s.zip", manifest.CreatedAt.Format("20060102-150405")))
	if err := writeArchive(archivePath, snapshot, manifest); err != nil {
		os.Remove(archivePath)
		return "", err
	}

	return archivePath, nil
}

// Restore replaces the database file at dbPath with the snapshot from the
// archive. The database must not be open.
func Restore(archivePath, dbPath string) (*BackupManifest, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, docqa.Errorf(docqa.EINVALID, "not a valid backup archive")
	}
	defer reader.Close()

	manifest, err := readManifest(&reader.Reader)
	if err != nil {
		return nil, err
	}

	snapshot, err := reader.Open(databaseName)
	if err != nil {
		return nil, docqa.Errorf(docqa.EINVALID, "backup archive has no database snapshot")
	}
	defer snapshot.Close()

	// Write to a temp file first so a failed restore leaves the current
	// database untouched.
	tmp, err := os.CreateTemp(filepath.Dir(dbPath), ".restore-*")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, snapshot)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	if written != manifest.SizeBytes {
		return nil, docqa.Errorf(docqa.EINVALID, "backup archive is truncated")
	}

	// Remove WAL artifacts so the restored file is opened fresh.
	os.Remove(dbPath + "-wal")
	os.Remove(dbPath + "-shm")

	if err := os.Rename(tmp.Name(), dbPath); err != nil {
		return nil, err
	}
	return manifest, nil
}

func writeArchive(path, snapshot string, manifest BackupManifest) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	mw, err := zw.Create(manifestName)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(mw).Encode(manifest); err != nil {
		return err
	}

	dw, err := zw.Create(databaseName)
	if err != nil {
		return err
	}
	src, err := os.Open(snapshot)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dw, src); err != nil {
		src.Close()
		return err
	}
	src.Close()

	if err := zw.Close(); err != nil {
		return err
	}
	return f.Sync()
}

func readManifest(reader *zip.Reader) (*BackupManifest, error) {
	f, err := reader.Open(manifestName)
	if err != nil {
		return nil, docqa.Errorf(docqa.EINVALID, "backup archive has no manifest")
	}
	defer f.Close()

	var manifest BackupManifest
	if err := json.NewDecoder(f).Decode(&manifest); err != nil {
		return nil, docqa.Errorf(docqa.EINVALID, "backup manifest is malformed")
	}
	if _, err := uuid.Parse(manifest.ID); err != nil {
		return nil, docqa.Errorf(docqa.EINVALID, "backup manifest has an invalid ID")
	}
	return &manifest, nil
}
