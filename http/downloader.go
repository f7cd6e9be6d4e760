// Package http provides the HTTP model downloader with resume support.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/tverano/docqa"
)

// PartialSuffix marks in-progress download files.
const PartialSuffix = ".partial"

// progressInterval caps how often the progress callback fires.
const progressInterval = 500 * time.Millisecond

// copyBufferSize is the read granularity, which also bounds how often
// cancellation is observed.
const copyBufferSize = 256 * 1024

// Ensure Downloader implements docqa.Downloader at compile time.
var _ docqa.Downloader = (*Downloader)(nil)

// Downloader transfers model files into a local cache directory. An
// interrupted transfer leaves a .partial file that a later call resumes
// from via an HTTP Range request.
type Downloader struct {
	dir    string
	client *http.Client
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithClient sets the HTTP client used for transfers.
func WithClient(client *http.Client) Option {
	return func(d *Downloader) {
		d.client = client
	}
}

// NewDownloader creates a Downloader writing into dir.
func NewDownloader(dir string, opts ...Option) *Downloader {
	d := &Downloader{
		dir: dir,
		// No overall timeout: large model files legitimately take a long
		// time. Cancellation comes from ctx.
		client: &http.Client{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download transfers the model file, resuming any partial download, and
// returns the final path. Completion requires an exact size match against
// the descriptor; a mismatch discards the partial file so the next
// attempt starts clean.
func (d *Downloader) Download(ctx context.Context, model docqa.ModelDescriptor, progress docqa.DownloadProgressFunc) (string, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", err
	}

	finalPath := filepath.Join(d.dir, model.FileName)
	partialPath := finalPath + PartialSuffix

	// Already complete.
	if info, err := os.Stat(finalPath); err == nil && info.Size() == model.SizeBytes {
		return finalPath, nil
	}

	offset := int64(0)
	if info, err := os.Stat(partialPath); err == nil {
		offset = info.Size()
	}
	if offset > model.SizeBytes {
		// Partial is larger than the expected file; it cannot be valid.
		if err := os.Remove(partialPath); err != nil {
			return "", err
		}
		offset = 0
	}

	if offset < model.SizeBytes {
		if err := d.transfer(ctx, model, partialPath, offset, progress); err != nil {
			return "", err
		}
	}

	info, err := os.Stat(partialPath)
	if err != nil {
		return "", err
	}
	if info.Size() != model.SizeBytes {
		os.Remove(partialPath)
		return "", docqa.Errorf(docqa.EINTERNAL,
			"downloaded %d bytes for %s, expected %d; discarding partial file",
			info.Size(), model.Name, model.SizeBytes)
	}

	if err := os.Rename(partialPath, finalPath); err != nil {
		return "", err
	}
	return finalPath, nil
}

// transfer appends the remaining bytes to the partial file. On error or
// cancellation the partial file is kept for a later resume.
func (d *Downloader) transfer(ctx context.Context, model docqa.ModelDescriptor, partialPath string, offset int64, progress docqa.DownloadProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, model.DownloadURL, nil)
	if err != nil {
		return err
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return docqa.Errorf(docqa.EUNAVAILABLE, "download failed: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case offset > 0 && resp.StatusCode == http.StatusPartialContent:
		// Server honored the range; append.
	case resp.StatusCode == http.StatusOK:
		// Full body; restart from zero.
		offset = 0
	default:
		return docqa.Errorf(docqa.EUNAVAILABLE, "download failed: HTTP %d for %s", resp.StatusCode, model.DownloadURL)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if offset > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	out, err := os.OpenFile(partialPath, flags, 0o644)
	if err != nil {
		return writeFailed(model, err)
	}
	defer out.Close()

	// Throttle progress callbacks so they fire at most twice a second
	// regardless of chunk size.
	limiter := rate.NewLimiter(rate.Every(progressInterval), 1)
	start := time.Now()
	startOffset := offset

	buf := make([]byte, copyBufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return writeFailed(model, err)
			}
			offset += int64(n)

			if progress != nil && limiter.Allow() {
				progress(downloadProgress(offset, startOffset, model.SizeBytes, start))
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return readErr
		}
	}

	if progress != nil {
		progress(downloadProgress(offset, startOffset, model.SizeBytes, start))
	}
	if err := out.Sync(); err != nil {
		return writeFailed(model, err)
	}
	return nil
}

// writeFailed translates a file write error into the taxonomy so the CLI
// names the likely cause instead of printing a bare path error.
func writeFailed(model docqa.ModelDescriptor, err error) error {
	return docqa.Errorf(docqa.EINTERNAL,
		"cannot write model file for %s: %v; check free disk space", model.Name, err)
}

func downloadProgress(offset, startOffset, total int64, start time.Time) docqa.DownloadProgress {
	elapsed := time.Since(start).Seconds()
	var speed float64
	if elapsed > 0 {
		speed = float64(offset-startOffset) / elapsed
	}
	return docqa.DownloadProgress{
		DownloadedBytes: offset,
		TotalBytes:      total,
		BytesPerSec:     speed,
	}
}
