package docqa

import "context"

// DownloadProgress reports model download progress.
type DownloadProgress struct {
	DownloadedBytes int64   `json:"downloadedBytes"`
	TotalBytes      int64   `json:"totalBytes"`
	BytesPerSec     float64 `json:"bytesPerSec"`
}

// DownloadProgressFunc is a callback for reporting download progress.
type DownloadProgressFunc func(DownloadProgress)

// Downloader transfers model files into the local cache.
//
// Downloads are resumable: an interrupted transfer leaves a partial file
// behind and a later call continues from that byte offset. Completion is
// gated on an exact size match against the descriptor; a mismatch
// discards the partial file.
type Downloader interface {
	Download(ctx context.Context, model ModelDescriptor, progress DownloadProgressFunc) (string, error)
}

// ModelCache resolves which catalog models are locally present.
type ModelCache interface {
	// List returns descriptors whose file exists in the cache directory
	// with a size matching the catalog entry. Partial downloads are not
	// listed.
	List() ([]ModelDescriptor, error)

	// Path returns the on-disk path for a model file, whether or not it
	// exists yet.
	Path(model ModelDescriptor) string

	// Delete removes a cached model file. Removing an absent model is not
	// an error.
	Delete(model ModelDescriptor) error
}
