package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/tverano/docqa"
)

// Ensure LoggingDownloader implements docqa.Downloader.
var _ docqa.Downloader = (*LoggingDownloader)(nil)

// LoggingDownloader wraps a Downloader with transfer logging.
type LoggingDownloader struct {
	next   docqa.Downloader
	logger *slog.Logger
}

// NewLoggingDownloader creates a new LoggingDownloader.
func NewLoggingDownloader(next docqa.Downloader, logger *slog.Logger) *LoggingDownloader {
	return &LoggingDownloader{next: next, logger: logger}
}

// Download delegates to the wrapped downloader and logs the transfer.
func (d *LoggingDownloader) Download(ctx context.Context, model docqa.ModelDescriptor, progress docqa.DownloadProgressFunc) (path string, err error) {
	defer func(begin time.Time) {
		d.logger.Info("model download",
			"model", model.Name,
			"sizeBytes", model.SizeBytes,
			"path", path,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Download(ctx, model, progress)
}
