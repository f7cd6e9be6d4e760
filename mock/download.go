package mock

import (
	"context"

	"github.com/tverano/docqa"
)

var _ docqa.Downloader = (*Downloader)(nil)

// Downloader is a mock implementation of docqa.Downloader.
type Downloader struct {
	DownloadFn func(ctx context.Context, model docqa.ModelDescriptor, progress docqa.DownloadProgressFunc) (string, error)
}

func (d *Downloader) Download(ctx context.Context, model docqa.ModelDescriptor, progress docqa.DownloadProgressFunc) (string, error) {
	return d.DownloadFn(ctx, model, progress)
}

var _ docqa.ModelCache = (*ModelCache)(nil)

// ModelCache is a mock implementation of docqa.ModelCache.
type ModelCache struct {
	ListFn   func() ([]docqa.ModelDescriptor, error)
	PathFn   func(model docqa.ModelDescriptor) string
	DeleteFn func(model docqa.ModelDescriptor) error
}

func (c *ModelCache) List() ([]docqa.ModelDescriptor, error)   { return c.ListFn() }
func (c *ModelCache) Path(model docqa.ModelDescriptor) string  { return c.PathFn(model) }
func (c *ModelCache) Delete(model docqa.ModelDescriptor) error { return c.DeleteFn(model) }
