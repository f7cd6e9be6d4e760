package fs

import (
	"os"
	"path/filepath"

	"github.com/tverano/docqa"
)

// Ensure ModelCache implements docqa.ModelCache at compile time.
var _ docqa.ModelCache = (*ModelCache)(nil)

// ModelCache resolves catalog models against files in a local directory.
type ModelCache struct {
	dir string
}

// NewModelCache creates a ModelCache rooted at dir.
func NewModelCache(dir string) *ModelCache {
	return &ModelCache{dir: dir}
}

// Dir returns the cache directory.
func (c *ModelCache) Dir() string {
	return c.dir
}

// List returns catalog models whose file exists with a size matching the
// descriptor. Partial downloads never match and are not listed.
func (c *ModelCache) List() ([]docqa.ModelDescriptor, error) {
	var local []docqa.ModelDescriptor
	for _, model := range docqa.Catalog() {
		info, err := os.Stat(c.Path(model))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		if info.Size() == model.SizeBytes {
			local = append(local, model)
		}
	}
	return local, nil
}

// Path returns the on-disk path for a model file.
func (c *ModelCache) Path(model docqa.ModelDescriptor) string {
	return filepath.Join(c.dir, model.FileName)
}

// Delete removes a cached model file and any leftover partial download.
func (c *ModelCache) Delete(model docqa.ModelDescriptor) error {
	path := c.Path(model)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(path + ".partial"); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
