package process

import (
	"fmt"
	"os"
	"path/filepath"

	"docu-assets/pkg/utils"
)

// AssetWriter durably writes asset bytes to a path, creating parent
// directories as needed. Writes are not required to be atomic; an
// interrupted write may leave a partial file, but the rewritten block never
// references a path whose write failed.
type AssetWriter interface {
	Write(path string, data []byte) error
}

// FSWriter is the default AssetWriter backed by the local filesystem.
type FSWriter struct{}

// Write persists data to path, creating parent directories first.
func (FSWriter) Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating asset directory '%s': %w", utils.ErrWrite, dir, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: writing asset '%s': %w", utils.ErrWrite, path, err)
	}
	return nil
}
