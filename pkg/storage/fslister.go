package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// assetExtensions limits directory seeding to file types the pipeline could
// have written. The sweep deletes everything the run never confirms, so the
// seed set must never pick up markdown or other collaborator-owned files.
var assetExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {},
	".svg": {}, ".bmp": {}, ".tiff": {}, ".avif": {}, ".ico": {},
}

// DirectoryLister seeds the seen registry by walking the output roots and
// collecting asset files left over from prior runs.
type DirectoryLister struct {
	Roots []string
	Log   *logrus.Entry
}

// ListPaths walks each root and returns every asset file found. Roots that
// do not exist yet (first run) are skipped silently.
func (l *DirectoryLister) ListPaths() ([]string, error) {
	var paths []string
	for _, root := range l.Roots {
		if root == "" {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if _, ok := assetExtensions[ext]; ok {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
	}
	if l.Log != nil {
		l.Log.WithField("count", len(paths)).Debug("Seeded registry from directory walk")
	}
	return paths, nil
}
