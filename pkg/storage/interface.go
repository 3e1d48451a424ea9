// Package storage tracks which persisted assets are still referenced.
package storage

import "time"

// AssetEntry records what the pipeline knows about one persisted asset file.
type AssetEntry struct {
	SourceURL string    `json:"source_url,omitempty"` // Remote URL the bytes came from
	Locale    string    `json:"locale,omitempty"`     // Locale code for localized variants, "" for the primary
	Size      int64     `json:"size,omitempty"`       // Bytes written
	WrittenAt time.Time `json:"written_at"`           // Timestamp of the last write (not of skips)
}

// PathLister seeds the seen registry at run start with the asset paths
// believed to exist from prior runs.
type PathLister interface {
	ListPaths() ([]string, error)
}

// AssetIndex is the optional persisted index collaborator. The pipeline
// itself keeps no private index; when one is configured it only seeds the
// registry and mirrors writes/deletions for the next run's seeding.
type AssetIndex interface {
	PathLister

	// Record stores or refreshes the entry for a persisted asset path.
	Record(path string, entry *AssetEntry) error

	// Forget removes the entry for a path that was swept.
	Forget(path string) error

	// Close cleanly closes the index.
	Close() error
}
