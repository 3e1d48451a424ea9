package storage

import (
	"fmt"
	"path/filepath"
	"sync"
)

// SeenRegistry is the mark phase of the asset garbage collector: a set of
// file paths believed to exist from prior runs, shrunk each time the
// current run confirms a path. Whatever remains when the run ends was not
// referenced this run and is the deletion set.
//
// One registry is created per run and consumed once at run end. Paths are
// normalized with filepath.Clean so gate checks and seed listings agree.
type SeenRegistry struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

// NewSeenRegistry creates a registry seeded with the given paths.
func NewSeenRegistry(paths []string) *SeenRegistry {
	pending := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		pending[filepath.Clean(p)] = struct{}{}
	}
	return &SeenRegistry{pending: pending}
}

// SeedRegistry builds a registry from a lister (directory walk or persisted
// index).
func SeedRegistry(lister PathLister) (*SeenRegistry, error) {
	paths, err := lister.ListPaths()
	if err != nil {
		return nil, fmt.Errorf("seeding seen registry: %w", err)
	}
	return NewSeenRegistry(paths), nil
}

// MarkSeen confirms a path as current, removing it from the pending set.
// Called for every gate-evaluated path, skip and write alike.
func (r *SeenRegistry) MarkSeen(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, filepath.Clean(path))
}

// Remaining returns the paths never confirmed this run, in no particular
// order. These are the sweep candidates.
func (r *SeenRegistry) Remaining() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	remaining := make([]string, 0, len(r.pending))
	for p := range r.pending {
		remaining = append(remaining, p)
	}
	return remaining
}

// PendingCount reports how many seeded paths have not been confirmed yet.
func (r *SeenRegistry) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
