package process

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docu-assets/pkg/config"
	"docu-assets/pkg/models"
	"docu-assets/pkg/storage"
)

func TestCleanup_DeletesUntouchedAssets(t *testing.T) {
	payloads := map[string][]byte{
		"/a.png": pngPayload("a"),
		"/b.png": pngPayload("b"),
	}
	server, _ := assetServer(t, payloads)
	page := models.PageContext{Slug: "p", Dir: "docs"}

	// First run persists both assets.
	first := newRun(t, server.Client(), nil)
	require.NoError(t, first.processor.ProcessImageBlock(context.Background(),
		block("b1", server.URL+"/a.png", ""), page))
	require.NoError(t, first.processor.ProcessImageBlock(context.Background(),
		block("b2", server.URL+"/b.png", ""), page))

	pathA := filepath.Join(first.opts.ImageOutputPath, "p.b1.png")
	pathB := filepath.Join(first.opts.ImageOutputPath, "p.b2.png")
	require.FileExists(t, pathA)
	require.FileExists(t, pathB)

	// Second run only references the first block: b's file is now stale.
	second := newRunWithOptions(t, server.Client(), first.opts)
	require.NoError(t, second.processor.ProcessImageBlock(context.Background(),
		block("b1", server.URL+"/a.png", ""), page))

	report := second.processor.Cleanup(context.Background())
	assert.Equal(t, 1, report.Candidates)
	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, 0, report.Failed)

	assert.FileExists(t, pathA, "confirmed asset must survive the sweep")
	assert.NoFileExists(t, pathB)
}

func TestCleanup_NothingStale(t *testing.T) {
	server, _ := assetServer(t, map[string][]byte{"/a.png": pngPayload("a")})
	env := newRun(t, server.Client(), nil)
	require.NoError(t, env.processor.ProcessImageBlock(context.Background(),
		block("b1", server.URL+"/a.png", ""), models.PageContext{Slug: "p", Dir: "docs"}))

	report := env.processor.Cleanup(context.Background())
	assert.Equal(t, CleanupReport{}, report)
}

func TestCleanup_SweepsLocalizedVariants(t *testing.T) {
	server, _ := assetServer(t, map[string][]byte{"/a.png": pngPayload("a")})
	page := models.PageContext{Slug: "p", Dir: "docs"}

	first := newRun(t, server.Client(), func(o *config.Options) { o.Locales = []string{"fr"} })
	require.NoError(t, first.processor.ProcessImageBlock(context.Background(),
		block("b1", server.URL+"/a.png", ""), page))
	frPath := filepath.Join(first.opts.SiteRoot, "i18n", "fr", "docusaurus-plugin-content-docs", "current", "p.b1.png")
	require.FileExists(t, frPath)

	// The locale is dropped from the configuration: its tree is now stale.
	delocalized := *first.opts
	delocalized.Locales = []string{}
	_, err := delocalized.Validate()
	require.NoError(t, err)

	second := newRunWithOptions(t, server.Client(), &delocalized)
	require.NoError(t, second.processor.ProcessImageBlock(context.Background(),
		block("b1", server.URL+"/a.png", ""), page))

	report := second.processor.Cleanup(context.Background())
	assert.Equal(t, 1, report.Deleted)
	assert.NoFileExists(t, frPath)
}

func TestCleanup_FailureIsNonFatal(t *testing.T) {
	server, _ := assetServer(t, map[string][]byte{})
	env := newRun(t, server.Client(), nil)

	// One deletable stale file and one path that cannot be removed (a
	// non-empty directory named like an asset).
	stale := filepath.Join(env.opts.ImageOutputPath, "stale.png")
	require.NoError(t, os.MkdirAll(env.opts.ImageOutputPath, 0755))
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0644))

	undeletable := filepath.Join(env.opts.ImageOutputPath, "dir.png")
	require.NoError(t, os.MkdirAll(undeletable, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(undeletable, "child"), []byte("x"), 0644))

	// Seed the registry by hand: a directory walk would never list the
	// directory itself, but a persisted index could carry such a path.
	registry := storage.NewSeenRegistry([]string{stale, undeletable})
	processor, err := NewProcessor(env.opts, nil, FSWriter{}, registry, nil, testLogger())
	require.NoError(t, err)

	report := processor.Cleanup(context.Background())
	assert.Equal(t, 2, report.Candidates)
	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, 1, report.Failed)
	assert.NoFileExists(t, stale)
	assert.DirExists(t, undeletable, "failed deletions leave the path in place")
}

func TestCleanup_AlreadyGoneCountsAsDeleted(t *testing.T) {
	server, _ := assetServer(t, map[string][]byte{})
	env := newRun(t, server.Client(), nil)

	gone := filepath.Join(env.opts.ImageOutputPath, "gone.png")
	require.NoError(t, os.MkdirAll(env.opts.ImageOutputPath, 0755))
	require.NoError(t, os.WriteFile(gone, []byte("x"), 0644))

	env = newRunWithOptions(t, server.Client(), env.opts)
	require.NoError(t, os.Remove(gone)) // Someone else got there first.

	report := env.processor.Cleanup(context.Background())
	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, 0, report.Failed)
}
