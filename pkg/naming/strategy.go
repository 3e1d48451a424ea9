// Package naming computes deterministic output filenames and paths for
// persisted assets.
package naming

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"docu-assets/pkg/config"
	"docu-assets/pkg/models"
	"docu-assets/pkg/utils"
)

const defaultExtension = "png" // Used when neither the URL nor the bytes yield one

// Strategy maps an image descriptor to an output filename.
//
// Strategies that name from identifiers alone (default, legacy) let the
// orchestrator plan before fetching and skip the network entirely when the
// target file already exists. The content-hash strategy reports
// RequiresContent and returns utils.ErrBytesRequired if asked to name a
// descriptor whose bytes have not been fetched yet.
type Strategy interface {
	// RequiresContent reports whether FileName needs the downloaded bytes.
	RequiresContent() bool

	// FileName computes the output filename for the descriptor.
	FileName(d *models.ImageDescriptor) (string, error)
}

// ForMode returns the strategy for a configured naming mode.
func ForMode(mode config.NamingMode) (Strategy, error) {
	switch mode {
	case config.NamingDefault:
		return defaultStrategy{}, nil
	case config.NamingLegacy:
		return legacyStrategy{}, nil
	case config.NamingContentHash:
		return contentHashStrategy{}, nil
	}
	return nil, utils.WrapErrorf(utils.ErrConfiguration, "unknown naming mode %q", mode)
}

// defaultStrategy names assets <slug>.<blockID>.<ext>, omitting the slug
// when the page has none. Stable for a (block ID, mode) pair across runs.
type defaultStrategy struct{}

func (defaultStrategy) RequiresContent() bool { return false }

func (defaultStrategy) FileName(d *models.ImageDescriptor) (string, error) {
	ext := extensionFromURL(d.PrimaryURL)
	slug := utils.SanitizeFilename(d.Page.Slug)
	if slug == "" {
		return fmt.Sprintf("%s.%s", d.BlockID, ext), nil
	}
	return fmt.Sprintf("%s.%s.%s", slug, d.BlockID, ext), nil
}

// uuidPattern matches UUID-shaped substrings in asset URLs. Hosted-file URLs
// embed the asset's identity as a UUID path segment.
var uuidPattern = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// legacyStrategy names assets by a short hash of the last UUID embedded in
// the URL before the query string, falling back to hashing the whole
// URL-before-query when no UUID is present.
type legacyStrategy struct{}

func (legacyStrategy) RequiresContent() bool { return false }

func (legacyStrategy) FileName(d *models.ImageDescriptor) (string, error) {
	beforeQuery := urlBeforeQuery(d.PrimaryURL)

	chosen := beforeQuery
	matches := uuidPattern.FindAllString(beforeQuery, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		parsed, err := uuid.Parse(matches[i])
		if err != nil {
			continue
		}
		// Canonical form, so mixed-case URLs hash identically.
		chosen = parsed.String()
		break
	}

	return fmt.Sprintf("%s.%s", utils.ShortHash(chosen, 8), extensionFromURL(d.PrimaryURL)), nil
}

// contentHashStrategy names assets by a hash of their bytes: two source URLs
// serving identical bytes collapse to one stored file.
type contentHashStrategy struct{}

func (contentHashStrategy) RequiresContent() bool { return true }

func (contentHashStrategy) FileName(d *models.ImageDescriptor) (string, error) {
	if d.PrimaryBytes == nil {
		return "", utils.WrapErrorf(utils.ErrBytesRequired,
			"content-hash naming for block %q before fetch", d.BlockID)
	}
	ext := ""
	if d.Detected != nil {
		ext = d.Detected.Extension
	}
	if ext == "" {
		ext = extensionFromURL(d.PrimaryURL)
	}
	return fmt.Sprintf("%s.%s", utils.ContentHash(d.PrimaryBytes, 16), ext), nil
}

// urlBeforeQuery strips the query string (and fragment) from a URL without
// requiring it to parse.
func urlBeforeQuery(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// extensionFromURL extracts a file extension from the URL path before any
// query string, defaulting to png when the URL carries none.
func extensionFromURL(rawURL string) string {
	ext := strings.TrimPrefix(path.Ext(urlBeforeQuery(rawURL)), ".")
	if ext == "" {
		return defaultExtension
	}
	return strings.ToLower(ext)
}
