package models

// LocalizedURL pairs a locale code with an override URL. An empty URL is a
// placeholder meaning "no override, fall back to the primary asset".
type LocalizedURL struct {
	Locale string
	URL    string
}

// FileType is the sniffed binary type of a downloaded asset.
type FileType struct {
	Extension string // Without leading dot, e.g. "png"
	MIME      string // e.g. "image/png"
}

// ImageDescriptor is the structured form of one image block, created at
// parse time, threaded through planning and fetching, and discarded after
// the block is rewritten.
type ImageDescriptor struct {
	BlockID    string
	SourceKind SourceKind
	PrimaryURL string // Required, non-empty

	// Caption text with locale-override lines stripped.
	Caption string

	// One placeholder entry per configured locale (in configured order),
	// with caption overrides appended afterwards. Overrides are matched by
	// locale code, never by position.
	LocalizedURLs []LocalizedURL

	Page PageContext

	// Populated only when a fetch occurred.
	PrimaryBytes []byte
	Detected     *FileType

	// Populated by planning.
	OutputFileName        string
	PrimaryOutputPath     string
	MarkdownReferencePath string
}

// OverrideFor returns the override URL for a locale code, or "" when the
// locale has no override and must fall back to the primary asset. When a
// caption carries several override lines for one locale, the last one wins.
func (d *ImageDescriptor) OverrideFor(locale string) string {
	override := ""
	for _, lu := range d.LocalizedURLs {
		if lu.Locale == locale && lu.URL != "" {
			override = lu.URL
		}
	}
	return override
}
