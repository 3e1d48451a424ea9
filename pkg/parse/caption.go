// Package parse turns raw image blocks into structured descriptors the
// pipeline plans and fetches from.
package parse

import (
	"fmt"
	"regexp"
	"strings"

	"docu-assets/pkg/config"
	"docu-assets/pkg/models"
	"docu-assets/pkg/utils"
)

// overrideLinePattern matches a caption line carrying a locale override:
// a two-letter locale code, whitespace, then an https URL and nothing else.
var overrideLinePattern = regexp.MustCompile(`^\s*([A-Za-z]{2})\s+(https://\S+)\s*$`)

type lineKind int

const (
	lineCaptionFragment lineKind = iota
	lineLocaleOverride
)

// captionLine is one typed line of a parsed caption. Typing every line in a
// single pass keeps the fragment fold independent from override collection.
type captionLine struct {
	kind   lineKind
	locale string
	url    string
	text   string
}

// ImageDescriptor builds the structured descriptor for one image block:
// primary URL from the block's source variant, locale placeholders seeded
// from the configured locale list, caption overrides appended after them,
// and the caption text with override lines stripped.
//
// Parsing before the options have been validated is a caller bug and fails
// with utils.ErrConfiguration.
func ImageDescriptor(block *models.ImageBlock, page models.PageContext, opts *config.Options) (*models.ImageDescriptor, error) {
	if opts == nil || !opts.Initialized() {
		return nil, utils.WrapErrorf(utils.ErrConfiguration,
			"caption parsed before the locale list was initialized")
	}
	if block.Source.URL == "" {
		return nil, fmt.Errorf("image block %q has an empty source URL", block.ID)
	}

	desc := &models.ImageDescriptor{
		BlockID:    block.ID,
		SourceKind: block.Source.Kind,
		PrimaryURL: block.Source.URL,
		Page:       page,
	}

	// Exactly one placeholder per configured locale, in configured order.
	desc.LocalizedURLs = make([]models.LocalizedURL, 0, len(opts.Locales))
	for _, locale := range opts.Locales {
		desc.LocalizedURLs = append(desc.LocalizedURLs, models.LocalizedURL{Locale: locale})
	}

	var captionText strings.Builder
	for _, line := range parseLines(block.CaptionText()) {
		switch line.kind {
		case lineLocaleOverride:
			desc.LocalizedURLs = append(desc.LocalizedURLs, models.LocalizedURL{
				Locale: line.locale,
				URL:    line.url,
			})
		case lineCaptionFragment:
			captionText.WriteString(line.text)
			captionText.WriteString(" ")
		}
	}
	desc.Caption = strings.TrimSpace(captionText.String())

	return desc, nil
}

// parseLines types each caption line as either a locale override or a
// caption fragment.
func parseLines(raw string) []captionLine {
	if raw == "" {
		return nil
	}
	var lines []captionLine
	for _, line := range strings.Split(raw, "\n") {
		if m := overrideLinePattern.FindStringSubmatch(line); m != nil {
			lines = append(lines, captionLine{
				kind:   lineLocaleOverride,
				locale: strings.ToLower(m[1]),
				url:    m[2],
			})
			continue
		}
		lines = append(lines, captionLine{kind: lineCaptionFragment, text: line})
	}
	return lines
}
