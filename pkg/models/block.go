package models

import (
	"encoding/json"
	"fmt"
)

// SourceKind distinguishes the two shapes an image block's source can take.
// The variant is decided exactly once, when the block is decoded; all later
// stages read and rewrite the URL through the tagged union.
type SourceKind string

const (
	SourceHostedFile SourceKind = "file"     // Asset hosted by the source system ({"file":{"url":...}})
	SourceExternal   SourceKind = "external" // Asset referenced by an external URL ({"external":{"url":...}})
)

// ImageSource is the tagged union of the two source variants.
type ImageSource struct {
	Kind SourceKind
	URL  string
}

// RichText is a single text run in a block caption.
type RichText struct {
	PlainText string `json:"plain_text"`
}

// ImageBlock is one remote image record handed to the pipeline. The pipeline
// mutates it in place: Source.URL is replaced with the local markdown
// reference and Caption is replaced with a single cleaned run (or emptied).
type ImageBlock struct {
	ID      string
	Source  ImageSource
	Caption []RichText
}

// CaptionText concatenates all caption runs into the raw caption string the
// parser operates on.
func (b *ImageBlock) CaptionText() string {
	var raw string
	for _, run := range b.Caption {
		raw += run.PlainText
	}
	return raw
}

// SetCaption replaces the block caption with a single cleaned text run, or
// empties it when no caption text remains after override lines are stripped.
func (b *ImageBlock) SetCaption(text string) {
	if text == "" {
		b.Caption = []RichText{}
		return
	}
	b.Caption = []RichText{{PlainText: text}}
}

// imageBlockJSON mirrors the wire shape: field presence picks the variant.
type imageBlockJSON struct {
	ID       string      `json:"id"`
	File     *sourceJSON `json:"file,omitempty"`
	External *sourceJSON `json:"external,omitempty"`
	Caption  []RichText  `json:"caption"`
}

type sourceJSON struct {
	URL string `json:"url"`
}

// UnmarshalJSON decodes the loosely-shaped wire form into the tagged union.
// Exactly one of "file" or "external" must be present.
func (b *ImageBlock) UnmarshalJSON(data []byte) error {
	var raw imageBlockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.File != nil && raw.External != nil:
		return fmt.Errorf("image block %q carries both file and external sources", raw.ID)
	case raw.File != nil:
		b.Source = ImageSource{Kind: SourceHostedFile, URL: raw.File.URL}
	case raw.External != nil:
		b.Source = ImageSource{Kind: SourceExternal, URL: raw.External.URL}
	default:
		return fmt.Errorf("image block %q carries neither file nor external source", raw.ID)
	}

	b.ID = raw.ID
	b.Caption = raw.Caption
	return nil
}

// MarshalJSON re-emits the variant the block was decoded with, so a rewritten
// block round-trips through the same wire shape it arrived in.
func (b ImageBlock) MarshalJSON() ([]byte, error) {
	raw := imageBlockJSON{ID: b.ID, Caption: b.Caption}
	if raw.Caption == nil {
		raw.Caption = []RichText{}
	}
	switch b.Source.Kind {
	case SourceHostedFile:
		raw.File = &sourceJSON{URL: b.Source.URL}
	case SourceExternal:
		raw.External = &sourceJSON{URL: b.Source.URL}
	default:
		return nil, fmt.Errorf("image block %q has unknown source kind %q", b.ID, b.Source.Kind)
	}
	return json.Marshal(raw)
}

// PageContext describes the page an image block belongs to. Supplied by the
// caller (the document traversal), read-only for the pipeline.
type PageContext struct {
	Slug               string `json:"slug"`                 // Page slug, may be empty
	Dir                string `json:"dir"`                  // Directory containing the page's markdown file
	RelativeFolderPath string `json:"relative_folder_path"` // Path of that directory relative to the docs root
}
