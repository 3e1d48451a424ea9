package naming

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docu-assets/pkg/config"
	"docu-assets/pkg/models"
	"docu-assets/pkg/utils"
)

func descriptor(blockID, url, slug string) *models.ImageDescriptor {
	return &models.ImageDescriptor{
		BlockID:    blockID,
		PrimaryURL: url,
		Page:       models.PageContext{Slug: slug},
	}
}

func TestForMode(t *testing.T) {
	for _, mode := range []config.NamingMode{config.NamingDefault, config.NamingLegacy, config.NamingContentHash} {
		s, err := ForMode(mode)
		require.NoError(t, err)
		require.NotNil(t, s)
	}
	_, err := ForMode("bogus")
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrConfiguration))
}

func TestDefaultStrategy(t *testing.T) {
	s := defaultStrategy{}
	assert.False(t, s.RequiresContent())

	tests := []struct {
		name     string
		url      string
		slug     string
		blockID  string
		expected string
	}{
		{
			name:     "SlugAndExtension",
			url:      "https://files.example.com/img.jpg",
			slug:     "my-page",
			blockID:  "block-1",
			expected: "my-page.block-1.jpg",
		},
		{
			name:     "EmptySlugOmitted",
			url:      "https://files.example.com/img.jpg",
			slug:     "",
			blockID:  "block-1",
			expected: "block-1.jpg",
		},
		{
			name:     "ExtensionBeforeQueryString",
			url:      "https://files.example.com/img.webp?X-Sig=abc.def",
			slug:     "p",
			blockID:  "b",
			expected: "p.b.webp",
		},
		{
			name:     "MissingExtensionDefaultsToPNG",
			url:      "https://files.example.com/asset?token=1",
			slug:     "p",
			blockID:  "b",
			expected: "p.b.png",
		},
		{
			name:     "UppercaseExtensionLowered",
			url:      "https://files.example.com/IMG.PNG",
			slug:     "p",
			blockID:  "b",
			expected: "p.b.png",
		},
		{
			name:     "SlugWithSeparatorsSanitized",
			url:      "https://files.example.com/img.png",
			slug:     "guide/intro",
			blockID:  "b",
			expected: "guide_intro.b.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, err := s.FileName(descriptor(tt.blockID, tt.url, tt.slug))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestDefaultStrategy_StableAcrossRuns(t *testing.T) {
	s := defaultStrategy{}
	d := descriptor("block-1", "https://files.example.com/img.png?expiry=111", "page")
	first, err := s.FileName(d)
	require.NoError(t, err)

	// Same identifiers, different signed query: same name.
	d2 := descriptor("block-1", "https://files.example.com/img.png?expiry=999", "page")
	second, err := s.FileName(d2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLegacyStrategy(t *testing.T) {
	s := legacyStrategy{}
	assert.False(t, s.RequiresContent())

	const id = "1f9b5ac4-33a3-4c2e-8d6f-0123456789ab"
	url := fmt.Sprintf("https://files.example.com/%s/img.png?sig=zz", id)

	name, err := s.FileName(descriptor("b", url, ""))
	require.NoError(t, err)
	assert.Equal(t, utils.ShortHash(id, 8)+".png", name)
}

func TestLegacyStrategy_LastUUIDWins(t *testing.T) {
	s := legacyStrategy{}
	first := "11111111-2222-3333-4444-555555555555"
	last := "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
	url := fmt.Sprintf("https://files.example.com/%s/%s/img.png", first, last)

	name, err := s.FileName(descriptor("b", url, ""))
	require.NoError(t, err)
	assert.Equal(t, utils.ShortHash(last, 8)+".png", name)
}

func TestLegacyStrategy_CaseInsensitiveUUID(t *testing.T) {
	s := legacyStrategy{}
	upper := "1F9B5AC4-33A3-4C2E-8D6F-0123456789AB"
	lower := "1f9b5ac4-33a3-4c2e-8d6f-0123456789ab"

	nameUpper, err := s.FileName(descriptor("b", "https://x.example.com/"+upper+"/i.png", ""))
	require.NoError(t, err)
	nameLower, err := s.FileName(descriptor("b", "https://x.example.com/"+lower+"/i.png", ""))
	require.NoError(t, err)
	assert.Equal(t, nameLower, nameUpper, "UUID case must not change the name")
}

func TestLegacyStrategy_NoUUIDHashesWholeURL(t *testing.T) {
	s := legacyStrategy{}
	name, err := s.FileName(descriptor("b", "https://cdn.example.com/pictures/cat.gif?v=2", ""))
	require.NoError(t, err)
	assert.Equal(t, utils.ShortHash("https://cdn.example.com/pictures/cat.gif", 8)+".gif", name)
}

func TestLegacyStrategy_QueryStringIgnored(t *testing.T) {
	s := legacyStrategy{}
	a, err := s.FileName(descriptor("b", "https://cdn.example.com/cat.gif?v=1", ""))
	require.NoError(t, err)
	b, err := s.FileName(descriptor("b", "https://cdn.example.com/cat.gif?v=2", ""))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestContentHashStrategy(t *testing.T) {
	s := contentHashStrategy{}
	assert.True(t, s.RequiresContent())

	d := descriptor("b", "https://files.example.com/img.png", "")
	_, err := s.FileName(d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrBytesRequired))

	d.PrimaryBytes = []byte{0x89, 0x50, 0x4e, 0x47}
	d.Detected = &models.FileType{Extension: "png", MIME: "image/png"}
	name, err := s.FileName(d)
	require.NoError(t, err)
	assert.Equal(t, utils.ContentHash(d.PrimaryBytes, 16)+".png", name)
}

func TestContentHashStrategy_SameBytesDifferentURLs(t *testing.T) {
	s := contentHashStrategy{}
	bytes := []byte("identical image payload")

	a := descriptor("b1", "https://one.example.com/x.png", "")
	a.PrimaryBytes = bytes
	b := descriptor("b2", "https://two.example.com/y.png", "")
	b.PrimaryBytes = bytes

	nameA, err := s.FileName(a)
	require.NoError(t, err)
	nameB, err := s.FileName(b)
	require.NoError(t, err)
	assert.Equal(t, nameA, nameB)
}

func TestContentHashStrategy_ExtensionFallbackChain(t *testing.T) {
	s := contentHashStrategy{}

	// No sniffed type: extension falls back to the URL.
	d := descriptor("b", "https://files.example.com/img.webp", "")
	d.PrimaryBytes = []byte("data")
	name, err := s.FileName(d)
	require.NoError(t, err)
	assert.Contains(t, name, ".webp")

	// Neither sniffed nor URL extension: png.
	d2 := descriptor("b", "https://files.example.com/asset?sig=1", "")
	d2.PrimaryBytes = []byte("data")
	name2, err := s.FileName(d2)
	require.NoError(t, err)
	assert.Contains(t, name2, ".png")
}

func TestExtensionFromURL(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://a.example.com/x.jpeg", "jpeg"},
		{"https://a.example.com/x.svg?sig=a.b", "svg"},
		{"https://a.example.com/x", "png"},
		{"https://a.example.com/dir.d/x", "png"},
		{"https://a.example.com/x#frag.gif", "png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, extensionFromURL(tt.url), "url %s", tt.url)
	}
}
