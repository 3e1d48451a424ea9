package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docu-assets/pkg/utils"
)

func TestValidate_Defaults(t *testing.T) {
	opts := &Options{Locales: []string{}}
	warnings, err := opts.Validate()
	require.NoError(t, err)

	assert.Equal(t, NamingDefault, opts.ImageFileNameFormat)
	assert.Equal(t, ".", opts.ImagePrefix)
	assert.Equal(t, ".", opts.SiteRoot)
	assert.Equal(t, "docusaurus-plugin-content-docs", opts.LocalizedDocsRoot)
	assert.Equal(t, 30*time.Second, opts.FetchTimeout)
	assert.Equal(t, 4, opts.NumSweepWorkers)
	assert.Equal(t, "info", opts.LogLevel)
	assert.True(t, opts.Initialized())
	assert.NotEmpty(t, warnings) // sweep worker default is warned about
}

func TestValidate_NilLocalesBecomesEmpty(t *testing.T) {
	opts := &Options{}
	_, err := opts.Validate()
	require.NoError(t, err)
	assert.NotNil(t, opts.Locales)
	assert.Empty(t, opts.Locales)
}

func TestValidate_LocalesLowercasedAndTrimmed(t *testing.T) {
	opts := &Options{Locales: []string{" FR ", "es"}}
	_, err := opts.Validate()
	require.NoError(t, err)
	assert.Equal(t, []string{"fr", "es"}, opts.Locales)
}

func TestValidate_DuplicateLocale(t *testing.T) {
	opts := &Options{Locales: []string{"fr", "FR"}}
	_, err := opts.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrConfiguration))
}

func TestValidate_EmptyLocaleEntry(t *testing.T) {
	opts := &Options{Locales: []string{"fr", "  "}}
	_, err := opts.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrConfiguration))
}

func TestValidate_NonTwoLetterLocaleWarns(t *testing.T) {
	opts := &Options{Locales: []string{"zh-hans"}}
	warnings, err := opts.Validate()
	require.NoError(t, err)
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "zh-hans") {
			found = true
		}
	}
	assert.True(t, found, "expected a warning about non-two-letter locale, got %v", warnings)
}

func TestValidate_NamingModes(t *testing.T) {
	tests := []struct {
		name    string
		mode    NamingMode
		wantErr bool
	}{
		{"Default", NamingDefault, false},
		{"Legacy", NamingLegacy, false},
		{"ContentHash", NamingContentHash, false},
		{"EmptyDefaults", "", false},
		{"Unknown", "md5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &Options{ImageFileNameFormat: tt.mode, Locales: []string{}}
			_, err := opts.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, utils.ErrConfiguration))
				assert.False(t, opts.Initialized())
			} else {
				require.NoError(t, err)
				assert.True(t, opts.Initialized())
			}
		})
	}
}

func TestValidate_PrefixTrailingSlashTrimmed(t *testing.T) {
	opts := &Options{ImagePrefix: "../assets/", Locales: []string{}}
	_, err := opts.Validate()
	require.NoError(t, err)
	assert.Equal(t, "../assets", opts.ImagePrefix)
}

func TestValidate_HTTPClientDefaults(t *testing.T) {
	opts := &Options{Locales: []string{}, FetchTimeout: 7 * time.Second}
	_, err := opts.Validate()
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, opts.HTTPClientSettings.Timeout)
	assert.Equal(t, 100, opts.HTTPClientSettings.MaxIdleConns)
	assert.Equal(t, 90*time.Second, opts.HTTPClientSettings.IdleConnTimeout)
}
