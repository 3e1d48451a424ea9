package config

import (
	"fmt"
	"strings"
	"time"

	"docu-assets/pkg/utils"
)

// Validate checks Options fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults and marks it initialized.
func (o *Options) Validate() (warnings []string, err error) {
	// Naming mode
	switch o.ImageFileNameFormat {
	case NamingDefault, NamingLegacy, NamingContentHash:
	case "":
		o.ImageFileNameFormat = NamingDefault
	default:
		return warnings, utils.WrapErrorf(utils.ErrConfiguration,
			"image_file_name_format must be one of default, legacy, content-hash (got %q)",
			o.ImageFileNameFormat)
	}

	// Locales: nil means the caller never configured the pipeline. An empty
	// list is a valid configuration (no localized variants).
	if o.Locales == nil {
		o.Locales = []string{}
	}
	seen := make(map[string]struct{}, len(o.Locales))
	for i, code := range o.Locales {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			return warnings, utils.WrapErrorf(utils.ErrConfiguration,
				"locales[%d] is empty", i)
		}
		if len(code) != 2 {
			warnings = append(warnings, fmt.Sprintf(
				"locale %q is not a two-letter code; caption override lines will never match it", code))
		}
		if _, dup := seen[code]; dup {
			return warnings, utils.WrapErrorf(utils.ErrConfiguration,
				"duplicate locale %q", code)
		}
		seen[code] = struct{}{}
		o.Locales[i] = code
	}

	// Markdown prefix
	if o.ImagePrefix == "" {
		o.ImagePrefix = "."
	} else {
		o.ImagePrefix = strings.TrimRight(o.ImagePrefix, "/")
	}

	// Localized tree anchors
	if o.SiteRoot == "" {
		o.SiteRoot = "."
	}
	if o.LocalizedDocsRoot == "" {
		o.LocalizedDocsRoot = "docusaurus-plugin-content-docs"
	}

	// FetchTimeout
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 30 * time.Second
	}

	// NumSweepWorkers
	if o.NumSweepWorkers <= 0 {
		warnings = append(warnings, "num_sweep_workers not specified or invalid, defaulting to 4")
		o.NumSweepWorkers = 4
	}

	// LogLevel
	if o.LogLevel == "" {
		o.LogLevel = "info"
	}

	// HTTP client defaults
	if o.HTTPClientSettings.Timeout <= 0 {
		o.HTTPClientSettings.Timeout = o.FetchTimeout
	}
	if o.HTTPClientSettings.MaxIdleConns <= 0 {
		o.HTTPClientSettings.MaxIdleConns = 100
	}
	if o.HTTPClientSettings.MaxIdleConnsPerHost <= 0 {
		o.HTTPClientSettings.MaxIdleConnsPerHost = 10
	}
	if o.HTTPClientSettings.IdleConnTimeout <= 0 {
		o.HTTPClientSettings.IdleConnTimeout = 90 * time.Second
	}
	if o.HTTPClientSettings.TLSHandshakeTimeout <= 0 {
		o.HTTPClientSettings.TLSHandshakeTimeout = 10 * time.Second
	}
	if o.HTTPClientSettings.ExpectContinueTimeout <= 0 {
		o.HTTPClientSettings.ExpectContinueTimeout = 1 * time.Second
	}
	if o.HTTPClientSettings.DialerTimeout <= 0 {
		o.HTTPClientSettings.DialerTimeout = 15 * time.Second
	}
	if o.HTTPClientSettings.DialerKeepAlive <= 0 {
		o.HTTPClientSettings.DialerKeepAlive = 30 * time.Second
	}

	o.initialized = true
	return warnings, nil
}
