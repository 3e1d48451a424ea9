package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// NamingMode selects the output filename policy for persisted assets.
type NamingMode string

const (
	NamingDefault     NamingMode = "default"      // <slug>.<blockID>.<ext>
	NamingLegacy      NamingMode = "legacy"       // short hash of the URL's embedded UUID (or the URL itself)
	NamingContentHash NamingMode = "content-hash" // hash of the downloaded bytes
)

// Options holds the run configuration for the asset pipeline. It is owned by
// the caller and immutable for the lifetime of a run; the pipeline never
// mutates it after Validate.
type Options struct {
	ImageFileNameFormat NamingMode `yaml:"image_file_name_format,omitempty"`
	ForceRefreshImages  bool       `yaml:"force_refresh_images,omitempty"`

	// ImageOutputPath is the directory assets are written into. When empty,
	// each page's own directory is used.
	ImageOutputPath string `yaml:"image_output_path,omitempty"`

	// ImagePrefix is spliced in front of the filename in the rewritten
	// markdown reference. Defaults to ".".
	ImagePrefix string `yaml:"image_prefix,omitempty"`

	// Locales is the ordered list of locale codes localized variants are
	// produced for. Must be set (possibly empty) before any caption is
	// parsed.
	Locales []string `yaml:"locales"`

	// SiteRoot anchors the i18n tree localized variants are written under.
	SiteRoot string `yaml:"site_root,omitempty"`

	// LocalizedDocsRoot is the plugin directory segment inside the i18n
	// tree: i18n/<locale>/<LocalizedDocsRoot>/current/...
	LocalizedDocsRoot string `yaml:"localized_docs_root,omitempty"`

	FetchTimeout time.Duration `yaml:"fetch_timeout,omitempty"`

	// IndexDir enables the optional BadgerDB asset index used to seed the
	// seen registry. Empty means the registry is seeded from a directory
	// walk of the output tree instead.
	IndexDir string `yaml:"index_dir,omitempty"`

	NumSweepWorkers int    `yaml:"num_sweep_workers,omitempty"`
	LogLevel        string `yaml:"log_level,omitempty"`

	HTTPClientSettings HTTPClientConfig `yaml:"http_client_settings,omitempty"`

	initialized bool
}

// HTTPClientConfig holds settings for the shared HTTP client.
type HTTPClientConfig struct {
	Timeout               time.Duration `yaml:"timeout,omitempty"`                 // Overall request timeout
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty"`       // Timeout for idle connections
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty"`   // Timeout for TLS handshake
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"` // Timeout for 100-continue
	ForceAttemptHTTP2     *bool         `yaml:"force_attempt_http2,omitempty"`     // nil=default, true=force, false=disable
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty"`          // Connection dial timeout
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty"`       // TCP keep-alive interval
}

// Initialized reports whether Validate has run. Parsing and planning refuse
// to operate on an uninitialized Options value.
func (o *Options) Initialized() bool {
	return o.initialized
}

// Load reads and parses an Options YAML file. Validate is not called; the
// caller decides how to surface warnings.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file '%s': %w", path, err)
	}
	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("parsing config file '%s': %w", path, err)
	}
	return &opts, nil
}
