// Package fetch retrieves remote asset bytes and sniffs their binary type.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"docu-assets/pkg/models"
	"docu-assets/pkg/utils"
)

// Result carries the buffered body of a fetched asset and its sniffed type.
type Result struct {
	Bytes []byte
	Type  models.FileType
}

// Fetcher performs single-attempt GETs for asset URLs. A failed fetch
// aborts the block being processed; there is no retry policy.
//
// Fetched bodies are kept in a run-scoped byte cache keyed by URL, so a
// locale falling back to the primary asset reuses bytes that were already
// pulled for a skip-cached primary instead of fetching them a second time.
type Fetcher struct {
	client  *http.Client
	cache   *gocache.Cache
	timeout time.Duration
	log     *logrus.Logger
}

// NewFetcher creates a Fetcher around the given client. timeout bounds each
// individual fetch on top of the client's own transport timeouts.
func NewFetcher(client *http.Client, timeout time.Duration, log *logrus.Logger) *Fetcher {
	return &Fetcher{
		client:  client,
		cache:   gocache.New(5*time.Minute, 10*time.Minute),
		timeout: timeout,
		log:     log,
	}
}

// Fetch GETs the URL and returns its buffered bytes plus the sniffed binary
// type. Transport failures, timeouts, and non-2xx responses all surface as
// utils.ErrFetch; nothing is retried.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	if cached, found := f.cache.Get(rawURL); found {
		f.log.WithField("url", rawURL).Debug("Serving asset bytes from run cache")
		return cached.(*Result), nil
	}

	reqCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request for '%s': %w", utils.ErrRequestCreation, rawURL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET '%s': %w", utils.ErrFetch, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: GET '%s': %w", utils.ErrFetch, rawURL, statusError(resp))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body of '%s': %w", utils.ErrFetch, rawURL, err)
	}

	result := &Result{
		Bytes: body,
		Type:  sniffType(body, resp.Header.Get("Content-Type")),
	}
	f.cache.SetDefault(rawURL, result)

	f.log.WithFields(logrus.Fields{
		"url":   rawURL,
		"bytes": len(body),
		"mime":  result.Type.MIME,
	}).Debug("Fetched asset")
	return result, nil
}

// statusError wraps a non-2xx status with the matching sentinel so callers
// can categorize without parsing the message.
func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d %s", utils.ErrServerHTTPError, resp.StatusCode, resp.Status)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, resp.StatusCode, resp.Status)
	default:
		return fmt.Errorf("%w: status %d %s", utils.ErrOtherHTTPError, resp.StatusCode, resp.Status)
	}
}

// sniffType determines the asset's binary type, preferring content sniffing
// over the server-declared Content-Type header.
func sniffType(body []byte, contentType string) models.FileType {
	detected := http.DetectContentType(body)

	// DetectContentType falls back to application/octet-stream when the
	// bytes are ambiguous; trust the header in that case.
	if detected == "application/octet-stream" && contentType != "" {
		if mimeType, _, err := mime.ParseMediaType(contentType); err == nil {
			detected = mimeType
		}
	}

	return models.FileType{
		Extension: extensionForMIME(detected),
		MIME:      detected,
	}
}

// extensionForMIME maps a MIME type to a preferred file extension (without
// the leading dot). Returns "" when no trustworthy extension is known.
func extensionForMIME(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "image/svg+xml":
		return "svg"
	case "image/bmp":
		return "bmp"
	case "image/tiff":
		return "tiff"
	case "image/avif":
		return "avif"
	}
	extensions, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(extensions) == 0 {
		return ""
	}
	return strings.TrimPrefix(extensions[0], ".")
}
