// SPDX-License-Identifier: MPL-2.0

package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// defaultMaxBytes is the upper bound on downloaded asset size (500 MB).
// Prevents unbounded disk consumption from malicious or misconfigured URLs.
const defaultMaxBytes = 500 << 20

type (
	// Client downloads remote assets to local files. Construct with NewClient;
	// the zero value has no HTTP client.
	Client struct {
		httpClient *http.Client
		userAgent  string
		maxBytes   int64
	}

	// Option configures a Client during construction.
	Option func(*Client)
)

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy configurations.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Client) {
		d.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(d *Client) {
		d.userAgent = ua
	}
}

// WithMaxBytes overrides the download size cap.
func WithMaxBytes(n int64) Option {
	return func(d *Client) {
		d.maxBytes = n
	}
}

// NewClient creates a Client with sensible defaults.
// Defaults: httpClient=http.DefaultClient, userAgent="pioinstaller",
// maxBytes=500 MB.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		userAgent:  "pioinstaller",
		maxBytes:   defaultMaxBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTo downloads the asset at rawURL into destPath and returns destPath.
// The destination directory is created if needed. The body streams to a temp
// file beside the destination, then an os.Rename publishes the completed
// file, so an interrupted download never leaves a truncated destPath behind.
func (c *Client) FetchTo(ctx context.Context, rawURL, destPath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", redactURL(rawURL), err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only HTTP response body

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: unexpected status %d", redactURL(rawURL), resp.StatusCode)
	}

	destDir := filepath.Dir(destPath)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("creating destination directory: %w", err)
	}

	// Download to a temp file in the destination directory so the final
	// os.Rename is an atomic same-filesystem move.
	tmp, err := os.CreateTemp(destDir, filepath.Base(destPath)+".download-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	// Read one byte past the cap so oversize responses are detected instead
	// of silently truncated.
	written, err := io.Copy(tmp, io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("downloading %s: %w", redactURL(rawURL), err)
	}

	if written > c.maxBytes {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("downloading %s: response exceeds %d byte limit", redactURL(rawURL), c.maxBytes)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), destPath); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("moving download into place: %w", err)
	}

	return destPath, nil
}

// redactURL strips query parameters and fragments from a URL for safe inclusion
// in error messages, preventing accidental exposure of tokens or sensitive data.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
