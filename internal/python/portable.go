// SPDX-License-Identifier: MPL-2.0

package python

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/MohammedTaherR/pioinstaller/internal/download"
)

const (
	// PortableDirName is the directory the portable runtime unpacks into,
	// directly under the fetch base directory.
	PortableDirName = "python-portable"

	// maxManifestBytes is the upper bound on registry manifest size (1 MB).
	// Prevents unbounded memory consumption from malicious or malformed responses.
	maxManifestBytes = 1 << 20
)

// ErrNoPortableRuntime indicates no portable runtime archive exists for the
// host platform (or portable fetching is disabled by configuration).
var ErrNoPortableRuntime = errors.New("no portable runtime for this platform")

type (
	// PortableFetcher obtains a standalone Python runtime for hosts where
	// discovery found no usable interpreter. Fetch returns the interpreter
	// path inside baseDir, or ErrNoPortableRuntime when no archive matches
	// the host platform. Any other error means a fetch was attempted and
	// failed.
	PortableFetcher interface {
		Fetch(ctx context.Context, baseDir string) (string, error)
	}

	// registryPackage is the JSON wire format for a registry package response.
	registryPackage struct {
		Version registryVersion `json:"version"`
	}

	// registryVersion is the JSON wire format for the latest package version.
	registryVersion struct {
		Name  string         `json:"name"`
		Files []registryFile `json:"files"`
	}

	// registryFile is the JSON wire format for a single downloadable archive.
	registryFile struct {
		Name        string           `json:"name"`
		System      []string         `json:"system"`
		DownloadURL string           `json:"download_url"`
		Checksum    registryChecksum `json:"checksum"`
	}

	// registryChecksum carries the digests the registry publishes per file.
	registryChecksum struct {
		SHA256 string `json:"sha256"`
	}

	// RegistryFetcher implements PortableFetcher against the PlatformIO
	// registry: it resolves the host platform to a published archive,
	// downloads it into the shared cache, verifies the digest, and unpacks
	// it under <baseDir>/python-portable.
	RegistryFetcher struct {
		registryURL string
		httpClient  *http.Client
		downloader  *download.Client
		logger      *log.Logger
	}

	// RegistryOption configures a RegistryFetcher during construction.
	RegistryOption func(*RegistryFetcher)
)

// WithRegistryHTTPClient sets a custom HTTP client for manifest requests.
func WithRegistryHTTPClient(c *http.Client) RegistryOption {
	return func(r *RegistryFetcher) {
		r.httpClient = c
	}
}

// WithDownloader overrides the archive download client.
func WithDownloader(d *download.Client) RegistryOption {
	return func(r *RegistryFetcher) {
		r.downloader = d
	}
}

// WithRegistryLogger overrides the logger used for fetch diagnostics.
func WithRegistryLogger(logger *log.Logger) RegistryOption {
	return func(r *RegistryFetcher) {
		r.logger = logger
	}
}

// NewRegistryFetcher creates a RegistryFetcher for the given manifest
// endpoint. An empty registryURL disables portable fetching: Fetch reports
// ErrNoPortableRuntime without touching the network.
func NewRegistryFetcher(registryURL string, opts ...RegistryOption) *RegistryFetcher {
	r := &RegistryFetcher{
		registryURL: registryURL,
		httpClient:  http.DefaultClient,
		logger:      log.NewWithOptions(os.Stderr, log.Options{Prefix: "python"}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.downloader == nil {
		r.downloader = download.NewClient()
	}
	return r
}

// Fetch downloads and unpacks the portable runtime for the host platform,
// returning the path of the contained interpreter.
func (r *RegistryFetcher) Fetch(ctx context.Context, baseDir string) (string, error) {
	if r.registryURL == "" {
		return "", fmt.Errorf("%w: portable fetching disabled", ErrNoPortableRuntime)
	}

	system := hostSystem()
	if system == "" {
		return "", fmt.Errorf("%w: %s/%s", ErrNoPortableRuntime, runtime.GOOS, runtime.GOARCH)
	}

	asset, err := r.findAsset(ctx, system)
	if err != nil {
		return "", err
	}

	r.logger.Debug("downloading portable runtime", "archive", asset.Name)

	archivePath, err := r.downloader.FetchTo(ctx, asset.DownloadURL,
		filepath.Join(baseDir, ".cache", "tmp", asset.Name))
	if err != nil {
		return "", fmt.Errorf("downloading portable runtime: %w", err)
	}

	if asset.Checksum.SHA256 != "" {
		if err := download.VerifyFile(archivePath, asset.Checksum.SHA256); err != nil {
			return "", fmt.Errorf("verifying portable runtime: %w", err)
		}
	}

	destDir := filepath.Join(baseDir, PortableDirName)
	if err := os.RemoveAll(destDir); err != nil {
		return "", fmt.Errorf("clearing %s: %w", destDir, err)
	}

	if err := extractArchive(archivePath, destDir); err != nil {
		return "", fmt.Errorf("unpacking portable runtime: %w", err)
	}

	exe := portableInterpreterPath(destDir)
	if _, err := os.Stat(exe); err != nil {
		return "", fmt.Errorf("portable runtime has no interpreter at %s: %w", exe, err)
	}

	r.logger.Debug("portable runtime ready", "path", exe)
	return exe, nil
}

// findAsset fetches the registry manifest and returns the archive published
// for the given system tag.
func (r *RegistryFetcher) findAsset(ctx context.Context, system string) (*registryFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.registryURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating manifest request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "pioinstaller")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching portable runtime manifest: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only HTTP response body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching portable runtime manifest: unexpected status %d", resp.StatusCode)
	}

	var pkg registryPackage
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxManifestBytes)).Decode(&pkg); err != nil {
		return nil, fmt.Errorf("decoding portable runtime manifest: %w", err)
	}

	for i := range pkg.Version.Files {
		if slices.Contains(pkg.Version.Files[i].System, system) {
			return &pkg.Version.Files[i], nil
		}
	}

	return nil, fmt.Errorf("%w: no %s archive in manifest", ErrNoPortableRuntime, system)
}

// IsPortable reports whether an interpreter path points into a previously
// extracted portable runtime tree.
func IsPortable(pythonPath string) bool {
	clean := filepath.ToSlash(filepath.Clean(pythonPath))
	for _, part := range strings.Split(clean, "/") {
		if part == PortableDirName {
			return true
		}
	}
	return false
}

// hostSystem maps GOOS/GOARCH to the registry's system tags. An empty string
// means the registry publishes no archive for this platform.
func hostSystem() string {
	switch runtime.GOOS + "/" + runtime.GOARCH {
	case "windows/amd64":
		return "windows_amd64"
	case "windows/386":
		return "windows_x86"
	case "linux/amd64":
		return "linux_x86_64"
	case "linux/386":
		return "linux_i686"
	case "linux/arm64":
		return "linux_aarch64"
	case "linux/arm":
		return "linux_armv7l"
	case "darwin/amd64":
		return "darwin_x86_64"
	case "darwin/arm64":
		return "darwin_arm64"
	}
	return ""
}

// portableInterpreterPath returns where the interpreter lives inside an
// extracted portable tree.
func portableInterpreterPath(destDir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(destDir, "python.exe")
	}
	return filepath.Join(destDir, "bin", "python3")
}
