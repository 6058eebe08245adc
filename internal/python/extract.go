// SPDX-License-Identifier: MPL-2.0

package python

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// maxEntryBytes is the upper bound on a single extracted file (500 MB).
// Prevents decompression bombs when unpacking a runtime archive.
const maxEntryBytes = 500 << 20

// extractArchive unpacks the tar.gz archive at archivePath into destDir,
// preserving file modes and relative symlinks. Entries whose paths would
// escape destDir are rejected.
func extractArchive(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer func() {
		// Read-only file handle; close errors are exotic.
		_ = f.Close()
	}()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer func() {
		// Gzip reader wraps the underlying file; close errors are not
		// actionable here since we only read from it.
		_ = gz.Close()
	}()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	tr := tar.NewReader(gz)
	for {
		hdr, nextErr := tr.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}
		if nextErr != nil {
			return fmt.Errorf("reading archive: %w", nextErr)
		}

		name := filepath.FromSlash(hdr.Name)
		if !filepath.IsLocal(name) {
			return fmt.Errorf("archive entry %q escapes destination", hdr.Name)
		}
		target := filepath.Join(destDir, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := extractRegular(tr, hdr, target); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := extractSymlink(hdr, name, target); err != nil {
				return err
			}
		default:
			// PAX headers and other metadata entries carry no payload.
			continue
		}
	}

	return nil
}

// extractRegular writes one regular-file entry to target with the mode
// recorded in the archive.
func extractRegular(tr *tar.Reader, hdr *tar.Header, target string) (err error) {
	if mkdirErr := os.MkdirAll(filepath.Dir(target), 0o755); mkdirErr != nil {
		return fmt.Errorf("creating directory for %s: %w", target, mkdirErr)
	}

	out, createErr := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, hdr.FileInfo().Mode().Perm())
	if createErr != nil {
		return fmt.Errorf("creating %s: %w", target, createErr)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", target, closeErr)
		}
	}()

	// Limit the reader to maxEntryBytes to prevent decompression bombs.
	if _, copyErr := io.Copy(out, io.LimitReader(tr, maxEntryBytes)); copyErr != nil {
		return fmt.Errorf("extracting %s: %w", target, copyErr)
	}
	return nil
}

// extractSymlink recreates one symlink entry. Link targets must stay inside
// the extraction tree; absolute or escaping targets are rejected.
func extractSymlink(hdr *tar.Header, name, target string) error {
	link := filepath.FromSlash(hdr.Linkname)
	if filepath.IsAbs(link) || !filepath.IsLocal(filepath.Join(filepath.Dir(name), link)) {
		return fmt.Errorf("archive symlink %q -> %q escapes destination", hdr.Name, hdr.Linkname)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}

	// Re-extraction over an existing tree would otherwise fail with EEXIST.
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("replacing %s: %w", target, err)
	}

	if err := os.Symlink(link, target); err != nil {
		return fmt.Errorf("creating symlink %s: %w", target, err)
	}
	return nil
}
