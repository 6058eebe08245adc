// SPDX-License-Identifier: MPL-2.0

// Package core resolves the PlatformIO data directory layout: the core
// directory that holds installed platforms and packages, the penv
// subdirectory for the bootstrap virtual environment, and the shared
// download scratch area.
package core

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDirName is the core directory name under the user's home.
const DefaultDirName = ".platformio"

// Dir returns the PlatformIO core directory. A non-empty override wins;
// otherwise the directory defaults to ~/.platformio.
func Dir(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, DefaultDirName), nil
}

// PenvDir returns the default virtual environment directory under coreDir.
func PenvDir(coreDir string) string {
	return filepath.Join(coreDir, "penv")
}

// CacheTmpDir returns the download scratch directory shared by remote
// strategy downloads, get-pip fallbacks, and portable runtime fetches.
// It lives next to the penv directory, not inside it, so environment
// rebuilds can wipe the penv without touching it. Downloads create it on
// first use.
func CacheTmpDir(penvDir string) string {
	return filepath.Join(filepath.Dir(penvDir), ".cache", "tmp")
}
