// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"fmt"
	"runtime"
	"unicode"
)

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// IsWindows reports whether the current process runs on Windows. Callers use
// it to pick executable names (python.exe) and layout (Scripts vs bin).
func IsWindows() bool {
	return runtime.GOOS == Windows
}

// System returns the capitalized host operating system name, for example
// "Linux" or "Windows". Recorded in environment state files next to the
// kernel release.
func System() string {
	return osTitle(runtime.GOOS)
}

// Describe returns a human-readable host identifier in the form
// "<Os>-<release>-<arch>", for example "Linux-6.8.0-amd64", used in
// bootstrap diagnostics so bug reports carry the host fingerprint.
// The release segment is omitted when the host does not report one.
func Describe() string {
	if rel := Release(); rel != "" {
		return fmt.Sprintf("%s-%s-%s", osTitle(runtime.GOOS), rel, runtime.GOARCH)
	}
	return fmt.Sprintf("%s-%s", osTitle(runtime.GOOS), runtime.GOARCH)
}

// osTitle maps a GOOS value to its conventional capitalized spelling.
func osTitle(goos string) string {
	switch goos {
	case Windows:
		return "Windows"
	case Darwin:
		return "Darwin"
	case Linux:
		return "Linux"
	}
	r := []rune(goos)
	if len(r) == 0 {
		return goos
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
