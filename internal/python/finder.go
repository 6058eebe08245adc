// SPDX-License-Identifier: MPL-2.0

package python

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/mod/semver"
)

const (
	// VersionScript is the inline program passed to an interpreter with -c
	// to print its version as "major.minor.patch".
	VersionScript = "import sys; version=sys.version_info; print('%d.%d.%d'%(version[0],version[1],version[2]))"

	// MinVersion is the oldest interpreter version accepted for building the
	// virtual environment.
	MinVersion = "3.6"
)

var (
	//nolint:gochecknoglobals // Test seam for interpreter probing.
	probeOutput = func(ctx context.Context, exe string, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, exe, args...).Output()
	}

	//nolint:gochecknoglobals // Test seam for filepath.EvalSymlinks().
	evalSymlinks = filepath.EvalSymlinks
)

type (
	// Interpreter is a discovered Python executable and its reported version.
	Interpreter struct {
		Path    string // Absolute executable path as found on PATH
		Version string // Version reported by the interpreter, e.g. "3.11.4"
	}

	// Finder discovers compatible Python interpreters on the host PATH.
	Finder struct {
		logger *log.Logger
	}

	// FinderOption configures a Finder during construction.
	FinderOption func(*Finder)
)

// WithFinderLogger overrides the logger used for per-candidate diagnostics.
func WithFinderLogger(logger *log.Logger) FinderOption {
	return func(f *Finder) {
		f.logger = logger
	}
}

// NewFinder creates a Finder with a stderr logger prefixed "python".
func NewFinder(opts ...FinderOption) *Finder {
	f := &Finder{
		logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "python"}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Find returns compatible interpreters in preference order: every PATH entry
// is scanned for python3 before python (with .exe suffixes on Windows),
// duplicates reached through symlinks are dropped, entries in ignore are
// skipped, and each survivor is probed for its version. Candidates that fail
// the probe or report a version older than MinVersion are dropped with a
// debug log. An empty result is valid and means discovery found nothing
// usable, not that discovery failed.
func (f *Finder) Find(ctx context.Context, ignore []string) []Interpreter {
	ignoreSet := make(map[string]struct{}, len(ignore))
	for _, p := range ignore {
		ignoreSet[filepath.Clean(p)] = struct{}{}
	}

	seen := make(map[string]struct{})
	var found []Interpreter

	for _, exe := range exeNames() {
		for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
			if ctx.Err() != nil {
				return found
			}
			if dir == "" {
				continue
			}

			candidate := filepath.Join(dir, exe)
			info, err := os.Stat(candidate)
			if err != nil || info.IsDir() {
				continue
			}

			if isForeignRuntime(candidate) {
				f.logger.Debug("skipping emulated runtime", "path", candidate)
				continue
			}

			resolved := resolvePath(candidate)
			if _, dup := seen[resolved]; dup {
				continue
			}
			seen[resolved] = struct{}{}

			if _, skip := ignoreSet[filepath.Clean(candidate)]; skip {
				f.logger.Debug("skipping ignored interpreter", "path", candidate)
				continue
			}

			interp, err := f.probe(ctx, candidate)
			if err != nil {
				f.logger.Debug("interpreter probe failed", "path", candidate, "error", err)
				continue
			}

			if !Compatible(interp.Version) {
				f.logger.Debug("interpreter too old", "path", candidate, "version", interp.Version)
				continue
			}

			found = append(found, interp)
		}
	}

	return found
}

// probe runs the candidate with a short version-printing script and parses
// the result.
func (f *Finder) probe(ctx context.Context, path string) (Interpreter, error) {
	out, err := probeOutput(ctx, path, "-c", VersionScript)
	if err != nil {
		return Interpreter{}, fmt.Errorf("running version probe: %w", err)
	}

	version := strings.TrimSpace(string(out))
	if !semver.IsValid("v" + version) {
		return Interpreter{}, fmt.Errorf("unexpected version output %q", version)
	}

	return Interpreter{Path: path, Version: version}, nil
}

// Compatible reports whether a version string like "3.11.4" meets MinVersion.
func Compatible(version string) bool {
	v := "v" + version
	if !semver.IsValid(v) {
		return false
	}
	return semver.Compare(v, "v"+MinVersion) >= 0
}

// exeNames returns the executable names to look for, most preferred first.
func exeNames() []string {
	if runtime.GOOS == "windows" {
		return []string{"python3.exe", "python.exe"}
	}
	return []string{"python3", "python"}
}

// isForeignRuntime reports whether a Windows candidate lives inside an MSYS
// or Cygwin tree. Those interpreters report POSIX-style paths that the rest
// of the toolchain cannot consume.
func isForeignRuntime(path string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	lower := strings.ToLower(path)
	return strings.Contains(lower, "msys") || strings.Contains(lower, "cygwin")
}

// resolvePath follows symlinks for deduplication, falling back to the
// cleaned input when resolution fails.
func resolvePath(path string) string {
	resolved, err := evalSymlinks(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return resolved
}
