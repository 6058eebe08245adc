// SPDX-License-Identifier: MPL-2.0

package python

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/MohammedTaherR/pioinstaller/internal/testutil"
)

// writeFakeInterpreter creates an executable placeholder named like a Python
// interpreter in dir, returning its full path. The probe seam is faked in
// these tests, so the file is never executed.
func writeFakeInterpreter(t *testing.T, dir, name string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("writing fake interpreter %s: %v", path, err)
	}
	return path
}

// overrideProbeSeams fakes the version probe and symlink resolution seams,
// restoring both when the test finishes. versions maps interpreter path to
// the version string the probe reports; paths not in the map fail the probe.
func overrideProbeSeams(t *testing.T, versions map[string]string) {
	t.Helper()

	origProbe := probeOutput
	origSymlinks := evalSymlinks
	t.Cleanup(func() {
		probeOutput = origProbe
		evalSymlinks = origSymlinks
	})

	probeOutput = func(_ context.Context, exe string, _ ...string) ([]byte, error) {
		v, ok := versions[exe]
		if !ok {
			return nil, fmt.Errorf("unknown interpreter %s", exe)
		}
		return []byte(v + "\n"), nil
	}
	evalSymlinks = func(p string) (string, error) { return p, nil }
}

// setSearchPath points PATH at the given directories for the duration of the
// test.
func setSearchPath(t *testing.T, dirs ...string) {
	t.Helper()

	restore := testutil.MustSetenv(t, "PATH", strings.Join(dirs, string(os.PathListSeparator)))
	t.Cleanup(restore)
}

func TestFinder_Find_PrefersPython3(t *testing.T) {
	// Not parallel: overrides package-level test seams and PATH.

	dir := t.TempDir()
	python3 := writeFakeInterpreter(t, dir, "python3")
	python := writeFakeInterpreter(t, dir, "python")
	setSearchPath(t, dir)
	overrideProbeSeams(t, map[string]string{
		python3: "3.11.4",
		python:  "3.9.1",
	})

	found := NewFinder().Find(context.Background(), nil)

	if len(found) != 2 {
		t.Fatalf("expected 2 interpreters, got %d: %+v", len(found), found)
	}
	if found[0].Path != python3 || found[0].Version != "3.11.4" {
		t.Errorf("expected python3 first, got %+v", found[0])
	}
	if found[1].Path != python || found[1].Version != "3.9.1" {
		t.Errorf("expected python second, got %+v", found[1])
	}
}

func TestFinder_Find_RespectsPathOrder(t *testing.T) {
	// Not parallel: overrides package-level test seams and PATH.

	dirA := t.TempDir()
	dirB := t.TempDir()
	first := writeFakeInterpreter(t, dirA, "python3")
	second := writeFakeInterpreter(t, dirB, "python3")
	setSearchPath(t, dirA, dirB)
	overrideProbeSeams(t, map[string]string{
		first:  "3.10.0",
		second: "3.12.1",
	})

	found := NewFinder().Find(context.Background(), nil)

	if len(found) != 2 {
		t.Fatalf("expected 2 interpreters, got %d: %+v", len(found), found)
	}
	if found[0].Path != first {
		t.Errorf("expected %s first, got %s", first, found[0].Path)
	}
	if found[1].Path != second {
		t.Errorf("expected %s second, got %s", second, found[1].Path)
	}
}

func TestFinder_Find_DeduplicatesResolvedPaths(t *testing.T) {
	// Not parallel: overrides package-level test seams and PATH.

	dir := t.TempDir()
	python3 := writeFakeInterpreter(t, dir, "python3")
	python := writeFakeInterpreter(t, dir, "python")
	setSearchPath(t, dir)
	overrideProbeSeams(t, map[string]string{
		python3: "3.11.4",
		python:  "3.11.4",
	})

	// Both names resolve to the same underlying binary, as when python is a
	// symlink to python3.
	evalSymlinks = func(string) (string, error) {
		return filepath.Join(dir, "python3.11"), nil
	}

	found := NewFinder().Find(context.Background(), nil)

	if len(found) != 1 {
		t.Fatalf("expected 1 interpreter after dedup, got %d: %+v", len(found), found)
	}
	if found[0].Path != python3 {
		t.Errorf("expected python3 to win, got %s", found[0].Path)
	}
}

func TestFinder_Find_SkipsIgnored(t *testing.T) {
	// Not parallel: overrides package-level test seams and PATH.

	dir := t.TempDir()
	python3 := writeFakeInterpreter(t, dir, "python3")
	python := writeFakeInterpreter(t, dir, "python")
	setSearchPath(t, dir)
	overrideProbeSeams(t, map[string]string{
		python3: "3.11.4",
		python:  "3.9.1",
	})

	found := NewFinder().Find(context.Background(), []string{python3})

	if len(found) != 1 {
		t.Fatalf("expected 1 interpreter, got %d: %+v", len(found), found)
	}
	if found[0].Path != python {
		t.Errorf("expected %s, got %s", python, found[0].Path)
	}
}

func TestFinder_Find_DropsIncompatibleVersions(t *testing.T) {
	// Not parallel: overrides package-level test seams and PATH.

	dir := t.TempDir()
	python3 := writeFakeInterpreter(t, dir, "python3")
	python := writeFakeInterpreter(t, dir, "python")
	setSearchPath(t, dir)
	overrideProbeSeams(t, map[string]string{
		python3: "3.5.2",
		python:  "3.9.1",
	})

	found := NewFinder().Find(context.Background(), nil)

	if len(found) != 1 {
		t.Fatalf("expected 1 interpreter, got %d: %+v", len(found), found)
	}
	if found[0].Path != python {
		t.Errorf("expected %s, got %s", python, found[0].Path)
	}
}

func TestFinder_Find_DropsFailingProbes(t *testing.T) {
	// Not parallel: overrides package-level test seams and PATH.

	dir := t.TempDir()
	writeFakeInterpreter(t, dir, "python3")
	python := writeFakeInterpreter(t, dir, "python")
	setSearchPath(t, dir)
	overrideProbeSeams(t, map[string]string{
		// python3 is absent from the map, so its probe errors out.
		python: "3.9.1",
	})

	found := NewFinder().Find(context.Background(), nil)

	if len(found) != 1 {
		t.Fatalf("expected 1 interpreter, got %d: %+v", len(found), found)
	}
	if found[0].Path != python {
		t.Errorf("expected %s, got %s", python, found[0].Path)
	}
}

func TestFinder_Find_EmptyPath(t *testing.T) {
	// Not parallel: overrides PATH.

	restore := testutil.MustSetenv(t, "PATH", "")
	t.Cleanup(restore)

	found := NewFinder().Find(context.Background(), nil)

	if len(found) != 0 {
		t.Errorf("expected no interpreters with empty PATH, got %+v", found)
	}
}

func TestFinder_Find_CanceledContext(t *testing.T) {
	// Not parallel: overrides package-level test seams and PATH.

	dir := t.TempDir()
	python3 := writeFakeInterpreter(t, dir, "python3")
	setSearchPath(t, dir)
	overrideProbeSeams(t, map[string]string{python3: "3.11.4"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	found := NewFinder().Find(ctx, nil)

	if len(found) != 0 {
		t.Errorf("expected no interpreters after cancellation, got %+v", found)
	}
}

func TestFinder_Probe_TrimsOutput(t *testing.T) {
	// Not parallel: overrides package-level test seams.

	overrideProbeSeams(t, nil)
	probeOutput = func(context.Context, string, ...string) ([]byte, error) {
		return []byte("3.10.2\n"), nil
	}

	interp, err := NewFinder().probe(context.Background(), "/usr/bin/python3")
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if interp.Version != "3.10.2" {
		t.Errorf("expected version 3.10.2, got %q", interp.Version)
	}
	if interp.Path != "/usr/bin/python3" {
		t.Errorf("expected probed path to round-trip, got %q", interp.Path)
	}
}

func TestFinder_Probe_RejectsMalformedOutput(t *testing.T) {
	// Not parallel: overrides package-level test seams.

	overrideProbeSeams(t, nil)
	probeOutput = func(context.Context, string, ...string) ([]byte, error) {
		return []byte("Python 3.9.1\n"), nil
	}

	_, err := NewFinder().probe(context.Background(), "/usr/bin/python3")
	if err == nil {
		t.Fatal("expected error for malformed version output, got nil")
	}
	if !strings.Contains(err.Error(), "unexpected version output") {
		t.Errorf("expected version parse error, got: %v", err)
	}
}

func TestCompatible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version string
		want    bool
	}{
		{"3.6.0", true},
		{"3.6", true},
		{"3.9.1", true},
		{"3.13.0", true},
		{"3.5.9", false},
		{"2.7.18", false},
		{"not-a-version", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			t.Parallel()

			if got := Compatible(tt.version); got != tt.want {
				t.Errorf("Compatible(%q) = %v, want %v", tt.version, got, tt.want)
			}
		})
	}
}
