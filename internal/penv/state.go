// SPDX-License-Identifier: MPL-2.0

package penv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MohammedTaherR/pioinstaller/internal/python"
	"github.com/MohammedTaherR/pioinstaller/pkg/platform"
)

//nolint:gochecknoglobals // Test seam for deterministic state timestamps.
var timeNow = time.Now

type (
	// State is the metadata record persisted beside a built environment.
	// It is written once after a successful build and never mutated;
	// later runs read it to detect an existing environment. Absent fields
	// decode to zero values, so older records stay loadable.
	State struct {
		CreatedOn        int64        `json:"created_on"`
		Runtime          RuntimeInfo  `json:"runtime"`
		InstallerVersion string       `json:"installer_version"`
		Platform         PlatformInfo `json:"platform"`
	}

	// RuntimeInfo describes the interpreter inside the environment.
	RuntimeInfo struct {
		Path    string `json:"path"`
		Version string `json:"version"`
	}

	// PlatformInfo fingerprints the host the environment was built on.
	PlatformInfo struct {
		Platform string `json:"platform"`
		Release  string `json:"release"`
	}
)

// InitState probes the freshly built environment's interpreter for its
// version, assembles the metadata record, and persists it to the
// environment's state file.
func InitState(ctx context.Context, runner CommandRunner, env Environment, installerVersion string) (State, error) {
	out, err := runner.RunCapture(ctx, env.Python(), "-c", python.VersionScript)
	if err != nil {
		return State{}, fmt.Errorf("probing environment interpreter: %w", err)
	}

	state := State{
		CreatedOn: timeNow().Unix(),
		Runtime: RuntimeInfo{
			Path:    env.Python(),
			Version: strings.TrimSpace(string(out)),
		},
		InstallerVersion: installerVersion,
		Platform: PlatformInfo{
			Platform: platform.System(),
			Release:  platform.Release(),
		},
	}

	if _, err := SaveState(state, env.Root); err != nil {
		return State{}, err
	}
	return state, nil
}

// SaveState serializes the record to state.json under root, returning the
// written path. The bytes go to a temp file in the same directory first and
// replace the target with a rename, so an interrupted save never leaves a
// truncated record behind.
func SaveState(state State, root string) (string, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding state: %w", err)
	}

	path := Environment{Root: root}.StatePath()
	tmp, err := os.CreateTemp(root, stateFileName+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("creating temp state file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("closing temp state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("replacing state file: %w", err)
	}
	return path, nil
}

// LoadState reads the record persisted under root. A missing file is
// reported as a StateNotFoundError.
func LoadState(root string) (State, error) {
	path := Environment{Root: root}.StatePath()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return State{}, &StateNotFoundError{Path: path}
	}
	if err != nil {
		return State{}, fmt.Errorf("reading state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("decoding state %s: %w", path, err)
	}
	return state, nil
}
