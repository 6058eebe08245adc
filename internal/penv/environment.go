// SPDX-License-Identifier: MPL-2.0

package penv

import (
	"path/filepath"

	"github.com/MohammedTaherR/pioinstaller/pkg/platform"
)

const (
	stateFileName   = "state.json"
	pipConfFileName = "pip.conf"
)

// Environment is a built virtual environment on disk.
type Environment struct {
	// Root is the environment directory.
	Root string
}

// BinDir returns the executable directory inside the environment: Scripts
// on Windows, bin elsewhere.
func (e Environment) BinDir() string {
	if platform.IsWindows() {
		return filepath.Join(e.Root, "Scripts")
	}
	return filepath.Join(e.Root, "bin")
}

// Python returns the environment's interpreter path.
func (e Environment) Python() string {
	name := "python"
	if platform.IsWindows() {
		name = "python.exe"
	}
	return filepath.Join(e.BinDir(), name)
}

// StatePath returns where the environment's metadata record lives.
func (e Environment) StatePath() string {
	return filepath.Join(e.Root, stateFileName)
}

// PipConfPath returns where the environment's pip configuration lives.
func (e Environment) PipConfPath() string {
	return filepath.Join(e.Root, pipConfFileName)
}
