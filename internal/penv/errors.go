// SPDX-License-Identifier: MPL-2.0

package penv

import (
	"errors"
	"fmt"
)

var (
	// ErrBuildFailed is the sentinel error wrapped by BuildError.
	ErrBuildFailed = errors.New("could not create virtual environment")
	// ErrStateNotFound is the sentinel error wrapped by StateNotFoundError.
	ErrStateNotFound = errors.New("environment state not found")
)

type (
	// BuildError reports that every candidate interpreter, construction
	// strategy, and the portable fallback failed to produce an environment.
	BuildError struct {
		// Target is the environment directory that could not be created.
		Target string
		// Attempts counts the construction attempts that were exhausted.
		Attempts int
		// Candidates lists the interpreter paths that were tried.
		Candidates []string
	}

	// StateNotFoundError reports a state load against an environment that
	// has no recorded metadata.
	StateNotFoundError struct {
		// Path is the state file that does not exist.
		Path string
	}
)

// Error implements the error interface for BuildError.
func (e *BuildError) Error() string {
	return fmt.Sprintf(
		"could not create the PIO Core virtual environment at %q (%d attempts); "+
			"please report to https://github.com/platformio/platformio-core-installer/issues",
		e.Target, e.Attempts)
}

// Unwrap returns ErrBuildFailed for errors.Is() compatibility.
func (e *BuildError) Unwrap() error { return ErrBuildFailed }

// Error implements the error interface for StateNotFoundError.
func (e *StateNotFoundError) Error() string {
	return fmt.Sprintf("could not find state file %q", e.Path)
}

// Unwrap returns ErrStateNotFound for errors.Is() compatibility.
func (e *StateNotFoundError) Unwrap() error { return ErrStateNotFound }
