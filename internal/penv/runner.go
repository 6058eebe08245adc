// SPDX-License-Identifier: MPL-2.0

package penv

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type (
	// CommandRunner executes external commands. Strategy attempts and
	// interpreter probes go through it so tests can observe and script
	// every invocation.
	CommandRunner interface {
		// Run executes the command and waits for it, returning an error
		// carrying combined output when the command fails.
		Run(ctx context.Context, name string, args ...string) error
		// RunCapture executes the command and returns its stdout.
		RunCapture(ctx context.Context, name string, args ...string) ([]byte, error)
	}

	execRunner struct{}
)

// NewExecRunner returns the CommandRunner backed by os/exec.
func NewExecRunner() CommandRunner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("running %s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("running %s: %w", name, err)
	}
	return nil
}

func (execRunner) RunCapture(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", name, err)
	}
	return out, nil
}
