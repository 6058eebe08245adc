// SPDX-License-Identifier: MPL-2.0

package penv

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MohammedTaherR/pioinstaller/internal/config"
	"github.com/MohammedTaherR/pioinstaller/internal/core"
)

// virtualenvPyzName is the filename the virtualenv bootstrap archive is
// cached under.
const virtualenvPyzName = "virtualenv.pyz"

type (
	// Strategy is one recipe for constructing a virtual environment.
	// Attempt builds the environment at target using the candidate
	// interpreter; a nil return means the environment now exists at
	// target. Strategies hold no per-attempt state and may be retried
	// with different candidates.
	Strategy interface {
		Name() string
		Attempt(ctx context.Context, python, target string) error
	}

	// commandStrategy shells out with an argv derived from the candidate
	// and target.
	commandStrategy struct {
		name   string
		argv   func(python, target string) []string
		runner CommandRunner
	}

	// remoteStrategy downloads the virtualenv bootstrap archive into the
	// cache next to the target and runs it with the candidate interpreter.
	remoteStrategy struct {
		url    string
		fetch  Fetcher
		runner CommandRunner
	}

	// Fetcher downloads a URL to a destination path, returning the local
	// path written.
	Fetcher interface {
		FetchTo(ctx context.Context, rawURL, destPath string) (string, error)
	}
)

func (s *commandStrategy) Name() string { return s.name }

func (s *commandStrategy) Attempt(ctx context.Context, python, target string) error {
	argv := s.argv(python, target)
	return s.runner.Run(ctx, argv[0], argv[1:]...)
}

func (s *remoteStrategy) Name() string { return "virtualenv-download" }

func (s *remoteStrategy) Attempt(ctx context.Context, python, target string) error {
	dest := filepath.Join(core.CacheTmpDir(target), virtualenvPyzName)
	pyz, err := s.fetch.FetchTo(ctx, s.url, dest)
	if err != nil {
		return fmt.Errorf("downloading virtualenv bootstrap: %w", err)
	}
	return s.runner.Run(ctx, python, pyz, target)
}

// localStrategies returns the built-in construction recipes in priority
// order. The order prefers mechanisms needing no network access or extra
// tooling: the stdlib venv module first, then virtualenv as a module of
// the candidate, virtualenv as a standalone tool, and the simplified
// invocations of both after that.
func localStrategies(runner CommandRunner) []Strategy {
	return []Strategy{
		&commandStrategy{
			name: "venv-module",
			argv: func(python, target string) []string {
				return []string{python, "-m", "venv", target}
			},
			runner: runner,
		},
		&commandStrategy{
			name: "virtualenv-module",
			argv: func(python, target string) []string {
				return []string{python, "-m", "virtualenv", "-p", python, target}
			},
			runner: runner,
		},
		&commandStrategy{
			name: "virtualenv-exec",
			argv: func(python, target string) []string {
				return []string{"virtualenv", "-p", python, target}
			},
			runner: runner,
		},
		&commandStrategy{
			name: "virtualenv-module-simple",
			argv: func(python, target string) []string {
				return []string{python, "-m", "virtualenv", target}
			},
			runner: runner,
		},
		&commandStrategy{
			name: "virtualenv-exec-simple",
			argv: func(_, target string) []string {
				return []string{"virtualenv", target}
			},
			runner: runner,
		},
	}
}

// extraStrategies expands user-configured command templates into strategies
// slotted after the built-in list. Placeholders are substituted per attempt,
// so one template serves every candidate.
func extraStrategies(templates []config.CommandTemplate, runner CommandRunner) ([]Strategy, error) {
	strategies := make([]Strategy, 0, len(templates))
	for i, tpl := range templates {
		fields, err := tpl.Fields()
		if err != nil {
			return nil, fmt.Errorf("splitting extra venv command %d: %w", i+1, err)
		}
		if len(fields) == 0 {
			return nil, fmt.Errorf("extra venv command %d splits into zero fields", i+1)
		}
		strategies = append(strategies, &commandStrategy{
			name:   fmt.Sprintf("extra-%d", i+1),
			argv:   expandTemplate(fields),
			runner: runner,
		})
	}
	return strategies, nil
}

// expandTemplate returns an argv builder substituting the {python} and
// {penv} placeholders into the pre-split template fields.
func expandTemplate(fields []string) func(python, target string) []string {
	return func(python, target string) []string {
		argv := make([]string, len(fields))
		for i, f := range fields {
			f = strings.ReplaceAll(f, config.PlaceholderPython, python)
			f = strings.ReplaceAll(f, config.PlaceholderPenv, target)
			argv[i] = f
		}
		return argv
	}
}
