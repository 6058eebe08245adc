// SPDX-License-Identifier: MPL-2.0

package penv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/MohammedTaherR/pioinstaller/internal/config"
	"github.com/MohammedTaherR/pioinstaller/internal/download"
	"github.com/MohammedTaherR/pioinstaller/internal/python"
)

type (
	// Builder constructs a virtual environment by cascading through the
	// strategy list for each candidate interpreter, first success wins.
	Builder struct {
		runner        CommandRunner
		fetch         Fetcher
		portable      python.PortableFetcher
		virtualenvURL string
		extra         []config.CommandTemplate
		logger        *log.Logger
	}

	// BuilderOption configures a Builder during construction.
	BuilderOption func(*Builder)
)

// WithBuildRunner overrides the command runner used by every strategy.
func WithBuildRunner(r CommandRunner) BuilderOption {
	return func(b *Builder) {
		b.runner = r
	}
}

// WithBuildFetcher overrides the downloader used by the remote strategy.
func WithBuildFetcher(f Fetcher) BuilderOption {
	return func(b *Builder) {
		b.fetch = f
	}
}

// WithPortableFetcher sets the portable runtime fallback used after every
// candidate is exhausted. Without one the portable phase is skipped.
func WithPortableFetcher(p python.PortableFetcher) BuilderOption {
	return func(b *Builder) {
		b.portable = p
	}
}

// WithVirtualenvURL sets the virtualenv bootstrap archive URL. An empty URL
// removes the remote strategy from the attempt order.
func WithVirtualenvURL(url string) BuilderOption {
	return func(b *Builder) {
		b.virtualenvURL = url
	}
}

// WithExtraCommands appends user-configured construction templates, tried
// after the built-in strategies and before the remote bootstrap.
func WithExtraCommands(templates []config.CommandTemplate) BuilderOption {
	return func(b *Builder) {
		b.extra = templates
	}
}

// WithBuildLogger overrides the diagnostics logger.
func WithBuildLogger(logger *log.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder. Defaults: the os/exec runner, a fresh
// download client, no portable fallback, and a stderr logger prefixed
// "penv".
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		runner: NewExecRunner(),
		logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "penv"}),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.fetch == nil {
		b.fetch = download.NewClient()
	}
	return b
}

// Build tries every strategy for every candidate in order and returns the
// first environment produced. When all candidates are exhausted it fetches a
// portable runtime and gives it one identical pass, unless a candidate
// already came from a portable tree. Failure of every avenue returns a
// BuildError; context cancellation aborts the cascade instead of advancing
// to the next attempt.
func (b *Builder) Build(ctx context.Context, candidates []string, target string) (Environment, error) {
	strategies, err := b.strategyList()
	if err != nil {
		return Environment{}, err
	}

	attempts := 0
	for _, candidate := range candidates {
		env, ok := b.tryCandidate(ctx, strategies, candidate, target, &attempts)
		if ok {
			return env, nil
		}
		if ctx.Err() != nil {
			return Environment{}, fmt.Errorf("environment build canceled: %w", ctx.Err())
		}
	}

	if b.portable != nil && !anyPortable(candidates) {
		exe, err := b.portable.Fetch(ctx, filepath.Dir(target))
		switch {
		case errors.Is(err, python.ErrNoPortableRuntime):
			b.logger.Debug("no portable runtime available", "error", err)
		case err != nil:
			b.logger.Debug("portable runtime fetch failed", "error", err)
		default:
			b.logger.Debug("retrying with portable runtime", "python", exe)
			if env, ok := b.tryCandidate(ctx, strategies, exe, target, &attempts); ok {
				return env, nil
			}
		}
	}

	if ctx.Err() != nil {
		return Environment{}, fmt.Errorf("environment build canceled: %w", ctx.Err())
	}
	return Environment{}, &BuildError{Target: target, Attempts: attempts, Candidates: candidates}
}

// strategyList assembles the per-candidate attempt order: built-ins, then
// user extras, then the remote bootstrap.
func (b *Builder) strategyList() ([]Strategy, error) {
	strategies := localStrategies(b.runner)

	extras, err := extraStrategies(b.extra, b.runner)
	if err != nil {
		return nil, err
	}
	strategies = append(strategies, extras...)

	if b.virtualenvURL != "" {
		strategies = append(strategies, &remoteStrategy{
			url:    b.virtualenvURL,
			fetch:  b.fetch,
			runner: b.runner,
		})
	}
	return strategies, nil
}

// tryCandidate runs the strategy list against one interpreter. The target
// directory is wiped before every attempt so no partial build leaks into the
// next one; an attempt whose pre-clear fails is skipped entirely.
func (b *Builder) tryCandidate(ctx context.Context, strategies []Strategy, candidate, target string, attempts *int) (Environment, bool) {
	for _, s := range strategies {
		if ctx.Err() != nil {
			return Environment{}, false
		}

		if err := os.RemoveAll(target); err != nil {
			b.logger.Debug("clearing target directory failed", "dir", target, "error", err)
			continue
		}
		*attempts++

		b.logger.Debug("attempting strategy", "strategy", s.Name(), "python", candidate)
		if err := s.Attempt(ctx, candidate, target); err != nil {
			b.logger.Debug("strategy failed", "strategy", s.Name(), "python", candidate, "error", err)
			continue
		}

		b.logger.Debug("strategy succeeded", "strategy", s.Name(), "python", candidate)
		return Environment{Root: target}, true
	}
	return Environment{}, false
}

// anyPortable reports whether a candidate already runs from a portable
// tree, in which case fetching another portable runtime cannot change the
// outcome.
func anyPortable(candidates []string) bool {
	for _, c := range candidates {
		if python.IsPortable(c) {
			return true
		}
	}
	return false
}
