// SPDX-License-Identifier: MPL-2.0

package penv

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/MohammedTaherR/pioinstaller/internal/config"
	"github.com/MohammedTaherR/pioinstaller/internal/core"
	"github.com/MohammedTaherR/pioinstaller/internal/download"
	"github.com/MohammedTaherR/pioinstaller/internal/python"
	"github.com/MohammedTaherR/pioinstaller/pkg/platform"
)

type (
	// InterpreterFinder yields candidate interpreters in preference order,
	// excluding the given paths.
	InterpreterFinder interface {
		Find(ctx context.Context, ignore []string) []python.Interpreter
	}

	// EnvironmentBuilder constructs an environment from ordered candidates.
	EnvironmentBuilder interface {
		Build(ctx context.Context, candidates []string, target string) (Environment, error)
	}

	// PackageUpdater upgrades the package manager inside an environment.
	PackageUpdater interface {
		Update(ctx context.Context, env Environment) bool
	}

	// Orchestrator sequences interpreter discovery, environment
	// construction, state recording, and the pip upgrade into one
	// bootstrap run.
	Orchestrator struct {
		cfg     *config.Config
		version string
		finder  InterpreterFinder
		builder EnvironmentBuilder
		updater PackageUpdater
		runner  CommandRunner
		logger  *log.Logger
	}

	// OrchestratorOption configures an Orchestrator during construction.
	OrchestratorOption func(*Orchestrator)

	// CreateOptions configures one bootstrap run.
	CreateOptions struct {
		// Dir overrides the environment directory, beating the configured
		// penv_dir and the core-directory default.
		Dir string
		// IgnorePythons excludes interpreter paths from discovery, on top
		// of the configured ignore list.
		IgnorePythons []string
	}
)

// WithFinder overrides interpreter discovery.
func WithFinder(f InterpreterFinder) OrchestratorOption {
	return func(o *Orchestrator) {
		o.finder = f
	}
}

// WithBuilder overrides environment construction.
func WithBuilder(b EnvironmentBuilder) OrchestratorOption {
	return func(o *Orchestrator) {
		o.builder = b
	}
}

// WithUpdater overrides the package manager upgrade.
func WithUpdater(u PackageUpdater) OrchestratorOption {
	return func(o *Orchestrator) {
		o.updater = u
	}
}

// WithProbeRunner overrides the runner used to probe the built
// environment's interpreter when recording state.
func WithProbeRunner(r CommandRunner) OrchestratorOption {
	return func(o *Orchestrator) {
		o.runner = r
	}
}

// WithLogger overrides the progress and diagnostics logger.
func WithLogger(logger *log.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator wires an Orchestrator from the given configuration. The
// config supplies the download URLs, extra construction commands, ignore
// list, and directory overrides; collaborators not replaced by options are
// built from it.
func NewOrchestrator(cfg *config.Config, installerVersion string, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		cfg:     cfg,
		version: installerVersion,
		runner:  NewExecRunner(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "penv"})
		if cfg.UI.Verbose {
			o.logger.SetLevel(log.DebugLevel)
		}
	}
	if o.finder == nil {
		o.finder = python.NewFinder(python.WithFinderLogger(o.logger))
	}
	if o.builder == nil || o.updater == nil {
		fetch := download.NewClient()
		if o.builder == nil {
			o.builder = NewBuilder(
				WithBuildRunner(o.runner),
				WithBuildFetcher(fetch),
				WithVirtualenvURL(string(cfg.URLs.Virtualenv)),
				WithExtraCommands(cfg.ExtraVenvCommands),
				WithPortableFetcher(python.NewRegistryFetcher(
					string(cfg.URLs.PortableBase),
					python.WithDownloader(fetch),
					python.WithRegistryLogger(o.logger),
				)),
				WithBuildLogger(o.logger),
			)
		}
		if o.updater == nil {
			o.updater = NewUpdater(
				WithUpdateRunner(o.runner),
				WithUpdateFetcher(fetch),
				WithGetPipURL(string(cfg.URLs.GetPip)),
				WithUpdateLogger(o.logger),
			)
		}
	}
	return o
}

// CreateEnvironment runs one full bootstrap: resolve the target directory,
// discover candidates, build the environment, record its state, upgrade
// pip. It returns the environment root. A failed build or state write is
// fatal; a failed pip upgrade is logged only.
func (o *Orchestrator) CreateEnvironment(ctx context.Context, opts CreateOptions) (string, error) {
	target, err := TargetDir(o.cfg, opts.Dir)
	if err != nil {
		return "", err
	}

	o.logger.Info("creating virtual environment", "dir", target)
	o.logger.Debug("bootstrap starting", "host", platform.Describe(), "installer", o.version)

	candidates := o.candidates(ctx, opts.IgnorePythons)
	if len(candidates) == 0 {
		o.logger.Debug("no compatible host interpreter found")
	}

	env, err := o.builder.Build(ctx, candidates, target)
	if err != nil {
		return "", err
	}
	o.logger.Info("virtual environment created", "dir", env.Root)

	if _, err := InitState(ctx, o.runner, env, o.version); err != nil {
		return "", fmt.Errorf("recording environment state: %w", err)
	}

	o.logger.Info("updating package manager")
	if o.updater.Update(ctx, env) {
		o.logger.Info("package manager updated")
	} else {
		o.logger.Warn("package manager update failed, continuing with the bundled version")
	}

	return env.Root, nil
}

// TargetDir resolves where the environment goes: explicit argument first,
// configured penv_dir next, penv under the core directory otherwise. The
// state and create commands share this resolution so they always agree on
// which directory they are talking about.
func TargetDir(cfg *config.Config, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if cfg.PenvDir != "" {
		return string(cfg.PenvDir), nil
	}
	coreDir, err := core.Dir(string(cfg.CoreDir))
	if err != nil {
		return "", fmt.Errorf("resolving core directory: %w", err)
	}
	return core.PenvDir(coreDir), nil
}

// candidates returns discovered interpreter paths minus the configured and
// per-run ignore lists.
func (o *Orchestrator) candidates(ctx context.Context, extraIgnore []string) []string {
	ignore := make([]string, 0, len(o.cfg.IgnorePythons)+len(extraIgnore))
	for _, p := range o.cfg.IgnorePythons {
		ignore = append(ignore, string(p))
	}
	ignore = append(ignore, extraIgnore...)

	found := o.finder.Find(ctx, ignore)
	paths := make([]string, 0, len(found))
	for _, interp := range found {
		o.logger.Debug("interpreter candidate", "path", interp.Path, "version", interp.Version)
		paths = append(paths, interp.Path)
	}
	return paths
}
