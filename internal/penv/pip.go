// SPDX-License-Identifier: MPL-2.0

package penv

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/MohammedTaherR/pioinstaller/internal/core"
	"github.com/MohammedTaherR/pioinstaller/internal/download"
)

const (
	// pipConfContent scopes installs to the environment by disabling
	// user-level package installs.
	pipConfContent = "[global]\nuser=no"

	// getPipScriptName is the filename the pip bootstrap script is cached
	// under.
	getPipScriptName = "get-pip.py"
)

type (
	// Updater upgrades pip inside a built environment: the module upgrade
	// first, the downloaded get-pip.py bootstrap as fallback.
	Updater struct {
		runner    CommandRunner
		fetch     Fetcher
		getPipURL string
		logger    *log.Logger
	}

	// UpdaterOption configures an Updater during construction.
	UpdaterOption func(*Updater)
)

// WithUpdateRunner overrides the command runner.
func WithUpdateRunner(r CommandRunner) UpdaterOption {
	return func(u *Updater) {
		u.runner = r
	}
}

// WithUpdateFetcher overrides the downloader used for the bootstrap script.
func WithUpdateFetcher(f Fetcher) UpdaterOption {
	return func(u *Updater) {
		u.fetch = f
	}
}

// WithGetPipURL sets the pip bootstrap script URL. An empty URL disables
// the fallback path.
func WithGetPipURL(url string) UpdaterOption {
	return func(u *Updater) {
		u.getPipURL = url
	}
}

// WithUpdateLogger overrides the diagnostics logger.
func WithUpdateLogger(logger *log.Logger) UpdaterOption {
	return func(u *Updater) {
		u.logger = logger
	}
}

// NewUpdater creates an Updater. Defaults: the os/exec runner, a fresh
// download client, no bootstrap URL.
func NewUpdater(opts ...UpdaterOption) *Updater {
	u := &Updater{
		runner: NewExecRunner(),
		logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "penv"}),
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.fetch == nil {
		u.fetch = download.NewClient()
	}
	return u
}

// Update upgrades the environment's pip and reports whether either path
// succeeded. It never fails the caller: a stale pip does not make the
// environment unusable, so failures of both paths land in the logs and
// come back as false.
func (u *Updater) Update(ctx context.Context, env Environment) bool {
	if err := u.writePipConf(env); err != nil {
		u.logger.Debug("writing pip.conf failed", "path", env.PipConfPath(), "error", err)
	}

	python := env.Python()
	err := u.runner.Run(ctx, python, "-m", "pip", "install", "-U", "pip")
	if err == nil {
		return true
	}
	u.logger.Debug("pip module upgrade failed", "python", python, "error", err)

	if u.getPipURL == "" {
		return false
	}
	script, err := u.fetch.FetchTo(ctx, u.getPipURL,
		filepath.Join(core.CacheTmpDir(env.Root), getPipScriptName))
	if err != nil {
		u.logger.Debug("downloading pip bootstrap failed", "error", err)
		return false
	}
	if err := u.runner.Run(ctx, python, script); err != nil {
		u.logger.Debug("pip bootstrap failed", "script", script, "error", err)
		return false
	}
	return true
}

// writePipConf writes the environment-scoped pip configuration.
func (u *Updater) writePipConf(env Environment) error {
	return os.WriteFile(env.PipConfPath(), []byte(pipConfContent), 0o644)
}
