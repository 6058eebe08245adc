// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MohammedTaherR/pioinstaller/internal/issue"
	"github.com/MohammedTaherR/pioinstaller/internal/penv"
)

// environmentCreator is the orchestration seam for the create command, so
// tests can script outcomes without building a real environment.
type environmentCreator interface {
	CreateEnvironment(ctx context.Context, opts penv.CreateOptions) (string, error)
}

// createParams bundles the dependencies and flags for the create command,
// enabling the core logic in runCreate to be tested without a real Cobra
// command or live subprocesses.
type createParams struct {
	stdout        io.Writer
	stderr        io.Writer
	installer     environmentCreator
	verbose       bool
	penvDir       string   // --penv-dir override (empty = configured/default location)
	ignorePythons []string // --ignore-python values, merged into the config ignore list
}

// newCreateCommand creates the `pioinstaller create` command, which builds
// the PIO Core virtual environment end to end.
func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the PIO Core virtual environment",
		Long: `Create the PIO Core virtual environment.

The create command discovers the Python interpreters on this machine,
tries every known construction strategy for each of them until one
produces a working environment, falls back to a portable Python runtime
when none of them can, records the environment state, and upgrades the
bundled pip.

An existing environment at the target location is replaced.`,
		Example: `  # Build the environment in the default location
  pioinstaller create

  # Build it somewhere specific
  pioinstaller create --penv-dir ~/pio/penv

  # Skip a broken interpreter during discovery
  pioinstaller create --ignore-python /usr/local/bin/python3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			penvDir, _ := cmd.Flags().GetString("penv-dir")
			ignore, _ := cmd.Flags().GetStringArray("ignore-python")

			cfg, err := loadCLIConfig(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatErrorForDisplay(err, verbose))
				return &ExitError{Code: 1, Err: err}
			}

			p := createParams{
				stdout:        cmd.OutOrStdout(),
				stderr:        cmd.ErrOrStderr(),
				installer:     penv.NewOrchestrator(cfg, Version),
				verbose:       cfg.UI.Verbose,
				penvDir:       penvDir,
				ignorePythons: ignore,
			}

			if err := runCreate(cmd.Context(), p); err != nil {
				fmt.Fprintln(p.stderr, formatCreateError(err, p.verbose))
				return &ExitError{Code: classifyCreateExitCode(err), Err: err}
			}

			return nil
		},
	}

	cmd.Flags().String("penv-dir", "", "Destination directory for the virtual environment")
	cmd.Flags().StringArray("ignore-python", nil, "Interpreter path to exclude from discovery (repeatable)")

	return cmd
}

// runCreate is the core create logic, separated from Cobra for testability.
// All user-facing output goes through p.stdout and p.stderr.
func runCreate(ctx context.Context, p createParams) error {
	fmt.Fprintln(p.stdout, "Preparing the PIO Core virtual environment...")

	root, err := p.installer.CreateEnvironment(ctx, penv.CreateOptions{
		Dir:           p.penvDir,
		IgnorePythons: p.ignorePythons,
	})
	if err != nil {
		return err
	}

	env := penv.Environment{Root: root}
	fmt.Fprintln(p.stdout, SuccessStyle.Render("Virtual environment is ready."))
	fmt.Fprintf(p.stdout, "Location:    %s\n", PathStyle.Render(root))
	fmt.Fprintf(p.stdout, "Interpreter: %s\n", PathStyle.Render(env.Python()))

	return nil
}

// classifyCreateExitCode maps a create error to the appropriate process exit
// code. Exhausted builds use exit code 1 (user-correctable, guidance card
// printed); all other failures use exit code 2 (unexpected/transient).
func classifyCreateExitCode(err error) int {
	if errors.Is(err, penv.ErrBuildFailed) {
		return 1
	}
	return 2
}

// formatCreateError produces a user-friendly error message. A fully failed
// build renders the bug-report guidance card; everything else gets a plain
// styled error line.
func formatCreateError(err error, verboseMode bool) string {
	if errors.Is(err, penv.ErrBuildFailed) {
		rendered, renderErr := issue.Get(issue.EnvironmentBuildFailedId).Render("dark")
		if renderErr == nil {
			if verboseMode {
				return rendered + "\n" + ErrorStyle.Render("Error: ") + err.Error()
			}
			return rendered
		}
	}
	return ErrorStyle.Render("Error: ") + formatErrorForDisplay(err, verboseMode)
}
