// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/MohammedTaherR/pioinstaller/internal/issue"
	"github.com/MohammedTaherR/pioinstaller/internal/python"
)

// errNoInterpreters reports an empty discovery result from `check python`.
var errNoInterpreters = errors.New("no compatible python interpreter found")

// interpreterLister is the discovery seam for the check command.
type interpreterLister interface {
	Find(ctx context.Context, ignore []string) []python.Interpreter
}

// checkPythonParams bundles the dependencies for `check python`, enabling
// the core logic in runCheckPython to be tested without scanning PATH.
type checkPythonParams struct {
	stdout io.Writer
	stderr io.Writer
	finder interpreterLister
	ignore []string
}

// newCheckCommand creates the `pioinstaller check` command tree.
func newCheckCommand() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Inspect the host for PlatformIO prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	checkCmd.AddCommand(&cobra.Command{
		Use:   "python",
		Short: "List compatible Python interpreters",
		Long: `List compatible Python interpreters.

Scans every PATH entry for python3 and python executables, probes each
candidate for its version, and prints the ones a virtual environment
could be built from. Interpreters listed in the configured
ignore_pythons set are skipped. The same discovery runs at the start of
'pioinstaller create'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			cfg, err := loadCLIConfig(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatErrorForDisplay(err, verbose))
				return &ExitError{Code: 1, Err: err}
			}

			logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "python"})
			if cfg.UI.Verbose {
				logger.SetLevel(log.DebugLevel)
			}

			ignore := make([]string, 0, len(cfg.IgnorePythons))
			for _, p := range cfg.IgnorePythons {
				ignore = append(ignore, string(p))
			}

			p := checkPythonParams{
				stdout: cmd.OutOrStdout(),
				stderr: cmd.ErrOrStderr(),
				finder: python.NewFinder(python.WithFinderLogger(logger)),
				ignore: ignore,
			}
			if err := runCheckPython(cmd.Context(), p); err != nil {
				return &ExitError{Code: 1, Err: err}
			}

			return nil
		},
	})

	return checkCmd
}

// runCheckPython is the core discovery listing, separated from Cobra for
// testability. An empty result prints the installation guidance card and
// reports errNoInterpreters so the command exits non-zero.
func runCheckPython(ctx context.Context, p checkPythonParams) error {
	interps := p.finder.Find(ctx, p.ignore)
	if len(interps) == 0 {
		if rendered, err := issue.Get(issue.InterpreterNotFoundId).Render("dark"); err == nil {
			fmt.Fprint(p.stderr, rendered)
		}
		return errNoInterpreters
	}

	fmt.Fprintln(p.stdout, TitleStyle.Render("Compatible Python Interpreters"))
	fmt.Fprintln(p.stdout)
	for _, interp := range interps {
		fmt.Fprintf(p.stdout, "  %s (%s)\n", PathStyle.Render(interp.Path), SuccessStyle.Render(interp.Version))
	}

	return nil
}
