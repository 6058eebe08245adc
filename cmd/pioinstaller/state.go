// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/MohammedTaherR/pioinstaller/internal/issue"
	"github.com/MohammedTaherR/pioinstaller/internal/penv"
)

// stateParams bundles the inputs for the state command, enabling the core
// logic in runState to be tested without a real Cobra command.
type stateParams struct {
	stdout  io.Writer
	penvDir string // resolved environment directory
}

// newStateCommand creates the `pioinstaller state` command, which
// pretty-prints the state record of a previously built environment.
func newStateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show the recorded virtual environment state",
		Long: `Show the recorded virtual environment state.

Every successful 'pioinstaller create' run writes a state.json file into
the environment directory describing when the environment was built,
which interpreter it runs, and which installer produced it. This command
reads that record back.`,
		Example: `  # Inspect the default environment
  pioinstaller state

  # Inspect an environment built somewhere specific
  pioinstaller state --penv-dir ~/pio/penv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			penvDir, _ := cmd.Flags().GetString("penv-dir")

			cfg, err := loadCLIConfig(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatErrorForDisplay(err, verbose))
				return &ExitError{Code: 1, Err: err}
			}

			dir, err := penv.TargetDir(cfg, penvDir)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatErrorForDisplay(err, verbose))
				return &ExitError{Code: 2, Err: err}
			}

			p := stateParams{stdout: cmd.OutOrStdout(), penvDir: dir}
			if err := runState(p); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatStateError(err, cfg.UI.Verbose))
				return &ExitError{Code: 1, Err: err}
			}

			return nil
		},
	}

	cmd.Flags().String("penv-dir", "", "Directory of the virtual environment to inspect")

	return cmd
}

// runState is the core state logic, separated from Cobra for testability.
func runState(p stateParams) error {
	state, err := penv.LoadState(p.penvDir)
	if err != nil {
		return err
	}

	keyStyle := PathStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(p.stdout, TitleStyle.Render("Virtual Environment State"))
	fmt.Fprintln(p.stdout)
	fmt.Fprintf(p.stdout, "%s: %s\n", keyStyle.Render("Location"), valueStyle.Render(p.penvDir))
	fmt.Fprintf(p.stdout, "%s: %s\n", keyStyle.Render("Created"),
		valueStyle.Render(time.Unix(state.CreatedOn, 0).Format(time.RFC1123)))
	fmt.Fprintf(p.stdout, "%s: %s (%s)\n", keyStyle.Render("Python"),
		valueStyle.Render(state.Runtime.Path), state.Runtime.Version)
	fmt.Fprintf(p.stdout, "%s: %s\n", keyStyle.Render("Installer"), valueStyle.Render(state.InstallerVersion))
	fmt.Fprintf(p.stdout, "%s: %s %s\n", keyStyle.Render("Platform"),
		valueStyle.Render(state.Platform.Platform), state.Platform.Release)

	return nil
}

// formatStateError produces a user-friendly error message. A missing state
// record renders the guidance card pointing at 'pioinstaller create'.
func formatStateError(err error, verboseMode bool) string {
	if errors.Is(err, penv.ErrStateNotFound) {
		rendered, renderErr := issue.Get(issue.StateNotFoundId).Render("dark")
		if renderErr == nil {
			if verboseMode {
				return rendered + "\n" + ErrorStyle.Render("Error: ") + err.Error()
			}
			return rendered
		}
	}
	return ErrorStyle.Render("Error: ") + formatErrorForDisplay(err, verboseMode)
}
