// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/MohammedTaherR/pioinstaller/internal/config"
	"github.com/MohammedTaherR/pioinstaller/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug-level diagnostics
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "pioinstaller",
		Short: "Standalone installer for the PlatformIO Core virtual environment",
		Long: TitleStyle.Render("pioinstaller") + SubtitleStyle.Render(" - PlatformIO Core environment bootstrap") + `

pioinstaller prepares the isolated Python virtual environment ("penv")
that PlatformIO Core runs inside. It discovers the Python interpreters
installed on this machine, builds the environment with the first
construction strategy that works, records the environment state, and
brings the bundled pip up to date.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'pioinstaller create'
  2. Point your IDE at the reported environment directory

` + SubtitleStyle.Render("Examples:") + `
  pioinstaller create                 Build the environment in the default location
  pioinstaller create --penv-dir ~/pio/penv
  pioinstaller state                  Show the recorded environment state
  pioinstaller check python           List compatible Python interpreters`,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the platform config dir)")

	// Add subcommands
	rootCmd.AddCommand(newCreateCommand())
	rootCmd.AddCommand(newStateCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newConfigCommand())
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// loadCLIConfig loads configuration for a command invocation. An explicit
// --config path must load or the command aborts; the default path degrades
// to built-in defaults with a warning so fresh machines still work. The
// --verbose flag and the ui.verbose setting are merged in both directions.
func loadCLIConfig(ctx context.Context, stderr io.Writer) (*config.Config, error) {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		if cfgFile != "" {
			return nil, err
		}
		fmt.Fprintln(stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		cfg = config.DefaultConfig()
	}

	if verbose {
		cfg.UI.Verbose = true
	} else {
		verbose = cfg.UI.Verbose
	}

	return cfg, nil
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
