// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for pioinstaller.
//
// This package implements the Cobra command hierarchy for the pioinstaller
// CLI: the root command, the create/state/check subcommands that drive the
// virtual environment bootstrap, and the config command tree.
package cmd
