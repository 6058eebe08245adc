// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MohammedTaherR/pioinstaller/internal/config"
	"github.com/MohammedTaherR/pioinstaller/internal/issue"
)

// newConfigCommand creates the `pioinstaller config` command tree.
func newConfigCommand() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pioinstaller configuration",
		Long: `Manage pioinstaller configuration.

Configuration is stored in:
  - Linux: ~/.config/pioinstaller/config.cue
  - macOS: ~/Library/Application Support/pioinstaller/config.cue
  - Windows: %APPDATA%\pioinstaller\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd.OutOrStdout())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd.OutOrStdout())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), cmd.OutOrStdout(), args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewProvider().Load(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, stdout, stderr io.Writer) error {
	cfg, usedPath, err := config.LoadResolved(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render("dark")
		fmt.Fprint(stderr, rendered)
		return err
	}

	keyStyle := PathStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(stdout)

	if usedPath != "" {
		fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("Config file"), usedPath)
	} else {
		fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(stdout)

	fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("core_dir"), renderDirValue(cfg.CoreDir.String()))
	fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("penv_dir"), renderDirValue(cfg.PenvDir.String()))

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s:\n", keyStyle.Render("ignore_pythons"))
	if len(cfg.IgnorePythons) == 0 {
		fmt.Fprintf(stdout, "  %s\n", SubtitleStyle.Render("(none configured)"))
	} else {
		for _, p := range cfg.IgnorePythons {
			fmt.Fprintf(stdout, "  - %s\n", valueStyle.Render(p.String()))
		}
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s:\n", keyStyle.Render("extra_venv_commands"))
	if len(cfg.ExtraVenvCommands) == 0 {
		fmt.Fprintf(stdout, "  %s\n", SubtitleStyle.Render("(none configured)"))
	} else {
		for _, tmpl := range cfg.ExtraVenvCommands {
			fmt.Fprintf(stdout, "  - %s\n", valueStyle.Render(tmpl.String()))
		}
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s:\n", keyStyle.Render("urls"))
	fmt.Fprintf(stdout, "  virtualenv: %s\n", valueStyle.Render(cfg.URLs.Virtualenv.String()))
	fmt.Fprintf(stdout, "  get_pip: %s\n", valueStyle.Render(cfg.URLs.GetPip.String()))
	fmt.Fprintf(stdout, "  portable_base: %s\n", valueStyle.Render(cfg.URLs.PortableBase.String()))

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(stdout, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

// renderDirValue shows a directory setting, marking unset values that fall
// back to the computed default.
func renderDirValue(value string) string {
	if value == "" {
		return SubtitleStyle.Render("(default)")
	}
	return SuccessStyle.Render(value)
}

func initConfig(stdout io.Writer) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	if err = config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Fprintf(stdout, "%s Created default configuration at %s/config.cue\n", SuccessStyle.Render("✓"), cfgDir)
	return nil
}

func showConfigPath(stdout io.Writer) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(stdout, "Config file: %s/config.cue\n", cfgDir)

	return nil
}

func setConfigValue(ctx context.Context, stdout io.Writer, key, value string) error {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		return err
	}

	switch key {
	case "core_dir":
		cfg.CoreDir = config.DirPath(value)

	case "penv_dir":
		cfg.PenvDir = config.DirPath(value)

	case "ui.verbose":
		cfg.UI.Verbose = value == "true" || value == "1"

	case "urls.virtualenv":
		cfg.URLs.Virtualenv = config.DownloadURL(value)

	case "urls.get_pip":
		cfg.URLs.GetPip = config.DownloadURL(value)

	case "urls.portable_base":
		cfg.URLs.PortableBase = config.DownloadURL(value)

	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: core_dir, penv_dir, ui.verbose, urls.virtualenv, urls.get_pip, urls.portable_base", key)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return fmt.Errorf("invalid value for %s: %w", key, errs[0])
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}
