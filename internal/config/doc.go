// SPDX-License-Identifier: MPL-2.0

// Package config handles installer configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/pioinstaller/config.cue (or XDG equivalent on
// Linux, ~/Library/Application Support/pioinstaller/config.cue on macOS,
// %APPDATA%\pioinstaller\config.cue on Windows), then overridden by the
// PLATFORMIO_CORE_DIR and PLATFORMIO_PENV_DIR environment variables. The package
// provides type-safe access to directory overrides, the interpreter ignore list,
// extra environment construction commands, and remote asset URLs.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
