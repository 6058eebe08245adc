// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

const (
	// EnvCoreDir relocates the whole PlatformIO data directory.
	EnvCoreDir = "PLATFORMIO_CORE_DIR"
	// EnvPenvDir relocates only the virtual environment root, taking
	// precedence over the computed <core_dir>/penv default.
	EnvPenvDir = "PLATFORMIO_PENV_DIR"

	// PlaceholderPython is replaced with the interpreter path when an
	// extra venv command template is expanded.
	PlaceholderPython = "{python}"
	// PlaceholderPenv is replaced with the environment target directory.
	// Every template must contain it, otherwise the command cannot place
	// the environment.
	PlaceholderPenv = "{penv}"
)

var (
	// ErrInvalidDirPath is the sentinel error wrapped by InvalidDirPathError.
	ErrInvalidDirPath = errors.New("invalid directory path")
	// ErrInvalidDownloadURL is the sentinel error wrapped by InvalidDownloadURLError.
	ErrInvalidDownloadURL = errors.New("invalid download URL")
	// ErrInvalidCommandTemplate is the sentinel error wrapped by InvalidCommandTemplateError.
	ErrInvalidCommandTemplate = errors.New("invalid command template")
	// ErrInvalidInterpreterPath is the sentinel error wrapped by InvalidInterpreterPathError.
	ErrInvalidInterpreterPath = errors.New("invalid interpreter path")
	// ErrInvalidURLConfig is the sentinel error wrapped by InvalidURLConfigError.
	ErrInvalidURLConfig = errors.New("invalid URL config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// DirPath represents a filesystem directory path in the configuration.
	// The zero value ("") is valid and means "use the computed default".
	// Non-zero values must not be whitespace-only.
	DirPath string

	// InvalidDirPathError is returned when a DirPath value is non-empty but
	// whitespace-only. It wraps ErrInvalidDirPath for errors.Is() compatibility.
	InvalidDirPathError struct {
		Value DirPath
	}

	// DownloadURL represents a remote asset location. The zero value ("")
	// is valid and disables the associated download (remote venv bootstrap,
	// get-pip fallback, or portable runtime). Non-zero values must be
	// absolute http or https URLs.
	DownloadURL string

	// InvalidDownloadURLError is returned when a DownloadURL value is not an
	// absolute http(s) URL. It wraps ErrInvalidDownloadURL for errors.Is().
	InvalidDownloadURLError struct {
		Value  DownloadURL
		Reason string
	}

	// CommandTemplate is a user-supplied environment construction command.
	// Templates are split with shell quoting rules and must contain the
	// {penv} placeholder; {python} is optional.
	CommandTemplate string

	// InvalidCommandTemplateError is returned when a CommandTemplate cannot
	// be split into fields or lacks the {penv} placeholder. It wraps
	// ErrInvalidCommandTemplate for errors.Is() compatibility.
	InvalidCommandTemplateError struct {
		Value  CommandTemplate
		Reason string
	}

	// InterpreterPath represents a Python interpreter path in the ignore
	// list. A valid path must be non-empty and not whitespace-only.
	InterpreterPath string

	// InvalidInterpreterPathError is returned when an InterpreterPath value
	// is empty or whitespace-only. It wraps ErrInvalidInterpreterPath.
	InvalidInterpreterPathError struct {
		Value InterpreterPath
	}

	// InvalidURLConfigError is returned when a URLConfig has invalid fields.
	// It wraps ErrInvalidURLConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidURLConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// URLConfig groups the remote asset locations the installer may fetch.
	URLConfig struct {
		// Virtualenv is the standalone virtualenv bootstrap script (.pyz).
		Virtualenv DownloadURL `json:"virtualenv" mapstructure:"virtualenv"`
		// GetPip is the get-pip.py bootstrap script used when in-place pip
		// upgrades fail.
		GetPip DownloadURL `json:"get_pip" mapstructure:"get_pip"`
		// PortableBase is the registry endpoint describing portable Python
		// runtime archives for each platform.
		PortableBase DownloadURL `json:"portable_base" mapstructure:"portable_base"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// Config holds the installer configuration.
	Config struct {
		// CoreDir relocates the PlatformIO data directory (default ~/.platformio).
		CoreDir DirPath `json:"core_dir" mapstructure:"core_dir"`
		// PenvDir relocates the virtual environment root (default <core_dir>/penv).
		PenvDir DirPath `json:"penv_dir" mapstructure:"penv_dir"`
		// IgnorePythons lists interpreter paths discovery must skip.
		IgnorePythons []InterpreterPath `json:"ignore_pythons" mapstructure:"ignore_pythons"`
		// ExtraVenvCommands are construction command templates tried after
		// the built-in strategies and before the remote bootstrap fallback.
		ExtraVenvCommands []CommandTemplate `json:"extra_venv_commands" mapstructure:"extra_venv_commands"`
		// URLs configures the remote asset locations.
		URLs URLConfig `json:"urls" mapstructure:"urls"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}
)

// String returns the string representation of the DirPath.
func (p DirPath) String() string { return string(p) }

// IsValid returns whether the DirPath is valid.
// The zero value ("") is valid (means "use the computed default").
// Non-zero values must not be whitespace-only.
func (p DirPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidDirPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidDirPathError.
func (e *InvalidDirPathError) Error() string {
	return fmt.Sprintf("invalid directory path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidDirPath for errors.Is() compatibility.
func (e *InvalidDirPathError) Unwrap() error { return ErrInvalidDirPath }

// String returns the string representation of the DownloadURL.
func (u DownloadURL) String() string { return string(u) }

// IsValid returns whether the DownloadURL is valid.
// The zero value ("") is valid (disables the associated download).
// Non-zero values must be absolute http or https URLs with a host.
func (u DownloadURL) IsValid() (bool, []error) {
	if u == "" {
		return true, nil
	}
	parsed, err := url.Parse(string(u))
	if err != nil {
		return false, []error{&InvalidDownloadURLError{Value: u, Reason: err.Error()}}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false, []error{&InvalidDownloadURLError{Value: u, Reason: "scheme must be http or https"}}
	}
	if parsed.Host == "" {
		return false, []error{&InvalidDownloadURLError{Value: u, Reason: "missing host"}}
	}
	return true, nil
}

// Error implements the error interface for InvalidDownloadURLError.
func (e *InvalidDownloadURLError) Error() string {
	return fmt.Sprintf("invalid download URL %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidDownloadURL for errors.Is() compatibility.
func (e *InvalidDownloadURLError) Unwrap() error { return ErrInvalidDownloadURL }

// String returns the string representation of the CommandTemplate.
func (t CommandTemplate) String() string { return string(t) }

// IsValid returns whether the CommandTemplate is valid.
// A valid template splits into at least one field under shell quoting rules
// and contains the {penv} placeholder.
func (t CommandTemplate) IsValid() (bool, []error) {
	if strings.TrimSpace(string(t)) == "" {
		return false, []error{&InvalidCommandTemplateError{Value: t, Reason: "must be non-empty"}}
	}
	fields, err := shell.Fields(string(t), nil)
	if err != nil {
		return false, []error{&InvalidCommandTemplateError{Value: t, Reason: err.Error()}}
	}
	if len(fields) == 0 {
		return false, []error{&InvalidCommandTemplateError{Value: t, Reason: "splits into zero fields"}}
	}
	if !strings.Contains(string(t), PlaceholderPenv) {
		return false, []error{&InvalidCommandTemplateError{Value: t, Reason: "missing " + PlaceholderPenv + " placeholder"}}
	}
	return true, nil
}

// Fields splits the template into argv fields using shell quoting rules.
// Callers must have validated the template first.
func (t CommandTemplate) Fields() ([]string, error) {
	return shell.Fields(string(t), nil)
}

// Error implements the error interface for InvalidCommandTemplateError.
func (e *InvalidCommandTemplateError) Error() string {
	return fmt.Sprintf("invalid command template %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidCommandTemplate for errors.Is() compatibility.
func (e *InvalidCommandTemplateError) Unwrap() error { return ErrInvalidCommandTemplate }

// String returns the string representation of the InterpreterPath.
func (p InterpreterPath) String() string { return string(p) }

// IsValid returns whether the InterpreterPath is valid.
// A valid path must be non-empty and not whitespace-only.
func (p InterpreterPath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidInterpreterPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidInterpreterPathError.
func (e *InvalidInterpreterPathError) Error() string {
	return fmt.Sprintf("invalid interpreter path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidInterpreterPath for errors.Is() compatibility.
func (e *InvalidInterpreterPathError) Unwrap() error { return ErrInvalidInterpreterPath }

// IsValid returns whether the URLConfig has valid fields.
// It delegates to each DownloadURL's IsValid().
func (c URLConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Virtualenv.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.GetPip.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.PortableBase.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidURLConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidURLConfigError.
func (e *InvalidURLConfigError) Error() string {
	return fmt.Sprintf("invalid URL config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidURLConfig for errors.Is() compatibility.
func (e *InvalidURLConfigError) Unwrap() error { return ErrInvalidURLConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to CoreDir.IsValid(), PenvDir.IsValid(), each ignore and
// template entry's IsValid(), and URLs.IsValid(). UI has only bool fields
// and needs no validation.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.CoreDir.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.PenvDir.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, entry := range c.IgnorePythons {
		if valid, fieldErrs := entry.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	for _, tmpl := range c.ExtraVenvCommands {
		if valid, fieldErrs := tmpl.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.URLs.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the built-in configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		URLs: URLConfig{
			Virtualenv:   "https://bootstrap.pypa.io/virtualenv/virtualenv.pyz",
			GetPip:       "https://bootstrap.pypa.io/get-pip.py",
			PortableBase: "https://api.registry.platformio.org/v3/packages/platformio/tool/python-portable",
		},
		UI: UIConfig{
			Verbose: false,
		},
	}
}
