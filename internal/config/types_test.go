// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestDirPath_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    DirPath
		want    bool
		wantErr bool
	}{
		{"", true, false},
		{"/opt/platformio", true, false},
		{"relative/penv", true, false},
		{"   ", false, true},
		{"\t", false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.path), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.path.IsValid()
			if isValid != tt.want {
				t.Errorf("DirPath(%q).IsValid() = %v, want %v", tt.path, isValid, tt.want)
			}
			if tt.wantErr {
				if len(errs) == 0 {
					t.Fatalf("DirPath(%q).IsValid() returned no errors, want error", tt.path)
				}
				if !errors.Is(errs[0], ErrInvalidDirPath) {
					t.Errorf("error should wrap ErrInvalidDirPath, got: %v", errs[0])
				}
			} else if len(errs) > 0 {
				t.Errorf("DirPath(%q).IsValid() returned unexpected errors: %v", tt.path, errs)
			}
		})
	}
}

func TestDownloadURL_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url     DownloadURL
		want    bool
		wantErr bool
	}{
		{"", true, false},
		{"https://bootstrap.pypa.io/get-pip.py", true, false},
		{"http://mirror.internal/virtualenv.pyz", true, false},
		{"ftp://mirror.internal/virtualenv.pyz", false, true},
		{"file:///tmp/virtualenv.pyz", false, true},
		{"https://", false, true},
		{"not a url at all\x7f", false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.url), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.url.IsValid()
			if isValid != tt.want {
				t.Errorf("DownloadURL(%q).IsValid() = %v, want %v", tt.url, isValid, tt.want)
			}
			if tt.wantErr {
				if len(errs) == 0 {
					t.Fatalf("DownloadURL(%q).IsValid() returned no errors, want error", tt.url)
				}
				if !errors.Is(errs[0], ErrInvalidDownloadURL) {
					t.Errorf("error should wrap ErrInvalidDownloadURL, got: %v", errs[0])
				}
			} else if len(errs) > 0 {
				t.Errorf("DownloadURL(%q).IsValid() returned unexpected errors: %v", tt.url, errs)
			}
		})
	}
}

func TestCommandTemplate_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tmpl    CommandTemplate
		want    bool
		wantErr bool
	}{
		{"full template", "{python} -m venv --copies {penv}", true, false},
		{"quoted field", `"/opt/my python/bin/python" -m venv {penv}`, true, false},
		{"no python placeholder", "mkvirtualenv {penv}", true, false},
		{"empty", "", false, true},
		{"whitespace only", "   ", false, true},
		{"missing penv placeholder", "{python} -m venv /tmp/penv", false, true},
		{"unterminated quote", `{python} -m venv "{penv}`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.tmpl.IsValid()
			if isValid != tt.want {
				t.Errorf("CommandTemplate(%q).IsValid() = %v, want %v", tt.tmpl, isValid, tt.want)
			}
			if tt.wantErr {
				if len(errs) == 0 {
					t.Fatalf("CommandTemplate(%q).IsValid() returned no errors, want error", tt.tmpl)
				}
				if !errors.Is(errs[0], ErrInvalidCommandTemplate) {
					t.Errorf("error should wrap ErrInvalidCommandTemplate, got: %v", errs[0])
				}
			} else if len(errs) > 0 {
				t.Errorf("CommandTemplate(%q).IsValid() returned unexpected errors: %v", tt.tmpl, errs)
			}
		})
	}
}

func TestCommandTemplate_Fields(t *testing.T) {
	t.Parallel()

	tmpl := CommandTemplate(`{python} -m venv --prompt "pio env" {penv}`)
	fields, err := tmpl.Fields()
	if err != nil {
		t.Fatalf("Fields() returned error: %v", err)
	}

	want := []string{"{python}", "-m", "venv", "--prompt", "pio env", "{penv}"}
	if len(fields) != len(want) {
		t.Fatalf("Fields() = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("Fields()[%d] = %q, want %q", i, fields[i], want[i])
		}
	}
}

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		if valid, errs := cfg.IsValid(); !valid {
			t.Errorf("DefaultConfig().IsValid() = false, errs: %v", errs)
		}
	})

	t.Run("aggregates field errors", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{
			CoreDir:           "  ",
			IgnorePythons:     []InterpreterPath{""},
			ExtraVenvCommands: []CommandTemplate{"no placeholder"},
			URLs:              URLConfig{Virtualenv: "ftp://nope"},
		}
		valid, errs := cfg.IsValid()
		if valid {
			t.Fatal("IsValid() = true for config with four invalid fields")
		}
		if len(errs) != 1 {
			t.Fatalf("IsValid() returned %d errors, want 1 aggregate", len(errs))
		}
		var aggregate *InvalidConfigError
		if !errors.As(errs[0], &aggregate) {
			t.Fatalf("error is %T, want *InvalidConfigError", errs[0])
		}
		if len(aggregate.FieldErrors) != 4 {
			t.Errorf("aggregate has %d field errors, want 4", len(aggregate.FieldErrors))
		}
		if !errors.Is(errs[0], ErrInvalidConfig) {
			t.Error("aggregate should wrap ErrInvalidConfig")
		}
	})
}

func TestDefaultConfig_URLs(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.URLs.Virtualenv == "" {
		t.Error("DefaultConfig() has empty virtualenv URL")
	}
	if cfg.URLs.GetPip == "" {
		t.Error("DefaultConfig() has empty get-pip URL")
	}
	if valid, errs := cfg.URLs.IsValid(); !valid {
		t.Errorf("default URLs invalid: %v", errs)
	}
}
