// SPDX-License-Identifier: MPL-2.0

package penv

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/MohammedTaherR/pioinstaller/internal/config"
	"github.com/MohammedTaherR/pioinstaller/internal/python"
	"github.com/MohammedTaherR/pioinstaller/internal/testutil"
)

type (
	// fakeBuilder records its inputs and materializes the target directory
	// so the state recorder has somewhere to write.
	fakeBuilder struct {
		err           error
		gotCandidates []string
		gotTarget     string
	}

	// fakeUpdater records whether and with which environment it ran.
	fakeUpdater struct {
		result bool
		called bool
		gotEnv Environment
	}
)

func (b *fakeBuilder) Build(_ context.Context, candidates []string, target string) (Environment, error) {
	b.gotCandidates = slices.Clone(candidates)
	b.gotTarget = target
	if b.err != nil {
		return Environment{}, b.err
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return Environment{}, err
	}
	return Environment{Root: target}, nil
}

func (u *fakeUpdater) Update(_ context.Context, env Environment) bool {
	u.called = true
	u.gotEnv = env
	return u.result
}

// newTestOrchestrator wires an Orchestrator from scripted collaborators
// with installer version 9.9.9 and a silent logger.
func newTestOrchestrator(cfg *config.Config, finder *fakeFinder, builder *fakeBuilder, updater *fakeUpdater, runner *fakeRunner) *Orchestrator {
	return NewOrchestrator(cfg, "9.9.9",
		WithFinder(finder),
		WithBuilder(builder),
		WithUpdater(updater),
		WithProbeRunner(runner),
		WithLogger(log.New(io.Discard)),
	)
}

func TestOrchestrator_CreateEnvironment(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "penv")
	finder := &fakeFinder{interps: []python.Interpreter{
		{Path: "/usr/bin/python3", Version: "3.11.4"},
		{Path: "/usr/local/bin/python3", Version: "3.9.1"},
	}}
	builder := &fakeBuilder{}
	updater := &fakeUpdater{result: true}
	runner := &fakeRunner{captureOutput: []byte("3.11.4\n")}

	orch := newTestOrchestrator(&config.Config{}, finder, builder, updater, runner)
	root, err := orch.CreateEnvironment(context.Background(), CreateOptions{Dir: dir})
	if err != nil {
		t.Fatalf("CreateEnvironment failed: %v", err)
	}
	if root != dir {
		t.Errorf("root = %q, want %q", root, dir)
	}

	wantCandidates := []string{"/usr/bin/python3", "/usr/local/bin/python3"}
	if !reflect.DeepEqual(builder.gotCandidates, wantCandidates) {
		t.Errorf("candidates = %v, want %v", builder.gotCandidates, wantCandidates)
	}
	if builder.gotTarget != dir {
		t.Errorf("build target = %q, want %q", builder.gotTarget, dir)
	}

	state, err := LoadState(dir)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if state.InstallerVersion != "9.9.9" {
		t.Errorf("installer version = %q, want 9.9.9", state.InstallerVersion)
	}
	if state.Runtime.Version != "3.11.4" {
		t.Errorf("runtime version = %q, want 3.11.4", state.Runtime.Version)
	}
	if want := (Environment{Root: dir}).Python(); state.Runtime.Path != want {
		t.Errorf("runtime path = %q, want %q", state.Runtime.Path, want)
	}

	if !updater.called {
		t.Error("updater was not invoked")
	}
	if updater.gotEnv.Root != dir {
		t.Errorf("updater env root = %q, want %q", updater.gotEnv.Root, dir)
	}
}

func TestOrchestrator_CreateEnvironment_ExplicitDirWins(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	explicit := filepath.Join(base, "explicit")
	configured := filepath.Join(base, "configured")

	cfg := &config.Config{PenvDir: config.DirPath(configured)}
	builder := &fakeBuilder{}
	orch := newTestOrchestrator(cfg, &fakeFinder{}, builder, &fakeUpdater{result: true},
		&fakeRunner{captureOutput: []byte("3.11.4\n")})

	root, err := orch.CreateEnvironment(context.Background(), CreateOptions{Dir: explicit})
	if err != nil {
		t.Fatalf("CreateEnvironment failed: %v", err)
	}
	if root != explicit || builder.gotTarget != explicit {
		t.Errorf("target = %q (returned %q), want %q", builder.gotTarget, root, explicit)
	}
}

func TestOrchestrator_CreateEnvironment_ConfiguredPenvDir(t *testing.T) {
	t.Parallel()

	configured := filepath.Join(t.TempDir(), "custom-penv")
	cfg := &config.Config{PenvDir: config.DirPath(configured)}
	builder := &fakeBuilder{}
	orch := newTestOrchestrator(cfg, &fakeFinder{}, builder, &fakeUpdater{result: true},
		&fakeRunner{captureOutput: []byte("3.11.4\n")})

	root, err := orch.CreateEnvironment(context.Background(), CreateOptions{})
	if err != nil {
		t.Fatalf("CreateEnvironment failed: %v", err)
	}
	if root != configured || builder.gotTarget != configured {
		t.Errorf("target = %q (returned %q), want %q", builder.gotTarget, root, configured)
	}
}

func TestOrchestrator_CreateEnvironment_CoreDirDefault(t *testing.T) {
	t.Parallel()

	coreDir := filepath.Join(t.TempDir(), "pio-data")
	cfg := &config.Config{CoreDir: config.DirPath(coreDir)}
	builder := &fakeBuilder{}
	orch := newTestOrchestrator(cfg, &fakeFinder{}, builder, &fakeUpdater{result: true},
		&fakeRunner{captureOutput: []byte("3.11.4\n")})

	root, err := orch.CreateEnvironment(context.Background(), CreateOptions{})
	if err != nil {
		t.Fatalf("CreateEnvironment failed: %v", err)
	}
	if want := filepath.Join(coreDir, "penv"); root != want {
		t.Errorf("target = %q, want %q", root, want)
	}
}

func TestOrchestrator_CreateEnvironment_HomeDefault(t *testing.T) {
	// Not parallel: mutates the process environment.

	home := t.TempDir()
	t.Cleanup(testutil.SetHomeDir(t, home))

	builder := &fakeBuilder{}
	orch := newTestOrchestrator(&config.Config{}, &fakeFinder{}, builder, &fakeUpdater{result: true},
		&fakeRunner{captureOutput: []byte("3.11.4\n")})

	root, err := orch.CreateEnvironment(context.Background(), CreateOptions{})
	if err != nil {
		t.Fatalf("CreateEnvironment failed: %v", err)
	}
	if want := filepath.Join(home, ".platformio", "penv"); root != want {
		t.Errorf("target = %q, want %q", root, want)
	}
}

func TestOrchestrator_CreateEnvironment_BuildFailure(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "penv")
	builder := &fakeBuilder{err: &BuildError{Target: dir, Attempts: 6}}
	updater := &fakeUpdater{result: true}
	orch := newTestOrchestrator(&config.Config{}, &fakeFinder{}, builder, updater, &fakeRunner{})

	_, err := orch.CreateEnvironment(context.Background(), CreateOptions{Dir: dir})
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("expected ErrBuildFailed, got: %v", err)
	}
	if updater.called {
		t.Error("updater must not run after a failed build")
	}
}

func TestOrchestrator_CreateEnvironment_UpdateFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "penv")
	updater := &fakeUpdater{result: false}
	orch := newTestOrchestrator(&config.Config{}, &fakeFinder{}, &fakeBuilder{}, updater,
		&fakeRunner{captureOutput: []byte("3.11.4\n")})

	root, err := orch.CreateEnvironment(context.Background(), CreateOptions{Dir: dir})
	if err != nil {
		t.Fatalf("CreateEnvironment failed: %v", err)
	}
	if root != dir {
		t.Errorf("root = %q, want %q", root, dir)
	}
	if !updater.called {
		t.Error("updater was not invoked")
	}
}

func TestOrchestrator_CreateEnvironment_StateFailure(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "penv")
	updater := &fakeUpdater{result: true}
	runner := &fakeRunner{captureErr: errAttemptFailed}
	orch := newTestOrchestrator(&config.Config{}, &fakeFinder{}, &fakeBuilder{}, updater, runner)

	_, err := orch.CreateEnvironment(context.Background(), CreateOptions{Dir: dir})
	if err == nil {
		t.Fatal("expected error when state recording fails, got nil")
	}
	if !strings.Contains(err.Error(), "recording environment state") {
		t.Errorf("unexpected error: %v", err)
	}
	if updater.called {
		t.Error("updater must not run without a recorded state")
	}
}

func TestOrchestrator_CreateEnvironment_MergesIgnoreLists(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{IgnorePythons: []config.InterpreterPath{"/opt/pyenv/shims/python3"}}
	finder := &fakeFinder{}
	orch := newTestOrchestrator(cfg, finder, &fakeBuilder{}, &fakeUpdater{result: true},
		&fakeRunner{captureOutput: []byte("3.11.4\n")})

	opts := CreateOptions{
		Dir:           filepath.Join(t.TempDir(), "penv"),
		IgnorePythons: []string{"/usr/bin/python3.5"},
	}
	if _, err := orch.CreateEnvironment(context.Background(), opts); err != nil {
		t.Fatalf("CreateEnvironment failed: %v", err)
	}

	want := []string{"/opt/pyenv/shims/python3", "/usr/bin/python3.5"}
	if !reflect.DeepEqual(finder.gotIgnore, want) {
		t.Errorf("ignore list = %v, want %v", finder.gotIgnore, want)
	}
}
