// SPDX-License-Identifier: MPL-2.0

package penv

import (
	"context"
	"errors"
	"slices"

	"github.com/MohammedTaherR/pioinstaller/internal/python"
)

// errAttemptFailed is the scripted failure fakes hand back.
var errAttemptFailed = errors.New("attempt failed")

// call records one command invocation observed by fakeRunner.
type call struct {
	name string
	args []string
}

// argv returns the full command line of the recorded invocation.
func (c call) argv() []string {
	return append([]string{c.name}, c.args...)
}

// fakeRunner scripts command outcomes and records every invocation. The
// zero value succeeds on everything.
type fakeRunner struct {
	calls []call
	// failTimes fails the first N Run invocations.
	failTimes int
	// fail decides per invocation; takes precedence over failTimes.
	fail func(name string, args []string) error
	// onRun observes each invocation before its outcome is decided.
	onRun func(name string, args []string)

	captureCalls  []call
	captureOutput []byte
	captureErr    error
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, call{name: name, args: slices.Clone(args)})
	if r.onRun != nil {
		r.onRun(name, args)
	}
	if r.fail != nil {
		return r.fail(name, args)
	}
	if len(r.calls) <= r.failTimes {
		return errAttemptFailed
	}
	return nil
}

func (r *fakeRunner) RunCapture(_ context.Context, name string, args ...string) ([]byte, error) {
	r.captureCalls = append(r.captureCalls, call{name: name, args: slices.Clone(args)})
	if r.captureErr != nil {
		return nil, r.captureErr
	}
	return r.captureOutput, nil
}

// fakeFetcher records requested URLs and pretends the download landed at
// the destination path.
type fakeFetcher struct {
	calls []string
	err   error
}

func (f *fakeFetcher) FetchTo(_ context.Context, rawURL, destPath string) (string, error) {
	f.calls = append(f.calls, rawURL)
	if f.err != nil {
		return "", f.err
	}
	return destPath, nil
}

// fakePortable scripts the portable runtime fallback.
type fakePortable struct {
	calls []string
	exe   string
	err   error
}

func (p *fakePortable) Fetch(_ context.Context, baseDir string) (string, error) {
	p.calls = append(p.calls, baseDir)
	if p.err != nil {
		return "", p.err
	}
	return p.exe, nil
}

// fakeFinder returns a fixed interpreter list and records the ignore set
// it was asked to apply.
type fakeFinder struct {
	interps   []python.Interpreter
	gotIgnore []string
}

func (f *fakeFinder) Find(_ context.Context, ignore []string) []python.Interpreter {
	f.gotIgnore = slices.Clone(ignore)
	return f.interps
}
