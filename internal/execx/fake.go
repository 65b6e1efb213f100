package execx

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
)

// FakeRunner is a scriptable CommandRunner for tests. Commands are matched
// by their space-joined invocation ("apt-get install -y uidmap") and return
// the scripted output/error. Every invocation is recorded in Calls.
//
// FakeRunner lives in the production package (not a _test.go file) so the
// test suites of dependent packages can share it.
type FakeRunner struct {
	mu sync.Mutex

	// Paths maps executable names to resolved paths for LookPath.
	// Executables absent from the map are reported as not found.
	Paths map[string]string

	// Outputs maps space-joined command lines to their combined output.
	Outputs map[string]string

	// Errs maps space-joined command lines to the error they return.
	Errs map[string]error

	// Files maps paths to file contents for ReadFile.
	Files map[string][]byte

	// Calls records every CombinedOutput/RunInteractive invocation,
	// space-joined, in order.
	Calls []string
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Paths:   make(map[string]string),
		Outputs: make(map[string]string),
		Errs:    make(map[string]error),
		Files:   make(map[string][]byte),
	}
}

// LookPath resolves from the Paths map.
func (f *FakeRunner) LookPath(file string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.Paths[file]; ok {
		return p, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", file)
}

// CombinedOutput returns the scripted output and error for the command line.
func (f *FakeRunner) CombinedOutput(_ context.Context, name string, args ...string) (string, error) {
	key := join(name, args)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, key)
	return f.Outputs[key], f.Errs[key]
}

// RunInteractive records the call and returns the scripted error.
func (f *FakeRunner) RunInteractive(_ context.Context, _ string, _ map[string]string, name string, args ...string) error {
	key := join(name, args)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, key)
	return f.Errs[key]
}

// ReadFile returns the scripted contents, or os.ErrNotExist.
func (f *FakeRunner) ReadFile(path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if data, ok := f.Files[path]; ok {
		return data, nil
	}
	return nil, os.ErrNotExist
}

// CalledWith reports whether any recorded call equals the given command line.
func (f *FakeRunner) CalledWith(name string, args ...string) bool {
	key := join(name, args)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if c == key {
			return true
		}
	}
	return false
}

func join(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
