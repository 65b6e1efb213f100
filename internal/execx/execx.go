package execx

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
)

// CommandRunner abstracts external command execution and the small set of
// filesystem probes the installer needs alongside it. All installer logic
// goes through this interface rather than calling os/exec directly, which
// keeps the package-manager, systemd, and make invocations testable.
type CommandRunner interface {
	// LookPath reports the absolute path of an executable, like exec.LookPath.
	LookPath(file string) (string, error)

	// CombinedOutput runs a command and returns its combined stdout+stderr,
	// trimmed of trailing whitespace. The returned output is valid even when
	// err is non-nil, so callers can include it in error messages.
	CombinedOutput(ctx context.Context, name string, args ...string) (string, error)

	// RunInteractive runs a command with the caller's stdio attached.
	// dir sets the working directory ("" for inherited), and extraEnv is
	// appended to the current process environment.
	RunInteractive(ctx context.Context, dir string, extraEnv map[string]string, name string, args ...string) error

	// ReadFile reads a file, like os.ReadFile. Exposed on the runner so
	// checks that read /etc/os-release, /etc/subuid, or sysctl files can
	// be faked in tests.
	ReadFile(path string) ([]byte, error)
}

// SystemRunner is the CommandRunner used in production. It executes real
// commands and touches the real filesystem.
type SystemRunner struct{}

// NewSystemRunner creates a SystemRunner.
func NewSystemRunner() *SystemRunner {
	return &SystemRunner{}
}

// LookPath finds the path to an executable on PATH.
func (r *SystemRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// CombinedOutput runs a command and captures stdout and stderr together.
// Some tools (docker, slirp4netns) print version strings to stderr, so the
// combined stream is what version checks want.
func (r *SystemRunner) CombinedOutput(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return strings.TrimSpace(buf.String()), err
}

// RunInteractive runs a command with the current process's stdio attached.
// This is used for long-running, user-visible invocations such as
// `make start-lumigator`, where streaming output matters more than capture.
func (r *SystemRunner) RunInteractive(ctx context.Context, dir string, extraEnv map[string]string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Drop any existing entry for the overridden keys first: with duplicate
	// variables in the environment, getenv picks the first match, so a
	// plain append would not override PATH or DOCKER_HOST.
	env := os.Environ()
	kept := env[:0]
	for _, kv := range env {
		name, _, _ := strings.Cut(kv, "=")
		if _, override := extraEnv[name]; !override {
			kept = append(kept, kv)
		}
	}
	for k, v := range extraEnv {
		kept = append(kept, k+"="+v)
	}
	cmd.Env = kept

	return cmd.Run()
}

// ReadFile reads the named file.
func (r *SystemRunner) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
