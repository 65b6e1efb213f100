package model

import (
	"fmt"
	"strings"
)

// InstallMode selects how the Docker engine is installed and run.
//
// Rootful is the classic setup: the daemon runs as root and is installed
// through the platform package manager. Rootless runs dockerd under the
// invoking user with user namespaces, installed from the static binary
// bundles into the user's home directory.
type InstallMode string

const (
	// ModeRootful installs Docker system-wide via the package manager
	// (apt/dnf/pacman on Linux, Homebrew cask on macOS).
	ModeRootful InstallMode = "rootful"

	// ModeRootless installs the static Docker binaries under the user's
	// home directory and runs the daemon in a user namespace.
	ModeRootless InstallMode = "rootless"
)

// String returns the string representation of the install mode.
func (m InstallMode) String() string {
	return string(m)
}

// IsValid checks whether the InstallMode is one of the known modes.
func (m InstallMode) IsValid() bool {
	switch m {
	case ModeRootful, ModeRootless:
		return true
	default:
		return false
	}
}

// ParseInstallMode converts a string to an InstallMode.
// Returns an error if the string does not match any known mode.
func ParseInstallMode(s string) (InstallMode, error) {
	mode := InstallMode(strings.ToLower(s))
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid install mode: %q (valid: rootful, rootless)", s)
	}
	return mode, nil
}

// ExitCode defines the CLI exit codes. The original installer scripts use a
// flat contract — 0 on success, 1 on any detected failure — and this tool
// keeps that contract so existing automation keeps working.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitFailure indicates any detected failure: missing prerequisite,
	// unsupported OS or distribution, failed download or extraction,
	// failed daemon startup after the retry ceiling, or an
	// existing-directory conflict.
	ExitFailure ExitCode = 1
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given message.
// The exit code is always ExitFailure per the flat exit contract.
func NewCLIError(message string) *CLIError {
	return &CLIError{Code: ExitFailure, Message: message}
}

// Errorf creates a new CLIError with a formatted message.
func Errorf(format string, args ...interface{}) *CLIError {
	return &CLIError{Code: ExitFailure, Message: fmt.Sprintf(format, args...)}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(message string, err error) *CLIError {
	return &CLIError{Code: ExitFailure, Message: message, Err: err}
}
