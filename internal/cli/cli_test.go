// Package cli — cli_test.go contains unit tests for command wiring and the
// pure helper functions used by the install command.
//
// These tests verify flag registration and check filtering without
// requiring a Docker daemon or any external dependencies.
package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidmanzanoai/install-new/internal/doctor"
)

// TestRootCommand_Wiring verifies the subcommands and persistent flags are
// registered.
func TestRootCommand_Wiring(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"install", "uninstall", "start", "stop", "doctor"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"json", "verbose", "quiet"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing persistent flag %s", flag)
	}
}

// TestInstallCommand_Flags verifies the install flags and their shorthands.
func TestInstallCommand_Flags(t *testing.T) {
	cmd := NewInstallCommand()

	tests := []struct {
		name      string
		shorthand string
	}{
		{"directory", "d"},
		{"overwrite", "o"},
		{"main", "m"},
		{"rootless", "r"},
	}
	for _, tt := range tests {
		f := cmd.Flags().Lookup(tt.name)
		require.NotNil(t, f, "missing flag %s", tt.name)
		assert.Equal(t, tt.shorthand, f.Shorthand)
	}

	assert.NotNil(t, cmd.Flags().Lookup("skip-start"))
}

// TestUninstallCommand_Flags verifies the uninstall-specific flags exist.
func TestUninstallCommand_Flags(t *testing.T) {
	cmd := NewUninstallCommand()
	for _, name := range []string{"directory", "rootless", "purge", "yes", "keep-engine"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

// TestCheckByID verifies lookup and the zero value for unknown IDs.
func TestCheckByID(t *testing.T) {
	checks := []doctor.Check{
		{ID: doctor.IDDocker, Status: doctor.StatusOK},
		{ID: doctor.IDMake, Status: doctor.StatusMissing},
	}

	assert.Equal(t, doctor.StatusMissing, checkByID(checks, doctor.IDMake).Status)
	assert.Equal(t, "", checkByID(checks, "nope").ID)
}

// TestRequireBuildTools verifies missing make/git aborts with fix hints.
func TestRequireBuildTools(t *testing.T) {
	ok := []doctor.Check{
		{ID: doctor.IDMake, Name: "make", Status: doctor.StatusOK},
		{ID: doctor.IDGit, Name: "git", Status: doctor.StatusOK},
	}
	assert.NoError(t, requireBuildTools(ok))

	missing := []doctor.Check{
		{ID: doctor.IDMake, Name: "make", Status: doctor.StatusMissing,
			Fix: &doctor.FixCommand{Command: "sudo apt-get install -y make"}},
		{ID: doctor.IDGit, Name: "git", Status: doctor.StatusMissing},
	}
	err := requireBuildTools(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "make is not installed")
	assert.Contains(t, err.Error(), "apt-get install -y make")
	assert.Contains(t, err.Error(), "git is not installed")
}

// TestConfirm_AssumeYes verifies --yes bypasses the prompt entirely.
func TestConfirm_AssumeYes(t *testing.T) {
	ok, err := Confirm("proceed?", true)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestConfirm_NonTTY verifies the answer defaults to no when no terminal
// is attached (as under go test).
func TestConfirm_NonTTY(t *testing.T) {
	ok, err := Confirm("proceed?", false)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestGlyph verifies every status renders a distinct marker.
func TestGlyph(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range []doctor.Status{
		doctor.StatusOK, doctor.StatusMissing, doctor.StatusWarning, doctor.StatusSkipped,
	} {
		seen[glyph(s)] = true
	}
	assert.Len(t, seen, 4)
}
