package shellrc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestApply verifies the env file contents and the ~/.bashrc source line.
func TestApply(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, ".bashrc"), []byte("alias ll='ls -l'\n"), 0o644))

	err := Apply(home, map[string]string{
		"DOCKER_HOST": "unix:///run/user/1000/docker.sock",
		"PATH":        "$HOME/bin:$PATH",
	})
	require.NoError(t, err)

	envData, err := os.ReadFile(EnvFilePath(home))
	require.NoError(t, err)
	assert.Contains(t, string(envData), `export DOCKER_HOST="unix:///run/user/1000/docker.sock"`)
	assert.Contains(t, string(envData), beginMarker)
	assert.Contains(t, string(envData), endMarker)

	rcData, err := os.ReadFile(filepath.Join(home, ".bashrc"))
	require.NoError(t, err)
	assert.Contains(t, string(rcData), "alias ll='ls -l'")
	assert.Contains(t, string(rcData), ".bashrc.docker")
}

// TestApply_Idempotent verifies repeated applies leave one source line.
func TestApply_Idempotent(t *testing.T) {
	home := t.TempDir()

	require.NoError(t, Apply(home, map[string]string{"DOCKER_HOST": "unix:///a"}))
	require.NoError(t, Apply(home, map[string]string{"DOCKER_HOST": "unix:///b"}))

	envData, err := os.ReadFile(EnvFilePath(home))
	require.NoError(t, err)
	assert.Contains(t, string(envData), `unix:///b`)
	assert.NotContains(t, string(envData), `unix:///a`)

	rcData, err := os.ReadFile(filepath.Join(home, ".bashrc"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(rcData), beginMarker))
}

// TestApply_CreatesBashrc verifies a missing ~/.bashrc is created.
func TestApply_CreatesBashrc(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, Apply(home, map[string]string{"DOCKER_HOST": "unix:///x"}))
	assert.FileExists(t, filepath.Join(home, ".bashrc"))
}

// TestRemove verifies removal restores ~/.bashrc and deletes the env file.
func TestRemove(t *testing.T) {
	home := t.TempDir()
	original := "export EDITOR=vim\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, ".bashrc"), []byte(original), 0o644))

	require.NoError(t, Apply(home, map[string]string{"DOCKER_HOST": "unix:///x"}))
	require.NoError(t, Remove(home))

	assert.NoFileExists(t, EnvFilePath(home))

	rcData, err := os.ReadFile(filepath.Join(home, ".bashrc"))
	require.NoError(t, err)
	assert.Contains(t, string(rcData), "export EDITOR=vim")
	assert.NotContains(t, string(rcData), beginMarker)
}

// TestRemove_NothingInstalled verifies removal is a no-op on a clean home.
func TestRemove_NothingInstalled(t *testing.T) {
	assert.NoError(t, Remove(t.TempDir()))
}
