package project

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidmanzanoai/install-new/internal/config"
	"github.com/davidmanzanoai/install-new/internal/download"
	"github.com/davidmanzanoai/install-new/internal/execx"
)

// zipFetcher answers every fetch with a canned source archive.
type zipFetcher struct {
	files map[string]string
	urls  []string
}

func (f *zipFetcher) Fetch(_ context.Context, opts download.Options) error {
	f.urls = append(f.urls, opts.URL)
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range f.files {
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := w.Write([]byte(body)); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(opts.Dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(opts.Dest, buf.Bytes(), 0o644)
}

func lumigatorFetcher() *zipFetcher {
	return &zipFetcher{files: map[string]string{
		"lumigator-main/Makefile":            "start-lumigator:\nstop-lumigator:\n",
		"lumigator-main/docker-compose.yaml": "services: {}\n",
	}}
}

func testManager(t *testing.T, fetcher Fetcher, resolver download.Resolver) (*Manager, *execx.FakeRunner, string) {
	t.Helper()
	home := t.TempDir()
	cfg := config.Default(home)
	runner := execx.NewFakeRunner()
	m := NewManager(&cfg, runner, fetcher, resolver, func(string, ...interface{}) {})
	return m, runner, filepath.Join(home, "lumigator")
}

// TestResolveRef covers the three resolution outcomes: forced main, a
// resolved release tag, and fallback to main when lookup fails.
func TestResolveRef(t *testing.T) {
	resolver := &download.StaticResolver{Tags: map[string]string{"mozilla-ai/lumigator": "v1.0.4"}}

	m, _, _ := testManager(t, lumigatorFetcher(), resolver)
	assert.Equal(t, "main", m.ResolveRef(context.Background(), true))
	assert.Equal(t, "v1.0.4", m.ResolveRef(context.Background(), false))

	m, _, _ = testManager(t, lumigatorFetcher(), &download.StaticResolver{})
	assert.Equal(t, "main", m.ResolveRef(context.Background(), false))
}

// TestInstall verifies the archive is fetched and unpacked with the
// top-level directory stripped.
func TestInstall(t *testing.T) {
	fetcher := lumigatorFetcher()
	m, _, dir := testManager(t, fetcher, nil)

	require.NoError(t, m.Install(context.Background(), dir, "main", false))

	assert.FileExists(t, filepath.Join(dir, "Makefile"))
	assert.FileExists(t, filepath.Join(dir, "docker-compose.yaml"))
	require.Len(t, fetcher.urls, 1)
	assert.Equal(t, "https://github.com/mozilla-ai/lumigator/archive/main.zip", fetcher.urls[0])
}

// TestInstall_ExistingDirectory verifies an existing target fails without
// overwrite and is left untouched.
func TestInstall_ExistingDirectory(t *testing.T) {
	fetcher := lumigatorFetcher()
	m, _, dir := testManager(t, fetcher, nil)

	require.NoError(t, os.MkdirAll(dir, 0o755))
	marker := filepath.Join(dir, "user-data.txt")
	require.NoError(t, os.WriteFile(marker, []byte("keep me"), 0o644))

	err := m.Install(context.Background(), dir, "main", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.FileExists(t, marker)
	assert.Empty(t, fetcher.urls)
}

// TestInstall_Overwrite verifies overwrite replaces the directory.
func TestInstall_Overwrite(t *testing.T) {
	m, _, dir := testManager(t, lumigatorFetcher(), nil)

	require.NoError(t, os.MkdirAll(dir, 0o755))
	marker := filepath.Join(dir, "stale.txt")
	require.NoError(t, os.WriteFile(marker, []byte("old"), 0o644))

	require.NoError(t, m.Install(context.Background(), dir, "main", true))
	assert.NoFileExists(t, marker)
	assert.FileExists(t, filepath.Join(dir, "Makefile"))
}

// TestInstall_NoMakefile verifies an archive without a Makefile is rejected.
func TestInstall_NoMakefile(t *testing.T) {
	fetcher := &zipFetcher{files: map[string]string{"repo-main/README.md": "hi"}}
	m, _, dir := testManager(t, fetcher, nil)

	err := m.Install(context.Background(), dir, "main", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Makefile")
}

// TestStartStop verifies make is invoked with the right target and that a
// missing Makefile is rejected up front.
func TestStartStop(t *testing.T) {
	m, runner, dir := testManager(t, lumigatorFetcher(), nil)
	require.NoError(t, m.Install(context.Background(), dir, "main", false))

	require.NoError(t, m.Start(context.Background(), dir, nil))
	assert.True(t, runner.CalledWith("make", "start-lumigator"))

	require.NoError(t, m.Stop(context.Background(), dir, map[string]string{"DOCKER_HOST": "unix:///x"}))
	assert.True(t, runner.CalledWith("make", "stop-lumigator"))

	err := m.Start(context.Background(), filepath.Join(dir, "missing"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run install first")
}
