package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFetch_Success verifies a plain download lands at the destination with
// the requested mode and no partial file left behind.
func TestFetch_Success(t *testing.T) {
	body := []byte("static binary payload")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "bundles", "docker.tgz")
	d := NewDownloader()

	err := d.Fetch(context.Background(), Options{URL: srv.URL, Dest: dest, Mode: 0o755})
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, data)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	assert.NoFileExists(t, dest+partialSuffix)
}

// TestFetch_ChecksumVerified verifies both the matching and mismatching
// checksum paths; a mismatch must remove the partial file.
func TestFetch_ChecksumVerified(t *testing.T) {
	body := []byte("compose plugin")
	sum := sha256.Sum256(body)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	d := NewDownloader()
	dir := t.TempDir()

	good := filepath.Join(dir, "ok")
	require.NoError(t, d.Fetch(context.Background(), Options{
		URL: srv.URL, Dest: good, SHA256: hex.EncodeToString(sum[:]),
	}))

	bad := filepath.Join(dir, "bad")
	err := d.Fetch(context.Background(), Options{
		URL: srv.URL, Dest: bad, SHA256: "deadbeef",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
	assert.NoFileExists(t, bad)
	assert.NoFileExists(t, bad+partialSuffix)
}

// TestFetch_HTTPError verifies non-200 responses fail and clean up.
func TestFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "missing")
	err := NewDownloader().Fetch(context.Background(), Options{URL: srv.URL, Dest: dest})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
	assert.NoFileExists(t, dest)
	assert.NoFileExists(t, dest+partialSuffix)
}

// TestFetch_Progress verifies the progress callback sees cumulative counts
// up to the content length.
func TestFetch_Progress(t *testing.T) {
	body := make([]byte, 64*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	var lastDownloaded, lastTotal int64
	calls := 0
	err := NewDownloader().Fetch(context.Background(), Options{
		URL:  srv.URL,
		Dest: filepath.Join(t.TempDir(), "blob"),
		OnProgress: func(downloaded, total int64) {
			calls++
			lastDownloaded = downloaded
			lastTotal = total
		},
	})
	require.NoError(t, err)
	assert.Greater(t, calls, 0)
	assert.Equal(t, int64(len(body)), lastDownloaded)
	assert.Equal(t, int64(len(body)), lastTotal)
}

// TestFetch_ContextCancelled verifies cancellation aborts the download.
func TestFetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("partial"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "cancelled")
	err := NewDownloader().Fetch(ctx, Options{URL: srv.URL, Dest: dest})
	assert.Error(t, err)
	assert.NoFileExists(t, dest)
}
