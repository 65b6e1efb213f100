package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// partialSuffix marks in-flight downloads. A crash leaves at most one
// .partial file behind, never a truncated artifact under the final name.
const partialSuffix = ".partial"

// ProgressFunc receives download progress. total is -1 when the server did
// not send a Content-Length.
type ProgressFunc func(downloaded, total int64)

// Options configures a single download.
type Options struct {
	// URL is the source.
	URL string

	// Dest is the final file path. The parent directory is created.
	Dest string

	// SHA256 is the expected hex checksum; empty skips verification.
	SHA256 string

	// Mode is the file mode for the final artifact; 0 means 0644.
	Mode os.FileMode

	// OnProgress, when non-nil, is called as bytes arrive.
	OnProgress ProgressFunc
}

// Downloader performs HTTP downloads to local files.
type Downloader struct {
	client *http.Client
}

// NewDownloader creates a Downloader. The client has no timeout because
// static-binary bundles run to hundreds of megabytes on slow links; cancel
// through the context instead.
func NewDownloader() *Downloader {
	return &Downloader{
		client: &http.Client{},
	}
}

// Fetch downloads opts.URL to opts.Dest. The file is written under a
// .partial name and renamed into place only after the body is fully read
// and the checksum (when given) matches. Any failure removes the partial.
func (d *Downloader) Fetch(ctx context.Context, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(opts.Dest), 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	mode := opts.Mode
	if mode == 0 {
		mode = 0o644
	}

	tmpPath := opts.Dest + partialSuffix
	out, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("failed to create partial file: %w", err)
	}

	renamed := false
	defer func() {
		out.Close()
		if !renamed {
			os.Remove(tmpPath)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", opts.URL, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download of %s failed: %w", opts.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download of %s failed: HTTP %d", opts.URL, resp.StatusCode)
	}

	hasher := sha256.New()
	reader := io.Reader(io.TeeReader(resp.Body, hasher))
	if opts.OnProgress != nil {
		reader = &progressReader{
			reader:     reader,
			total:      resp.ContentLength,
			onProgress: opts.OnProgress,
		}
	}

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("download of %s failed: %w", opts.URL, err)
	}

	if opts.SHA256 != "" {
		got := hex.EncodeToString(hasher.Sum(nil))
		if got != opts.SHA256 {
			return fmt.Errorf("checksum mismatch for %s: expected %s, got %s", opts.URL, opts.SHA256, got)
		}
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, opts.Dest); err != nil {
		return fmt.Errorf("failed to move download into place: %w", err)
	}
	renamed = true
	return nil
}

// progressReader reports cumulative progress as it is read through.
type progressReader struct {
	reader     io.Reader
	total      int64
	downloaded int64
	onProgress ProgressFunc
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.downloaded += int64(n)
		r.onProgress(r.downloaded, r.total)
	}
	return n, err
}
