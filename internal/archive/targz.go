package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractTarGz unpacks a gzipped tarball into dest, stripping the first
// path component of every entry. Docker's bundles nest everything under a
// "docker/" directory; stripping it drops the binaries directly into the
// destination (typically ~/bin).
//
// Regular files, directories, and symlinks are supported; file modes are
// preserved so the extracted binaries stay executable.
func ExtractTarGz(r io.Reader, dest string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}

		rel, ok := stripFirstComponent(hdr.Name)
		if !ok {
			// The top-level directory entry itself.
			continue
		}

		target, err := secureJoin(dest, rel)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("failed to create directory for %s: %w", target, err)
			}
			if err := writeFileFrom(tr, target, os.FileMode(hdr.Mode)); err != nil {
				return err
			}

		case tar.TypeSymlink:
			// Reject absolute or escaping link targets.
			if filepath.IsAbs(hdr.Linkname) ||
				strings.HasPrefix(filepath.Clean(filepath.Join(filepath.Dir(rel), hdr.Linkname)), "..") {
				return fmt.Errorf("refusing symlink %q -> %q: escapes extraction root", hdr.Name, hdr.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("failed to create directory for %s: %w", target, err)
			}
			os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return fmt.Errorf("failed to create symlink %s: %w", target, err)
			}

		default:
			// Hard links, devices, and other entry types do not occur in
			// Docker bundles; skip them rather than fail.
		}
	}
}

// stripFirstComponent removes the leading path component from a slash-
// separated archive entry name. Returns ok=false when nothing remains.
func stripFirstComponent(name string) (string, bool) {
	name = strings.TrimPrefix(name, "./")
	_, rest, found := strings.Cut(name, "/")
	if !found || rest == "" {
		return "", false
	}
	return rest, true
}

// secureJoin joins rel onto dest and verifies the result stays inside dest.
func secureJoin(dest, rel string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(rel))
	cleanDest := filepath.Clean(dest) + string(os.PathSeparator)
	if !strings.HasPrefix(target, cleanDest) {
		return "", fmt.Errorf("refusing entry %q: escapes extraction root", rel)
	}
	return target, nil
}

// writeFileFrom streams r into a new file at target with the given mode.
func writeFileFrom(r io.Reader, target string, mode os.FileMode) error {
	f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return f.Close()
}
