package archive

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
)

// ExtractZip unpacks a zip file into dest, stripping the first path
// component of every entry. GitHub source archives wrap the repository in a
// single <repo>-<ref>/ directory; stripping it makes dest the project root.
func ExtractZip(zipPath, dest string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", zipPath, err)
	}
	defer zr.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	for _, entry := range zr.File {
		rel, ok := stripFirstComponent(entry.Name)
		if !ok {
			continue
		}

		target, err := secureJoin(dest, rel)
		if err != nil {
			return err
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, entry.Mode().Perm()|0o700); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", target, err)
		}

		rc, err := entry.Open()
		if err != nil {
			return fmt.Errorf("failed to read archive entry %s: %w", entry.Name, err)
		}
		writeErr := writeFileFrom(rc, target, entry.Mode().Perm())
		rc.Close()
		if writeErr != nil {
			return writeErr
		}
	}

	return nil
}
