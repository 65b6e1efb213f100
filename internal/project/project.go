package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/davidmanzanoai/install-new/internal/archive"
	"github.com/davidmanzanoai/install-new/internal/config"
	"github.com/davidmanzanoai/install-new/internal/download"
	"github.com/davidmanzanoai/install-new/internal/execx"
	"github.com/davidmanzanoai/install-new/internal/model"
)

// Fetcher downloads a URL to a local file, satisfied by *download.Downloader.
type Fetcher interface {
	Fetch(ctx context.Context, opts download.Options) error
}

// Manager installs and manages a Lumigator checkout.
type Manager struct {
	cfg      *config.Config
	runner   execx.CommandRunner
	fetcher  Fetcher
	resolver download.Resolver
	logf     func(format string, args ...interface{})

	// OnProgress, when non-nil, receives archive download progress.
	OnProgress download.ProgressFunc
}

// NewManager creates a Manager. resolver may be nil to skip release
// resolution and always install the main branch.
func NewManager(
	cfg *config.Config,
	runner execx.CommandRunner,
	fetcher Fetcher,
	resolver download.Resolver,
	logf func(format string, args ...interface{}),
) *Manager {
	return &Manager{
		cfg:      cfg,
		runner:   runner,
		fetcher:  fetcher,
		resolver: resolver,
		logf:     logf,
	}
}

// ResolveRef decides which archive ref to install. useMain forces the main
// branch; otherwise the latest release tag is looked up, falling back to
// main when resolution fails (offline, rate limited, no releases).
func (m *Manager) ResolveRef(ctx context.Context, useMain bool) string {
	if useMain || m.resolver == nil {
		return "main"
	}

	tag, err := m.resolver.LatestTag(ctx, m.cfg.LumigatorOwner, m.cfg.LumigatorRepo)
	if err != nil {
		m.logf("release lookup failed, falling back to main: %v", err)
		return "main"
	}
	return tag
}

// Install downloads the archive for ref and unpacks it into dir.
//
// An existing directory is an error unless overwrite is set; with overwrite
// the directory is removed and recreated. The unpacked tree must contain a
// Makefile, since everything downstream drives make targets.
func (m *Manager) Install(ctx context.Context, dir, ref string, overwrite bool) error {
	if _, err := os.Stat(dir); err == nil {
		if !overwrite {
			return model.Errorf("directory %s already exists; use --overwrite to replace it", dir)
		}
		m.logf("removing existing %s", dir)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to inspect %s: %w", dir, err)
	}

	url := download.ArchiveURL(m.cfg.LumigatorOwner, m.cfg.LumigatorRepo, ref)

	tmpDir, err := os.MkdirTemp("", "install-new-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	zipPath := filepath.Join(tmpDir, "lumigator.zip")
	m.logf("downloading %s", url)
	if err := m.fetcher.Fetch(ctx, download.Options{
		URL:        url,
		Dest:       zipPath,
		OnProgress: m.OnProgress,
	}); err != nil {
		return err
	}

	m.logf("unpacking into %s", dir)
	if err := archive.ExtractZip(zipPath, dir); err != nil {
		return err
	}

	if !hasMakefile(dir) {
		return model.Errorf("unpacked archive has no Makefile; %s@%s does not look like Lumigator",
			m.cfg.LumigatorOwner+"/"+m.cfg.LumigatorRepo, ref)
	}
	return nil
}

// hasMakefile reports whether dir contains the Makefile everything
// downstream drives.
func hasMakefile(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "Makefile"))
	return err == nil
}

// Remove deletes the install directory. Missing is not an error.
func (m *Manager) Remove(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	return nil
}
