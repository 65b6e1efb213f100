package rootless

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/davidmanzanoai/install-new/internal/docker"
	"github.com/davidmanzanoai/install-new/internal/shellrc"
	"github.com/davidmanzanoai/install-new/internal/systemd"
)

// installedBinaries are the files the static bundles and extras place in
// the bin directory. Uninstall removes exactly these, never the whole
// directory, since ~/bin commonly holds unrelated tools.
var installedBinaries = []string{
	"docker",
	"dockerd",
	"docker-init",
	"docker-proxy",
	"containerd",
	"containerd-shim-runc-v2",
	"ctr",
	"runc",
	"dockerd-rootless.sh",
	"dockerd-rootless-setuptool.sh",
	"rootlesskit",
	"rootlesskit-docker-proxy",
	"vpnkit",
	"slirp4netns",
}

// Uninstall stops the rootless daemon and removes everything Install
// created. With purge, the daemon's data root (images, volumes) and
// daemon.json go too; without it, user data is left in place.
func (i *Installer) Uninstall(ctx context.Context, purge bool) error {
	if i.ctl.Available() {
		i.logf("disabling %s", systemd.UnitName)
		if err := i.ctl.Disable(ctx); err != nil {
			// The unit may never have been installed; keep going.
			i.logf("disable failed (continuing): %v", err)
		}
		if err := systemd.RemoveUnit(i.home); err != nil {
			return err
		}
	} else {
		out, err := i.runner.CombinedOutput(ctx, "sh", "-c", "pkill -f dockerd-rootless.sh || true")
		if err != nil {
			i.logf("stopping nohup daemon failed (continuing): %v: %s", err, out)
		}
	}

	for _, name := range installedBinaries {
		path := filepath.Join(i.BinDir(), name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	plugin := filepath.Join(i.home, ".docker", "cli-plugins", "docker-compose")
	if err := os.Remove(plugin); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", plugin, err)
	}

	if err := shellrc.Remove(i.home); err != nil {
		return err
	}

	if purge {
		return i.purgeData()
	}
	return nil
}

// purgeData removes the daemon's storage and configuration. The data root
// is read from daemon.json so a relocated data-root is removed, not the
// default path.
func (i *Installer) purgeData() error {
	cfgPath := docker.DefaultRootlessDaemonConfigPath(i.home)

	dataRoot := i.DataRoot()
	if cfg, err := docker.LoadDaemonConfig(cfgPath); err == nil && cfg.DataRoot != "" {
		dataRoot = cfg.DataRoot
	}

	i.logf("purging data root %s", dataRoot)
	if err := os.RemoveAll(dataRoot); err != nil {
		return fmt.Errorf("failed to remove data root %s: %w", dataRoot, err)
	}

	if err := os.Remove(cfgPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", cfgPath, err)
	}
	return nil
}
