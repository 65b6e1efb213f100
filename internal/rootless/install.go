package rootless

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/davidmanzanoai/install-new/internal/archive"
	"github.com/davidmanzanoai/install-new/internal/config"
	"github.com/davidmanzanoai/install-new/internal/docker"
	"github.com/davidmanzanoai/install-new/internal/download"
	"github.com/davidmanzanoai/install-new/internal/execx"
	"github.com/davidmanzanoai/install-new/internal/platform"
	"github.com/davidmanzanoai/install-new/internal/shellrc"
	"github.com/davidmanzanoai/install-new/internal/systemd"
)

// Fetcher downloads a URL to a local file, satisfied by *download.Downloader.
type Fetcher interface {
	Fetch(ctx context.Context, opts download.Options) error
}

// Installer bootstraps a rootless Docker daemon for one user.
type Installer struct {
	cfg     *config.Config
	info    *platform.Info
	runner  execx.CommandRunner
	fetcher Fetcher
	ctl     *systemd.Controller
	home    string
	logf    func(format string, args ...interface{})

	// OnProgress, when non-nil, receives download progress for the large
	// static bundles.
	OnProgress download.ProgressFunc
}

// NewInstaller creates an Installer. logf receives verbose progress lines.
func NewInstaller(
	cfg *config.Config,
	info *platform.Info,
	runner execx.CommandRunner,
	fetcher Fetcher,
	home string,
	logf func(format string, args ...interface{}),
) *Installer {
	return &Installer{
		cfg:     cfg,
		info:    info,
		runner:  runner,
		fetcher: fetcher,
		ctl:     systemd.NewController(runner),
		home:    home,
		logf:    logf,
	}
}

// BinDir is where the static binaries are installed.
func (i *Installer) BinDir() string {
	return filepath.Join(i.home, "bin")
}

// DataRoot is the rootless daemon's storage directory.
func (i *Installer) DataRoot() string {
	return filepath.Join(i.home, ".local", "share", "docker")
}

// Install performs the full rootless bootstrap: static binaries, the
// compose plugin, slirp4netns, daemon.json, the systemd user unit (or a
// nohup launch where systemd is absent), and the DOCKER_HOST shell export.
// The daemon is left running; callers should follow up with WaitForDaemon.
func (i *Installer) Install(ctx context.Context) error {
	if i.info.OS != platform.Linux {
		return fmt.Errorf("rootless mode is linux only; on macOS use Docker Desktop")
	}

	if err := i.installBinaries(ctx); err != nil {
		return err
	}
	if err := i.writeDaemonConfig(); err != nil {
		return err
	}
	if err := i.launchDaemon(ctx); err != nil {
		return err
	}
	return i.persistEnvironment()
}

// installBinaries downloads and unpacks the Docker static bundle, the
// rootless extras, the compose plugin, and slirp4netns.
func (i *Installer) installBinaries(ctx context.Context) error {
	binDir := i.BinDir()
	arch := i.info.DockerArch

	bundles := []struct {
		name string
		url  string
	}{
		{"docker", download.DockerStaticURL(i.info.OS, arch, i.cfg.DockerVersion)},
		{"docker-rootless-extras", download.DockerRootlessExtrasURL(arch, i.cfg.DockerVersion)},
	}

	tmpDir, err := os.MkdirTemp("", "install-new-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	for _, b := range bundles {
		dest := filepath.Join(tmpDir, b.name+".tgz")
		i.logf("downloading %s", b.url)
		if err := i.fetcher.Fetch(ctx, download.Options{
			URL:        b.url,
			Dest:       dest,
			OnProgress: i.OnProgress,
		}); err != nil {
			return err
		}

		f, err := os.Open(dest)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", dest, err)
		}
		i.logf("extracting %s into %s", b.name, binDir)
		extractErr := archive.ExtractTarGz(f, binDir)
		f.Close()
		if extractErr != nil {
			return extractErr
		}
	}

	i.logf("installing slirp4netns %s", i.cfg.Slirp4netnsVersion)
	if err := i.fetcher.Fetch(ctx, download.Options{
		URL:  download.Slirp4netnsURL(arch, i.cfg.Slirp4netnsVersion),
		Dest: filepath.Join(binDir, "slirp4netns"),
		Mode: 0o755,
	}); err != nil {
		return err
	}

	i.logf("installing compose plugin %s", i.cfg.ComposeVersion)
	pluginDir := filepath.Join(i.home, ".docker", "cli-plugins")
	if err := i.fetcher.Fetch(ctx, download.Options{
		URL:  download.ComposePluginURL(i.info.OS, arch, i.cfg.ComposeVersion),
		Dest: filepath.Join(pluginDir, "docker-compose"),
		Mode: 0o755,
	}); err != nil {
		return err
	}

	return nil
}

// writeDaemonConfig points the daemon's data-root at the per-user storage
// directory, preserving any settings already in the file.
func (i *Installer) writeDaemonConfig() error {
	path := docker.DefaultRootlessDaemonConfigPath(i.home)
	cfg, err := docker.LoadDaemonConfig(path)
	if err != nil {
		return err
	}
	cfg.SetDataRoot(i.DataRoot())
	i.logf("writing %s", path)
	return docker.WriteDaemonConfig(path, cfg)
}

// launchDaemon starts the rootless daemon, preferring a systemd user unit
// so it survives logout and comes back on login. Without systemd it falls
// back to a detached nohup launch.
func (i *Installer) launchDaemon(ctx context.Context) error {
	if i.ctl.Available() {
		i.logf("installing systemd user unit %s", systemd.UnitName)
		if err := systemd.WriteUnit(i.home, i.BinDir()); err != nil {
			return err
		}
		return i.ctl.EnableNow(ctx)
	}

	i.logf("systemctl not found, launching daemon with nohup")
	script := fmt.Sprintf("nohup %s >> %s 2>&1 &",
		filepath.Join(i.BinDir(), "dockerd-rootless.sh"),
		filepath.Join(i.home, ".docker-rootless.log"))
	out, err := i.runner.CombinedOutput(ctx, "sh", "-c", script)
	if err != nil {
		return fmt.Errorf("failed to launch rootless daemon: %w: %s", err, out)
	}
	return nil
}

// persistEnvironment exports DOCKER_HOST and the bin directory through the
// managed shell rc block so new shells talk to the rootless daemon.
func (i *Installer) persistEnvironment() error {
	i.logf("persisting DOCKER_HOST in %s", shellrc.EnvFilePath(i.home))
	return shellrc.Apply(i.home, map[string]string{
		"DOCKER_HOST": docker.RootlessHost(i.runtimeDir()),
		"PATH":        i.BinDir() + ":$PATH",
	})
}

// Host returns the Docker host URI of the daemon this installer manages.
func (i *Installer) Host() string {
	return docker.RootlessHost(i.runtimeDir())
}

func (i *Installer) runtimeDir() string {
	if i.cfg.XDGRuntimeDir != "" {
		return i.cfg.XDGRuntimeDir
	}
	return fmt.Sprintf("/run/user/%d", os.Getuid())
}
