package cli

import (
	"os"
	"os/user"

	"golang.org/x/term"

	"github.com/davidmanzanoai/install-new/internal/config"
	"github.com/davidmanzanoai/install-new/internal/docker"
	"github.com/davidmanzanoai/install-new/internal/doctor"
	"github.com/davidmanzanoai/install-new/internal/download"
	"github.com/davidmanzanoai/install-new/internal/execx"
	"github.com/davidmanzanoai/install-new/internal/model"
	"github.com/davidmanzanoai/install-new/internal/platform"
	"github.com/davidmanzanoai/install-new/internal/project"
	"github.com/davidmanzanoai/install-new/internal/rootless"
)

// app bundles the dependencies every subcommand needs: resolved config,
// detected platform, the command runner, and constructors for the heavier
// pieces. Building it once per command keeps the run functions short.
type app struct {
	cfg    *config.Config
	info   *platform.Info
	runner execx.CommandRunner
	home   string
}

// newApp loads configuration and detects the host platform.
func newApp() (*app, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, model.WrapCLIError("failed to determine home directory", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, model.WrapCLIError("failed to load configuration", err)
	}

	runner := execx.NewSystemRunner()
	info, err := platform.Detect(runner)
	if err != nil {
		return nil, err
	}

	VerboseLog("detected %s/%s (family: %s)", info.OS, info.Arch, info.Family)
	return &app{cfg: cfg, info: info, runner: runner, home: home}, nil
}

// directory resolves the install directory: the -d flag when given,
// otherwise the configured default (~/lumigator).
func (a *app) directory(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.Directory
}

// connect dials the Docker daemon with socket autodetection. The wrapper
// exists because doctor checks want a Pinger, not the concrete client.
func (a *app) connect() (doctor.Pinger, error) {
	cli, err := docker.NewClient()
	if err != nil {
		return nil, err
	}
	return cli, nil
}

// connectHost dials an explicit Docker host, used right after a rootless
// bootstrap before DOCKER_HOST reaches the shell environment.
func connectHost(host string) func() (doctor.Pinger, error) {
	return func() (doctor.Pinger, error) {
		cli, err := docker.NewClientWithHost(host)
		if err != nil {
			return nil, err
		}
		return cli, nil
	}
}

// checker builds a doctor.Checker for this host.
func (a *app) checker() *doctor.Checker {
	return doctor.NewChecker(a.runner, a.info, a.connect)
}

// rootlessInstaller builds the rootless bootstrap for this host.
func (a *app) rootlessInstaller() *rootless.Installer {
	return rootless.NewInstaller(a.cfg, a.info, a.runner, download.NewDownloader(), a.home, VerboseLog)
}

// projectManager builds the Lumigator checkout manager.
func (a *app) projectManager() *project.Manager {
	return project.NewManager(a.cfg, a.runner, download.NewDownloader(),
		download.NewGitHubResolver(), VerboseLog)
}

// currentUser returns the invoking user's uid and name for the rootless
// preflight.
func currentUser() (int, string, error) {
	u, err := user.Current()
	if err != nil {
		return 0, "", model.WrapCLIError("failed to determine current user", err)
	}
	return os.Getuid(), u.Username, nil
}

// showProgress reports whether download progress bars should render:
// only on an interactive terminal, and never in quiet or JSON mode.
func showProgress() bool {
	return !quiet && !jsonOutput && term.IsTerminal(int(os.Stderr.Fd()))
}

// fetchProgress runs fn with a live progress bar when the terminal allows
// it. fn receives the ProgressFunc to hand to the downloader (nil when no
// bar is rendered).
func fetchProgress(label string, fn func(onProgress download.ProgressFunc) error) error {
	if !showProgress() {
		return fn(nil)
	}

	bar := download.StartProgressBar(label)
	err := fn(bar.Progress())
	bar.Finish()
	return err
}
