// Package cli — install.go implements the "install-new install" command.
//
// Install is the end-to-end path: make sure Docker and its prerequisites
// are present (installing them when not), fetch and unpack Lumigator, run
// `make start-lumigator`, and wait for the health endpoint. Each stage is
// skipped when already satisfied, so re-running install on a healthy host
// is cheap and safe.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidmanzanoai/install-new/internal/docker"
	"github.com/davidmanzanoai/install-new/internal/doctor"
	"github.com/davidmanzanoai/install-new/internal/download"
	"github.com/davidmanzanoai/install-new/internal/model"
	"github.com/davidmanzanoai/install-new/internal/pkgmgr"
	"github.com/davidmanzanoai/install-new/internal/platform"
	"github.com/davidmanzanoai/install-new/internal/project"
	"github.com/davidmanzanoai/install-new/internal/rootless"
)

// installOptions holds the install command's flag values.
type installOptions struct {
	directory string
	overwrite bool
	useMain   bool
	rootless  bool
	skipStart bool
}

// NewInstallCommand creates the "install" cobra command.
func NewInstallCommand() *cobra.Command {
	opts := &installOptions{}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install Docker and Lumigator, then start it",
		Long: `Install everything Lumigator needs and bring it up.

Docker is installed through the platform package manager (apt, dnf,
pacman, or the Homebrew cask on macOS). With --rootless the static
binaries are installed under ~/bin instead and the daemon runs as the
current user, with no sudo and no system packages.

Lumigator itself is downloaded as a GitHub archive of the latest release
(or the main branch with --main) and unpacked into the install directory.

Examples:
  install-new install
  install-new install --rootless
  install-new install -d ~/work/lumigator --main --overwrite`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.directory, "directory", "d", "", "Install directory (default ~/lumigator)")
	cmd.Flags().BoolVarP(&opts.overwrite, "overwrite", "o", false, "Replace an existing install directory")
	cmd.Flags().BoolVarP(&opts.useMain, "main", "m", false, "Install the main branch instead of the latest release")
	cmd.Flags().BoolVarP(&opts.rootless, "rootless", "r", false, "Install rootless Docker (Linux only, no sudo)")
	cmd.Flags().BoolVar(&opts.skipStart, "skip-start", false, "Install everything but do not start Lumigator")

	return cmd
}

// runInstall is the main logic function for the install command.
func runInstall(ctx context.Context, opts *installOptions) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if opts.rootless && a.info.OS != platform.Linux {
		return model.NewCLIError("--rootless is linux only; on macOS Docker Desktop already runs unprivileged")
	}

	// Stage 1: Docker engine, compose plugin, and build tools.
	extraEnv, err := ensureDocker(ctx, a, opts.rootless)
	if err != nil {
		return err
	}

	// Stage 2: the Lumigator checkout.
	dir := a.directory(opts.directory)
	pm := a.projectManager()
	ref := pm.ResolveRef(ctx, opts.useMain)

	Infof("Installing Lumigator %s into %s", ref, dir)
	err = fetchProgress("lumigator", func(onProgress download.ProgressFunc) error {
		pm.OnProgress = onProgress
		return pm.Install(ctx, dir, ref, opts.overwrite)
	})
	if err != nil {
		return err
	}

	if opts.skipStart {
		printInstallResult(dir, ref, opts.rootless, "")
		return nil
	}

	// Stage 3: port preflight, then start.
	if err := checkPublishedPorts(dir); err != nil {
		return err
	}

	Infof("Starting Lumigator (make start-lumigator)")
	if err := pm.Start(ctx, dir, extraEnv); err != nil {
		return err
	}

	// Stage 4: wait for the application to answer.
	Infof("Waiting for %s", a.cfg.HealthURL)
	err = project.WaitForHealth(ctx, http.DefaultClient, a.cfg.HealthURL,
		a.cfg.RetryAttempts, a.cfg.RetryDelay.Std(), time.Sleep, VerboseLog)
	if err != nil {
		return model.WrapCLIError("Lumigator started but did not become healthy", err)
	}

	printInstallResult(dir, ref, opts.rootless, a.cfg.HealthURL)
	return nil
}

// ensureDocker makes sure a working daemon is reachable, installing the
// engine when needed. It returns the extra environment (DOCKER_HOST) that
// make invocations need when a rootless daemon was just bootstrapped.
func ensureDocker(ctx context.Context, a *app, useRootless bool) (map[string]string, error) {
	checks := a.checker().RunAll(ctx, useRootless)

	if err := requireBuildTools(checks); err != nil {
		return nil, err
	}

	dockerMissing := checkByID(checks, doctor.IDDocker).Status == doctor.StatusMissing
	daemonDown := checkByID(checks, doctor.IDDaemon).Status != doctor.StatusOK

	connect := a.connect
	var extraEnv map[string]string

	switch {
	case useRootless && (dockerMissing || daemonDown):
		inst, err := bootstrapRootless(ctx, a)
		if err != nil {
			return nil, err
		}
		connect = connectHost(inst.Host())
		// make's compose invocations need the fresh docker CLI and the
		// rootless socket; neither is in this process's environment yet.
		extraEnv = map[string]string{
			"DOCKER_HOST": inst.Host(),
			"PATH":        inst.BinDir() + string(os.PathListSeparator) + os.Getenv("PATH"),
		}

	case dockerMissing:
		if err := installRootfulDocker(ctx, a); err != nil {
			return nil, err
		}

	case daemonDown && a.info.OS == platform.Darwin:
		// Docker Desktop is installed but not running; launch it.
		Infof("Starting Docker Desktop")
		if out, err := a.runner.CombinedOutput(ctx, "open", "-a", "Docker"); err != nil {
			return nil, model.WrapCLIError(fmt.Sprintf("failed to launch Docker Desktop: %s", out), err)
		}

	case daemonDown:
		return nil, model.NewCLIError("Docker is installed but the daemon is not responding; start it with: sudo systemctl start docker")
	}

	Infof("Waiting for the Docker daemon")
	err := rootless.WaitForDaemon(ctx, connect,
		a.cfg.RetryAttempts, a.cfg.RetryDelay.Std(), time.Sleep, VerboseLog)
	if err != nil {
		return nil, model.WrapCLIError("Docker daemon did not come up", err)
	}

	// The rootless bootstrap installs the compose plugin itself, and the
	// docker CLI it installed is not on this process's PATH yet.
	if extraEnv == nil {
		if err := ensureComposePlugin(ctx, a); err != nil {
			return nil, err
		}
	}

	return extraEnv, nil
}

// requireBuildTools fails fast when make or git is missing, including the
// platform's install command in the message.
func requireBuildTools(checks []doctor.Check) error {
	var problems []string
	for _, id := range []string{doctor.IDMake, doctor.IDGit} {
		c := checkByID(checks, id)
		if c.Status != doctor.StatusMissing {
			continue
		}
		p := c.Name + " is not installed"
		if c.Fix != nil {
			p += " (install with: " + c.Fix.Command + ")"
		}
		problems = append(problems, p)
	}
	if len(problems) > 0 {
		return model.NewCLIError(strings.Join(problems, "; "))
	}
	return nil
}

// installRootfulDocker installs the engine through the package manager and,
// on macOS, launches Docker Desktop so the daemon comes up.
func installRootfulDocker(ctx context.Context, a *app) error {
	mgr, err := pkgmgr.New(a.info.Family, a.runner)
	if err != nil {
		return err
	}

	Infof("Installing Docker via %s", a.info.Family)
	if err := mgr.InstallDocker(ctx); err != nil {
		return err
	}

	if a.info.OS == platform.Darwin {
		Infof("Starting Docker Desktop")
		if out, err := a.runner.CombinedOutput(ctx, "open", "-a", "Docker"); err != nil {
			return model.WrapCLIError(fmt.Sprintf("failed to launch Docker Desktop: %s", out), err)
		}
	}
	return nil
}

// bootstrapRootless installs distro prerequisites where a package manager
// is known, verifies the kernel and account, and runs the full rootless
// bootstrap.
func bootstrapRootless(ctx context.Context, a *app) (*rootless.Installer, error) {
	if a.info.Family != platform.FamilyUnknown {
		mgr, err := pkgmgr.New(a.info.Family, a.runner)
		if err == nil {
			Infof("Installing rootless prerequisites via %s", a.info.Family)
			if err := mgr.InstallRootlessPrereqs(ctx); err != nil {
				// sudo may be unavailable; the preflight below decides
				// whether the host is usable anyway.
				VerboseLog("prerequisite install failed: %v", err)
			}
		}
	}

	uid, username, err := currentUser()
	if err != nil {
		return nil, err
	}
	if err := rootless.Preflight(a.runner, uid, username); err != nil {
		return nil, model.WrapCLIError("rootless preflight failed", err)
	}

	inst := a.rootlessInstaller()
	Infof("Installing rootless Docker %s into %s", a.cfg.DockerVersion, inst.BinDir())
	err = fetchProgress("docker", func(onProgress download.ProgressFunc) error {
		inst.OnProgress = onProgress
		return inst.Install(ctx)
	})
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// ensureComposePlugin installs the compose plugin into ~/.docker/cli-plugins
// when `docker compose` does not answer. Distro engine packages frequently
// ship without it.
func ensureComposePlugin(ctx context.Context, a *app) error {
	if _, err := docker.ComposeVersion(ctx, a.runner); err == nil {
		return nil
	}

	Infof("Installing the compose plugin %s", a.cfg.ComposeVersion)
	d := download.NewDownloader()
	dest := filepath.Join(a.home, ".docker", "cli-plugins", "docker-compose")
	err := d.Fetch(ctx, download.Options{
		URL:  download.ComposePluginURL(a.info.OS, a.info.DockerArch, a.cfg.ComposeVersion),
		Dest: dest,
		Mode: 0o755,
	})
	if err != nil {
		return err
	}

	if _, err := docker.ComposeVersion(ctx, a.runner); err != nil {
		return model.WrapCLIError("compose plugin installed but docker compose still fails", err)
	}
	return nil
}

// checkPublishedPorts fails when another process already holds a host port
// the compose file publishes, before compose produces a harder-to-read
// bind error mid-start.
func checkPublishedPorts(dir string) error {
	ports, err := project.PublishedPorts(dir)
	if err != nil {
		return model.WrapCLIError("failed to read the compose file", err)
	}

	busy := project.BusyPorts(ports, project.IsPortAvailable)
	if len(busy) > 0 {
		return model.Errorf("ports already in use: %v; stop whatever holds them or change the compose port mapping", busy)
	}
	return nil
}

// checkByID finds a check by ID; a zero Check when absent.
func checkByID(checks []doctor.Check, id string) doctor.Check {
	for _, c := range checks {
		if c.ID == id {
			return c
		}
	}
	return doctor.Check{}
}

// printInstallResult outputs the final result in text or JSON format.
// An empty healthURL means the start stage was skipped.
func printInstallResult(dir, ref string, rootlessMode bool, healthURL string) {
	if IsJSONOutput() {
		mode := model.ModeRootful
		if rootlessMode {
			mode = model.ModeRootless
		}
		result := map[string]interface{}{
			"directory": dir,
			"ref":       ref,
			"mode":      mode.String(),
		}
		if healthURL == "" {
			result["status"] = "installed"
		} else {
			result["status"] = "healthy"
			result["healthUrl"] = healthURL
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	if healthURL == "" {
		fmt.Printf("Lumigator %s installed in %s. Start it with: install-new start\n", ref, dir)
		return
	}
	fmt.Printf("Lumigator %s is up and healthy at %s\n", ref, healthURL)
	fmt.Printf("Installed in %s. Stop it later with: install-new stop\n", dir)
}
