package pkgmgr

import (
	"context"
	"fmt"
	"os"

	"github.com/davidmanzanoai/install-new/internal/execx"
	"github.com/davidmanzanoai/install-new/internal/model"
	"github.com/davidmanzanoai/install-new/internal/platform"
)

// Manager invokes the package manager for one family. Linux invocations are
// prefixed with sudo unless the process already runs as root; Homebrew
// refuses to run under sudo, so brew commands never get the prefix.
type Manager struct {
	family  platform.Family
	runner  execx.CommandRunner
	useSudo bool
}

// New creates a Manager for the detected family. FamilyUnknown is rejected:
// a rootful install has nothing to drive, and the caller should suggest
// rootless mode instead.
func New(family platform.Family, runner execx.CommandRunner) (*Manager, error) {
	return newManager(family, runner, os.Geteuid() != 0)
}

// newManager is the testable constructor with explicit sudo control.
func newManager(family platform.Family, runner execx.CommandRunner, useSudo bool) (*Manager, error) {
	switch family {
	case platform.FamilyBrew, platform.FamilyApt, platform.FamilyDnf, platform.FamilyPacman:
	default:
		return nil, model.NewCLIError(
			"unsupported Linux distribution: no known package manager (try --rootless, which installs static binaries)")
	}

	return &Manager{
		family:  family,
		runner:  runner,
		useSudo: useSudo && family != platform.FamilyBrew,
	}, nil
}

// Family returns the family this manager drives.
func (m *Manager) Family() platform.Family {
	return m.family
}

// InstallDocker installs the Docker engine, CLI, and compose plugin.
func (m *Manager) InstallDocker(ctx context.Context) error {
	switch m.family {
	case platform.FamilyBrew:
		return m.run(ctx, "brew", "install", "--cask", "docker")
	case platform.FamilyApt:
		if err := m.run(ctx, "apt-get", "update"); err != nil {
			return err
		}
		return m.run(ctx, "apt-get", "install", "-y", "docker.io", "docker-compose-v2")
	case platform.FamilyDnf:
		return m.run(ctx, "dnf", "install", "-y", "moby-engine", "docker-compose")
	case platform.FamilyPacman:
		return m.run(ctx, "pacman", "-S", "--noconfirm", "docker", "docker-compose")
	}
	return fmt.Errorf("unreachable family %q", m.family)
}

// UninstallDocker removes the Docker packages installed by InstallDocker.
func (m *Manager) UninstallDocker(ctx context.Context) error {
	switch m.family {
	case platform.FamilyBrew:
		return m.run(ctx, "brew", "uninstall", "--cask", "docker")
	case platform.FamilyApt:
		return m.run(ctx, "apt-get", "remove", "-y", "docker.io", "docker-compose-v2")
	case platform.FamilyDnf:
		return m.run(ctx, "dnf", "remove", "-y", "moby-engine", "docker-compose")
	case platform.FamilyPacman:
		return m.run(ctx, "pacman", "-R", "--noconfirm", "docker", "docker-compose")
	}
	return fmt.Errorf("unreachable family %q", m.family)
}

// InstallRootlessPrereqs installs the distro packages rootless mode needs:
// the subordinate-ID helpers and (on apt) a user D-Bus session. slirp4netns
// is installed from its release binary, not a package, so it is not here.
func (m *Manager) InstallRootlessPrereqs(ctx context.Context) error {
	switch m.family {
	case platform.FamilyApt:
		if err := m.run(ctx, "apt-get", "update"); err != nil {
			return err
		}
		return m.run(ctx, "apt-get", "install", "-y", "uidmap", "dbus-user-session")
	case platform.FamilyDnf:
		return m.run(ctx, "dnf", "install", "-y", "shadow-utils")
	case platform.FamilyPacman:
		return m.run(ctx, "pacman", "-S", "--noconfirm", "shadow")
	case platform.FamilyBrew:
		return model.NewCLIError("rootless mode is not available on macOS")
	}
	return fmt.Errorf("unreachable family %q", m.family)
}

// run executes one package-manager command, applying the sudo prefix when
// configured, and wraps failures with the command's combined output.
func (m *Manager) run(ctx context.Context, name string, args ...string) error {
	if m.useSudo {
		args = append([]string{name}, args...)
		name = "sudo"
	}

	out, err := m.runner.CombinedOutput(ctx, name, args...)
	if err != nil {
		return model.WrapCLIError(fmt.Sprintf("%s failed: %s", name, out), err)
	}
	return nil
}
