package doctor

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/davidmanzanoai/install-new/internal/execx"
	"github.com/davidmanzanoai/install-new/internal/platform"
)

// defaultVersionRegex extracts a semver-ish token from version output.
var defaultVersionRegex = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?(?:-[a-zA-Z0-9.]+)?)`)

// Kernel sysctl paths consulted by the user-namespace check.
const (
	usernsClonePath   = "/proc/sys/kernel/unprivileged_userns_clone"
	maxUserNamespaces = "/proc/sys/user/max_user_namespaces"
)

// checkTool verifies a binary is on PATH and that its version command exits
// zero. A binary that exists but cannot report its version is treated as a
// hard failure; a broken install must not pass the prerequisite gate.
func checkTool(ctx context.Context, runner execx.CommandRunner, id, name, desc string, versionArgs []string, fix *FixCommand) Check {
	check := Check{
		ID:          id,
		Name:        name,
		Description: desc,
		Fix:         fix,
	}

	path, err := runner.LookPath(id)
	if err != nil {
		check.Status = StatusMissing
		check.Message = "not installed"
		return check
	}

	out, err := runner.CombinedOutput(ctx, path, versionArgs...)
	if err != nil {
		check.Status = StatusError
		check.Message = "found at " + path + " but " + id + " " +
			strings.Join(versionArgs, " ") + " failed: " + err.Error()
		return check
	}

	check.Status = StatusOK
	if m := defaultVersionRegex.FindStringSubmatch(out); len(m) >= 2 {
		check.Message = m[1]
	} else {
		check.Message = "installed"
	}
	return check
}

// CheckDocker verifies the docker CLI.
func CheckDocker(ctx context.Context, runner execx.CommandRunner, family platform.Family) Check {
	return checkTool(ctx, runner, IDDocker, "Docker CLI",
		"container engine client", []string{"--version"}, dockerFix(family))
}

// CheckComposePlugin verifies the `docker compose` plugin. It is a distinct
// check from the docker CLI because distro packages frequently ship the
// engine without the plugin.
func CheckComposePlugin(ctx context.Context, runner execx.CommandRunner, family platform.Family) Check {
	check := Check{
		ID:          IDComposePlug,
		Name:        "Compose plugin",
		Description: "docker compose subcommand",
		Fix:         composeFix(family),
	}

	if _, err := runner.LookPath("docker"); err != nil {
		check.Status = StatusMissing
		check.Message = "docker not installed"
		return check
	}

	out, err := runner.CombinedOutput(ctx, "docker", "compose", "version")
	if err != nil {
		check.Status = StatusMissing
		check.Message = "plugin not installed"
		return check
	}

	check.Status = StatusOK
	if m := defaultVersionRegex.FindStringSubmatch(out); len(m) >= 2 {
		check.Message = m[1]
	} else {
		check.Message = "installed"
	}
	return check
}

// CheckLegacyCompose looks for the standalone docker-compose binary. Its
// presence is only a warning: the plugin supersedes it, and having both can
// confuse Makefiles that pick one by name.
func CheckLegacyCompose(_ context.Context, runner execx.CommandRunner) Check {
	check := Check{
		ID:          IDLegacyCompos,
		Name:        "Legacy docker-compose",
		Description: "standalone compose binary (superseded by the plugin)",
	}

	if _, err := runner.LookPath("docker-compose"); err != nil {
		check.Status = StatusOK
		check.Message = "not present (expected)"
		return check
	}

	check.Status = StatusWarning
	check.Message = "standalone binary on PATH; the compose plugin is preferred"
	return check
}

// CheckMake verifies GNU make, which drives Lumigator's start/stop targets.
func CheckMake(ctx context.Context, runner execx.CommandRunner, family platform.Family) Check {
	return checkTool(ctx, runner, IDMake, "make",
		"runs Lumigator's Makefile targets", []string{"--version"}, makeFix(family))
}

// CheckGit verifies git, used by Lumigator's own Makefile.
func CheckGit(ctx context.Context, runner execx.CommandRunner, family platform.Family) Check {
	return checkTool(ctx, runner, IDGit, "git",
		"required by the Lumigator build", []string{"--version"}, gitFix(family))
}

// CheckSystemctl verifies systemd's systemctl on Linux. Without it the
// rootless daemon falls back to a nohup launch that does not survive logout.
func CheckSystemctl(_ context.Context, runner execx.CommandRunner, osName platform.OS) Check {
	check := Check{
		ID:          IDSystemctl,
		Name:        "systemctl",
		Description: "manages the rootless docker user unit",
	}

	if osName != platform.Linux {
		check.Status = StatusSkipped
		check.Message = "linux only"
		return check
	}

	if _, err := runner.LookPath("systemctl"); err != nil {
		check.Status = StatusWarning
		check.Message = "not found; rootless daemon will use a nohup fallback"
		return check
	}

	check.Status = StatusOK
	check.Message = "installed"
	return check
}

// CheckUIDMap verifies newuidmap/newgidmap, the setuid helpers rootless
// Docker needs to map subordinate IDs.
func CheckUIDMap(_ context.Context, runner execx.CommandRunner, osName platform.OS, family platform.Family) Check {
	check := Check{
		ID:          IDUIDMap,
		Name:        "newuidmap/newgidmap",
		Description: "subordinate ID mapping helpers for rootless mode",
		Fix:         uidmapFix(family),
	}

	if osName != platform.Linux {
		check.Status = StatusSkipped
		check.Message = "linux only"
		return check
	}

	for _, bin := range []string{"newuidmap", "newgidmap"} {
		if _, err := runner.LookPath(bin); err != nil {
			check.Status = StatusMissing
			check.Message = bin + " not installed"
			return check
		}
	}

	check.Status = StatusOK
	check.Message = "installed"
	return check
}

// CheckSlirp4netns verifies slirp4netns, the user-mode network stack for
// rootless containers.
func CheckSlirp4netns(ctx context.Context, runner execx.CommandRunner, osName platform.OS, family platform.Family) Check {
	if osName != platform.Linux {
		return Check{
			ID:          IDSlirp4netns,
			Name:        "slirp4netns",
			Description: "user-mode networking for rootless containers",
			Status:      StatusSkipped,
			Message:     "linux only",
		}
	}
	return checkTool(ctx, runner, IDSlirp4netns, "slirp4netns",
		"user-mode networking for rootless containers", []string{"--version"}, slirpFix(family))
}

// CheckUserNamespaces inspects kernel sysctls for unprivileged user
// namespace support. Debian kernels gate it behind
// unprivileged_userns_clone; everywhere, max_user_namespaces must be
// nonzero.
func CheckUserNamespaces(runner execx.CommandRunner, osName platform.OS) Check {
	check := Check{
		ID:          IDUserNS,
		Name:        "user namespaces",
		Description: "kernel support for rootless mode",
	}

	if osName != platform.Linux {
		check.Status = StatusSkipped
		check.Message = "linux only"
		return check
	}

	// The clone sysctl only exists on Debian-patched kernels. When present
	// it must be enabled.
	if data, err := runner.ReadFile(usernsClonePath); err == nil {
		if strings.TrimSpace(string(data)) != "1" {
			check.Status = StatusMissing
			check.Message = "unprivileged_userns_clone is disabled"
			check.Fix = &FixCommand{
				Description: "Enable unprivileged user namespaces",
				Command:     "sudo sysctl -w kernel.unprivileged_userns_clone=1",
				Sudo:        true,
			}
			return check
		}
	}

	if data, err := runner.ReadFile(maxUserNamespaces); err == nil {
		n, convErr := strconv.Atoi(strings.TrimSpace(string(data)))
		if convErr == nil && n == 0 {
			check.Status = StatusMissing
			check.Message = "max_user_namespaces is 0"
			check.Fix = &FixCommand{
				Description: "Raise the user namespace limit",
				Command:     "sudo sysctl -w user.max_user_namespaces=28633",
				Sudo:        true,
			}
			return check
		}
	}

	check.Status = StatusOK
	check.Message = "supported"
	return check
}

// Pinger is the daemon-reachability probe, satisfied by *docker.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckDaemon verifies the Docker daemon answers a ping. connect is called
// lazily so the check can report a socket-level failure distinctly from a
// ping failure.
func CheckDaemon(ctx context.Context, connect func() (Pinger, error)) Check {
	check := Check{
		ID:          IDDaemon,
		Name:        "Docker daemon",
		Description: "engine reachability",
	}

	pinger, err := connect()
	if err != nil {
		check.Status = StatusMissing
		check.Message = err.Error()
		return check
	}

	if err := pinger.Ping(ctx); err != nil {
		check.Status = StatusError
		check.Message = err.Error()
		return check
	}

	check.Status = StatusOK
	check.Message = "responding"
	return check
}
