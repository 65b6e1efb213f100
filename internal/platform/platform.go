package platform

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/davidmanzanoai/install-new/internal/execx"
	"github.com/davidmanzanoai/install-new/internal/model"
)

// OS identifies a supported operating system.
type OS string

const (
	// Darwin is macOS. Docker is installed via the Homebrew cask and the
	// daemon is managed by Docker Desktop, so rootless mode does not apply.
	Darwin OS = "darwin"

	// Linux supports both rootful (package manager) and rootless
	// (static binaries + systemd user unit) installs.
	Linux OS = "linux"
)

// Family identifies a package-manager family, derived from the distro's
// ID/ID_LIKE fields in /etc/os-release.
type Family string

const (
	// FamilyBrew is Homebrew on macOS.
	FamilyBrew Family = "brew"

	// FamilyApt covers Debian, Ubuntu, and derivatives.
	FamilyApt Family = "apt"

	// FamilyDnf covers Fedora, RHEL, CentOS, and derivatives.
	FamilyDnf Family = "dnf"

	// FamilyPacman covers Arch and derivatives.
	FamilyPacman Family = "pacman"

	// FamilyUnknown means no package manager could be determined.
	// Rootful installs fail on unknown families; rootless installs,
	// which use static binaries, still work.
	FamilyUnknown Family = "unknown"
)

// String returns the string representation of the family.
func (f Family) String() string {
	return string(f)
}

// Info holds the detected host platform.
type Info struct {
	// OS is the detected operating system (darwin or linux).
	OS OS

	// Arch is the Go architecture name (amd64, arm64, ...).
	Arch string

	// DockerArch is the architecture name used in Docker's static-binary
	// download URLs (x86_64, aarch64, armv7).
	DockerArch string

	// DistroID is the ID field from /etc/os-release (linux only).
	DistroID string

	// DistroLike is the ID_LIKE field from /etc/os-release, split on
	// whitespace (linux only).
	DistroLike []string

	// VersionID is the VERSION_ID field from /etc/os-release (linux only).
	VersionID string

	// Family is the package-manager family for this host.
	Family Family
}

// osReleasePath is the standard location of the distro identification file.
const osReleasePath = "/etc/os-release"

// Detect inspects the running host and returns its platform Info.
// Any OS other than darwin or linux is rejected with exit code 1,
// matching the unknown-OS branch of the original installers.
func Detect(runner execx.CommandRunner) (*Info, error) {
	return detect(runtime.GOOS, runtime.GOARCH, runner)
}

// detect is the testable core of Detect, parameterized on GOOS/GOARCH.
func detect(goos, goarch string, runner execx.CommandRunner) (*Info, error) {
	dockerArch, err := DockerArch(goarch)
	if err != nil {
		return nil, model.WrapCLIError("unsupported architecture", err)
	}

	switch goos {
	case "darwin":
		return &Info{
			OS:         Darwin,
			Arch:       goarch,
			DockerArch: dockerArch,
			Family:     FamilyBrew,
		}, nil

	case "linux":
		info := &Info{
			OS:         Linux,
			Arch:       goarch,
			DockerArch: dockerArch,
			Family:     FamilyUnknown,
		}

		// /etc/os-release is present on every systemd-era distro. When it
		// is missing (minimal containers, exotic distros) detection still
		// succeeds with FamilyUnknown — only rootful installs need it.
		data, err := runner.ReadFile(osReleasePath)
		if err == nil {
			fields := ParseOSRelease(data)
			info.DistroID = fields["ID"]
			info.VersionID = fields["VERSION_ID"]
			if like := fields["ID_LIKE"]; like != "" {
				info.DistroLike = strings.Fields(like)
			}
			info.Family = familyFor(info.DistroID, info.DistroLike)
		}
		return info, nil

	default:
		return nil, model.Errorf("unsupported OS: %s (supported: macOS, Linux)", goos)
	}
}

// DockerArch maps a Go architecture name to the architecture component of
// Docker's static-binary download URLs.
func DockerArch(goarch string) (string, error) {
	switch goarch {
	case "amd64":
		return "x86_64", nil
	case "arm64":
		return "aarch64", nil
	case "arm":
		return "armv7", nil
	default:
		return "", fmt.Errorf("no Docker static bundle for architecture %q", goarch)
	}
}

// ParseOSRelease parses the key=value format of /etc/os-release.
// Values may be quoted with single or double quotes; blank lines and
// lines starting with # are skipped.
func ParseOSRelease(data []byte) map[string]string {
	fields := make(map[string]string)

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		value = strings.TrimSpace(value)
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}
		fields[strings.TrimSpace(key)] = value
	}

	return fields
}

// familyFor maps a distro ID (plus its ID_LIKE ancestry) to a package-manager
// family. The ID is checked first; ID_LIKE entries act as a fallback so
// derivatives (Mint, Rocky, Manjaro, ...) land in the right family.
func familyFor(id string, idLike []string) Family {
	candidates := append([]string{id}, idLike...)

	for _, c := range candidates {
		switch strings.ToLower(c) {
		case "debian", "ubuntu":
			return FamilyApt
		case "fedora", "rhel", "centos":
			return FamilyDnf
		case "arch":
			return FamilyPacman
		}
	}
	return FamilyUnknown
}
