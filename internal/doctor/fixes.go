package doctor

import "github.com/davidmanzanoai/install-new/internal/platform"

// Per-family fix commands. These mirror the package-manager branches of the
// original installer scripts; `doctor --fix` runs them through `sh -c`.

func dockerFix(family platform.Family) *FixCommand {
	switch family {
	case platform.FamilyBrew:
		return &FixCommand{
			Description: "Install Docker Desktop via Homebrew",
			Command:     "brew install --cask docker",
		}
	case platform.FamilyApt:
		return &FixCommand{
			Description: "Install Docker engine and CLI via apt",
			Command:     "sudo apt-get update && sudo apt-get install -y docker.io docker-compose-v2",
			Sudo:        true,
		}
	case platform.FamilyDnf:
		return &FixCommand{
			Description: "Install Docker (moby-engine) via dnf",
			Command:     "sudo dnf install -y moby-engine docker-compose",
			Sudo:        true,
		}
	case platform.FamilyPacman:
		return &FixCommand{
			Description: "Install Docker via pacman",
			Command:     "sudo pacman -S --noconfirm docker docker-compose",
			Sudo:        true,
		}
	default:
		return nil
	}
}

func composeFix(family platform.Family) *FixCommand {
	switch family {
	case platform.FamilyBrew:
		return &FixCommand{
			Description: "Docker Desktop bundles the compose plugin",
			Command:     "brew install --cask docker",
		}
	case platform.FamilyApt:
		return &FixCommand{
			Description: "Install the compose plugin via apt",
			Command:     "sudo apt-get install -y docker-compose-v2",
			Sudo:        true,
		}
	case platform.FamilyDnf:
		return &FixCommand{
			Description: "Install the compose plugin via dnf",
			Command:     "sudo dnf install -y docker-compose-plugin",
			Sudo:        true,
		}
	case platform.FamilyPacman:
		return &FixCommand{
			Description: "Install docker-compose via pacman",
			Command:     "sudo pacman -S --noconfirm docker-compose",
			Sudo:        true,
		}
	default:
		return nil
	}
}

func makeFix(family platform.Family) *FixCommand {
	switch family {
	case platform.FamilyBrew:
		return &FixCommand{Description: "Install make via Homebrew", Command: "brew install make"}
	case platform.FamilyApt:
		return &FixCommand{Description: "Install make via apt", Command: "sudo apt-get install -y make", Sudo: true}
	case platform.FamilyDnf:
		return &FixCommand{Description: "Install make via dnf", Command: "sudo dnf install -y make", Sudo: true}
	case platform.FamilyPacman:
		return &FixCommand{Description: "Install make via pacman", Command: "sudo pacman -S --noconfirm make", Sudo: true}
	default:
		return nil
	}
}

func gitFix(family platform.Family) *FixCommand {
	switch family {
	case platform.FamilyBrew:
		return &FixCommand{Description: "Install git via Homebrew", Command: "brew install git"}
	case platform.FamilyApt:
		return &FixCommand{Description: "Install git via apt", Command: "sudo apt-get install -y git", Sudo: true}
	case platform.FamilyDnf:
		return &FixCommand{Description: "Install git via dnf", Command: "sudo dnf install -y git", Sudo: true}
	case platform.FamilyPacman:
		return &FixCommand{Description: "Install git via pacman", Command: "sudo pacman -S --noconfirm git", Sudo: true}
	default:
		return nil
	}
}

func uidmapFix(family platform.Family) *FixCommand {
	switch family {
	case platform.FamilyApt:
		return &FixCommand{
			Description: "Install uidmap and a user D-Bus session via apt",
			Command:     "sudo apt-get install -y uidmap dbus-user-session",
			Sudo:        true,
		}
	case platform.FamilyDnf:
		return &FixCommand{
			Description: "Install shadow-utils via dnf",
			Command:     "sudo dnf install -y shadow-utils",
			Sudo:        true,
		}
	case platform.FamilyPacman:
		return &FixCommand{
			Description: "Install shadow via pacman",
			Command:     "sudo pacman -S --noconfirm shadow",
			Sudo:        true,
		}
	default:
		return nil
	}
}

func slirpFix(family platform.Family) *FixCommand {
	switch family {
	case platform.FamilyApt:
		return &FixCommand{Description: "Install slirp4netns via apt", Command: "sudo apt-get install -y slirp4netns", Sudo: true}
	case platform.FamilyDnf:
		return &FixCommand{Description: "Install slirp4netns via dnf", Command: "sudo dnf install -y slirp4netns", Sudo: true}
	case platform.FamilyPacman:
		return &FixCommand{Description: "Install slirp4netns via pacman", Command: "sudo pacman -S --noconfirm slirp4netns", Sudo: true}
	default:
		return nil
	}
}
