package download

import (
	"fmt"

	"github.com/davidmanzanoai/install-new/internal/platform"
)

// dockerStaticBase is the root of Docker's static-binary download site.
const dockerStaticBase = "https://download.docker.com"

// DockerStaticURL returns the URL of the Docker static-binary bundle for
// the given OS, Docker architecture name, and version (without leading "v").
func DockerStaticURL(osName platform.OS, dockerArch, version string) string {
	osSegment := "linux"
	if osName == platform.Darwin {
		osSegment = "mac"
	}
	return fmt.Sprintf("%s/%s/static/stable/%s/docker-%s.tgz",
		dockerStaticBase, osSegment, dockerArch, version)
}

// DockerRootlessExtrasURL returns the URL of the rootless-extras bundle
// (dockerd-rootless.sh, rootlesskit, vpnkit) matching a Docker version.
// The bundle is linux-only.
func DockerRootlessExtrasURL(dockerArch, version string) string {
	return fmt.Sprintf("%s/linux/static/stable/%s/docker-rootless-extras-%s.tgz",
		dockerStaticBase, dockerArch, version)
}

// ComposePluginURL returns the release-asset URL of the Compose plugin
// binary. version carries its leading "v" (e.g. "v2.29.7"); the asset name
// uses uname-style OS and architecture tokens.
func ComposePluginURL(osName platform.OS, dockerArch, version string) string {
	osSegment := "linux"
	if osName == platform.Darwin {
		osSegment = "darwin"
	}
	return fmt.Sprintf("https://github.com/docker/compose/releases/download/%s/docker-compose-%s-%s",
		version, osSegment, dockerArch)
}

// Slirp4netnsURL returns the release-asset URL of the static slirp4netns
// binary. version carries its leading "v".
func Slirp4netnsURL(dockerArch, version string) string {
	return fmt.Sprintf("https://github.com/rootless-containers/slirp4netns/releases/download/%s/slirp4netns-%s",
		version, dockerArch)
}

// ArchiveURL returns the GitHub source-archive ZIP URL for a repository at
// a ref. Branch names and tag names both work; GitHub serves either from
// the same endpoint.
func ArchiveURL(owner, repo, ref string) string {
	return fmt.Sprintf("https://github.com/%s/%s/archive/%s.zip", owner, repo, ref)
}
