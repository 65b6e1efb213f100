// Package pkgmgr drives the platform package manager (apt, dnf, pacman,
// Homebrew) for rootful Docker installs and removals, and for the
// distro-packaged rootless prerequisites.
package pkgmgr
