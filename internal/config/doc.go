// Package config holds the installer's tunable settings: pinned tool
// versions, download endpoints, the Lumigator target directory, and the
// retry policy for health polling.
//
// Settings resolve in three layers, later layers winning:
//  1. compiled-in defaults
//  2. the optional YAML file at ~/.config/install-new/config.yaml
//  3. environment variables (INSTALL_NEW_*, DOCKER_HOST, XDG_RUNTIME_DIR)
package config
