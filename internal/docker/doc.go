// Package docker provides access to the Docker daemon for the installer:
// an SDK client with automatic socket detection (including the rootless
// per-user socket), tolerant daemon.json reading and writing, docker compose
// plugin invocation, and listing of the containers belonging to the
// Lumigator compose project.
package docker
