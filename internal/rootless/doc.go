// Package rootless installs, launches, and removes a rootless Docker
// daemon for the current user: static binaries under ~/bin, a systemd user
// unit (with a nohup fallback where systemd is absent), daemon.json under
// ~/.config/docker, and a DOCKER_HOST export persisted through the user's
// shell rc. Nothing in this package requires root.
package rootless
