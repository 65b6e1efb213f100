// Package doctor implements the installer's dependency checks: which tools
// are on PATH, whether the Docker daemon answers, and whether the kernel is
// prepared for rootless mode. Failed checks carry a platform-specific fix
// command that `install-new doctor --fix` can execute.
package doctor
