// Package execx defines the CommandRunner interface through which every
// external tool (apt, brew, systemctl, docker, make) is invoked, plus the
// SystemRunner implementation backed by os/exec. Packages that shell out
// accept a CommandRunner so tests can substitute fakes.
package execx
