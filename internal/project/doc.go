// Package project manages the Lumigator checkout: fetching a release or
// branch archive from GitHub, unpacking it into the install directory, and
// driving its Makefile targets. It also provides the pre-start checks
// (published-port availability) and the post-start health poll.
package project
