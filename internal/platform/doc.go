// Package platform detects the host operating system, CPU architecture, and
// Linux distribution family. The detection result drives every installer
// branch: which package manager to use, which static-binary architecture to
// download, and whether rootless mode is available at all.
package platform
