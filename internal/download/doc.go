// Package download fetches the external artifacts the installer needs:
// Docker static-binary bundles, the Compose plugin, slirp4netns, and the
// Lumigator source archive. It also resolves "latest" versions through the
// GitHub releases API, with pinned fallbacks for offline-ish environments.
package download
