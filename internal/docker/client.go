package docker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/docker/docker/client"

	"github.com/davidmanzanoai/install-new/internal/model"
)

// defaultPingTimeout is the maximum duration to wait for a Docker daemon
// response during a Ping. Docker Desktop on macOS can be slow to answer
// the first request after waking, so this is generous.
const defaultPingTimeout = 5 * time.Second

// Client wraps the Docker Engine SDK client. It handles automatic socket
// detection across rootful and rootless setups and exposes the small API
// surface the installer needs (ping, server version, container listing).
type Client struct {
	inner *client.Client
}

// NewClient creates a Docker client with automatic socket detection.
//
// Detection priority:
//  1. DOCKER_HOST environment variable, used as-is
//  2. Platform socket paths, probed in order:
//     - Linux: /var/run/docker.sock, then $XDG_RUNTIME_DIR/docker.sock
//       (the rootless daemon's socket)
//     - macOS: /var/run/docker.sock, then ~/.docker/run/docker.sock
//
// Returns a model.CLIError when no socket is found or the client cannot
// be created.
func NewClient() (*Client, error) {
	dockerHost := os.Getenv("DOCKER_HOST")
	if dockerHost != "" {
		return newClientWithHost(dockerHost)
	}

	host, err := detectDockerHost()
	if err != nil {
		return nil, model.WrapCLIError("Docker socket not found", err)
	}

	return newClientWithHost(host)
}

// NewClientWithHost creates a Docker client for an explicit host string,
// such as the rootless socket immediately after bootstrap, before
// DOCKER_HOST has been persisted into the shell environment.
func NewClientWithHost(host string) (*Client, error) {
	return newClientWithHost(host)
}

func newClientWithHost(host string) (*Client, error) {
	// WithAPIVersionNegotiation keeps the client compatible with whatever
	// daemon version the install produced, instead of pinning an API version.
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(
			fmt.Sprintf("failed to create Docker client for host %q", host), err)
	}

	return &Client{inner: c}, nil
}

// detectDockerHost determines the Docker socket for the current platform by
// probing known socket paths and returning the first that exists.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		paths := []string{"/var/run/docker.sock"}
		// The rootless daemon listens on a per-user socket under
		// XDG_RUNTIME_DIR (usually /run/user/<uid>).
		if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
			paths = append(paths, filepath.Join(runtimeDir, "docker.sock"))
		}
		return detectUnixSocket(paths)

	case "darwin":
		paths := []string{"/var/run/docker.sock"}
		if homeDir, err := os.UserHomeDir(); err == nil {
			// Newer Docker Desktop versions skip the /var/run symlink and
			// only create the per-user socket.
			paths = append(paths, filepath.Join(homeDir, ".docker", "run", "docker.sock"))
		}
		return detectUnixSocket(paths)

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// detectUnixSocket probes socket paths in order and returns the Docker host
// URI for the first one that exists. Existence does not guarantee a daemon
// is listening; Ping handles connectivity.
func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v (is Docker running?)", paths)
}

// RootlessHost returns the Docker host URI of the rootless daemon socket
// for the given runtime directory.
func RootlessHost(runtimeDir string) string {
	return "unix://" + filepath.Join(runtimeDir, "docker.sock")
}

// Ping verifies that the Docker daemon is reachable and responsive within
// defaultPingTimeout.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	_, err := c.inner.Ping(pingCtx)
	if err != nil {
		return model.WrapCLIError("Docker daemon is not responding (is Docker running?)", err)
	}
	return nil
}

// ServerVersion returns the daemon's version string (e.g. "27.3.1").
func (c *Client) ServerVersion(ctx context.Context) (string, error) {
	version, err := c.inner.ServerVersion(ctx)
	if err != nil {
		return "", model.WrapCLIError("failed to query Docker server version", err)
	}
	return version.Version, nil
}

// Close releases the SDK client's resources. Safe to call multiple times.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}

// Inner exposes the underlying SDK client for operations not wrapped here.
func (c *Client) Inner() *client.Client {
	return c.inner
}
