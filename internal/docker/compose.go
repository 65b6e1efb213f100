package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/davidmanzanoai/install-new/internal/execx"
	"github.com/davidmanzanoai/install-new/internal/model"
)

// Compose operations shell out to the `docker compose` plugin subcommand.
// The legacy standalone docker-compose binary is deliberately not used;
// when the plugin is missing the installer downloads it into
// ~/.docker/cli-plugins rather than falling back.

// ComposeVersion runs `docker compose version` and returns its output.
// An error means the plugin is not installed or docker itself is missing.
func ComposeVersion(ctx context.Context, runner execx.CommandRunner) (string, error) {
	out, err := runner.CombinedOutput(ctx, "docker", "compose", "version")
	if err != nil {
		return "", fmt.Errorf("docker compose plugin not available: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ComposeDown runs `docker compose down` in the given project directory,
// optionally removing volumes. Used by uninstall to tear down a running
// Lumigator deployment before files are deleted.
func ComposeDown(ctx context.Context, runner execx.CommandRunner, projectDir string, removeVolumes bool) error {
	args := []string{"compose", "down"}
	if removeVolumes {
		args = append(args, "-v")
	}

	if err := runner.RunInteractive(ctx, projectDir, nil, "docker", args...); err != nil {
		return model.WrapCLIError("docker compose down failed", err)
	}
	return nil
}
