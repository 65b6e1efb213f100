package docker

import (
	"context"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/davidmanzanoai/install-new/internal/model"
)

// composeProjectLabel is the label Docker Compose stamps on every container
// it creates, naming the compose project the container belongs to.
const composeProjectLabel = "com.docker.compose.project"

// composeServiceLabel names the compose service a container was created from.
const composeServiceLabel = "com.docker.compose.service"

// ContainerInfo holds the container details the doctor report displays.
type ContainerInfo struct {
	// ID is the Docker container identifier.
	ID string

	// Name is the container name without the API's leading "/".
	Name string

	// Service is the compose service name, when the container belongs to
	// a compose project.
	Service string

	// State is the short Docker state string ("running", "exited", ...).
	State string
}

// ListProjectContainers returns all containers (running or not) belonging
// to the named compose project. The filter runs server-side via the
// compose project label.
func ListProjectContainers(ctx context.Context, cli *Client, project string) ([]ContainerInfo, error) {
	filterArgs := filters.NewArgs(
		filters.Arg("label", composeProjectLabel+"="+project),
	)

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError("failed to list Docker containers", err)
	}

	result := make([]ContainerInfo, 0, len(containers))
	for _, c := range containers {
		name := ""
		if len(c.Names) > 0 {
			// The API reports names with a leading "/".
			name = strings.TrimPrefix(c.Names[0], "/")
		}
		result = append(result, ContainerInfo{
			ID:      c.ID,
			Name:    name,
			Service: c.Labels[composeServiceLabel],
			State:   c.State,
		})
	}

	return result, nil
}

// AnyRunning reports whether at least one container in the list is running.
func AnyRunning(containers []ContainerInfo) bool {
	for _, c := range containers {
		if c.State == "running" {
			return true
		}
	}
	return false
}
