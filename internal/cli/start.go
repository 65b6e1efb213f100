// Package cli — start.go implements the "install-new start" command.
//
// Start brings an already-installed Lumigator up: verify the daemon is
// reachable, check the published ports are free, run `make
// start-lumigator`, and wait for the health endpoint.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidmanzanoai/install-new/internal/model"
	"github.com/davidmanzanoai/install-new/internal/project"
	"github.com/davidmanzanoai/install-new/internal/rootless"
)

// NewStartCommand creates the "start" cobra command.
func NewStartCommand() *cobra.Command {
	var directory string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start an installed Lumigator",
		Long: `Run make start-lumigator in the install directory and wait for the
health endpoint to answer.

Examples:
  install-new start
  install-new start -d ~/work/lumigator`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd.Context(), directory)
		},
	}

	cmd.Flags().StringVarP(&directory, "directory", "d", "", "Install directory (default ~/lumigator)")

	return cmd
}

// runStart is the main logic function for the start command.
func runStart(ctx context.Context, directory string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	dir := a.directory(directory)

	// One ping up front produces a clearer error than a compose failure.
	err = rootless.WaitForDaemon(ctx, a.connect,
		a.cfg.RetryAttempts, a.cfg.RetryDelay.Std(), time.Sleep, VerboseLog)
	if err != nil {
		return model.WrapCLIError("Docker daemon is not reachable; run install first or start Docker", err)
	}

	if err := checkPublishedPorts(dir); err != nil {
		return err
	}

	Infof("Starting Lumigator (make start-lumigator)")
	if err := a.projectManager().Start(ctx, dir, nil); err != nil {
		return err
	}

	Infof("Waiting for %s", a.cfg.HealthURL)
	err = project.WaitForHealth(ctx, http.DefaultClient, a.cfg.HealthURL,
		a.cfg.RetryAttempts, a.cfg.RetryDelay.Std(), time.Sleep, VerboseLog)
	if err != nil {
		return model.WrapCLIError("Lumigator started but did not become healthy", err)
	}

	if IsJSONOutput() {
		result := map[string]interface{}{
			"directory": dir,
			"action":    "started",
			"healthUrl": a.cfg.HealthURL,
			"status":    "healthy",
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Lumigator is up and healthy at %s\n", a.cfg.HealthURL)
	return nil
}
