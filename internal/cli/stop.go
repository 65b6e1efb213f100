// Package cli — stop.go implements the "install-new stop" command.
//
// Stop runs `make stop-lumigator` in the install directory. Containers are
// stopped but their data is preserved; "start" brings them back.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewStopCommand creates the "stop" cobra command.
func NewStopCommand() *cobra.Command {
	var directory string

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a running Lumigator",
		Long: `Run make stop-lumigator in the install directory. Container data and
volumes are preserved; use "install-new start" to bring it back up.

Examples:
  install-new stop
  install-new stop -d ~/work/lumigator`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(cmd.Context(), directory)
		},
	}

	cmd.Flags().StringVarP(&directory, "directory", "d", "", "Install directory (default ~/lumigator)")

	return cmd
}

// runStop is the main logic function for the stop command.
func runStop(ctx context.Context, directory string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	dir := a.directory(directory)

	Infof("Stopping Lumigator (make stop-lumigator)")
	if err := a.projectManager().Stop(ctx, dir, nil); err != nil {
		return err
	}

	if IsJSONOutput() {
		result := map[string]interface{}{
			"directory": dir,
			"action":    "stopped",
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Println("Lumigator stopped")
	return nil
}
