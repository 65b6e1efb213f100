// Package cli — uninstall.go implements the "install-new uninstall" command.
//
// Uninstall walks the install back: take the compose stack down, delete
// the Lumigator directory, and remove Docker the same way it was put on
// the machine (package manager for rootful, ~/bin binaries and the user
// unit for rootless). Images and volumes survive unless --purge is given.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/davidmanzanoai/install-new/internal/docker"
	"github.com/davidmanzanoai/install-new/internal/pkgmgr"
)

// uninstallOptions holds the uninstall command's flag values.
type uninstallOptions struct {
	directory  string
	rootless   bool
	purge      bool
	yes        bool
	keepEngine bool
}

// NewUninstallCommand creates the "uninstall" cobra command.
func NewUninstallCommand() *cobra.Command {
	opts := &uninstallOptions{}

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove Lumigator and optionally Docker",
		Long: `Stop and remove the Lumigator deployment, then remove the install
directory. Unless --keep-engine is given, Docker itself is removed too:
package-manager packages for a rootful install, or the ~/bin binaries,
systemd user unit, and shell configuration for a rootless one.

--purge additionally deletes container volumes and, for rootless installs,
the daemon's image/volume storage under ~/.local/share/docker.

Examples:
  install-new uninstall
  install-new uninstall --rootless --purge
  install-new uninstall --keep-engine --yes`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runUninstall(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.directory, "directory", "d", "", "Install directory (default ~/lumigator)")
	cmd.Flags().BoolVarP(&opts.rootless, "rootless", "r", false, "Uninstall a rootless Docker install")
	cmd.Flags().BoolVar(&opts.purge, "purge", false, "Also remove volumes and the rootless data root")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&opts.keepEngine, "keep-engine", false, "Remove Lumigator only, keep Docker installed")

	return cmd
}

// runUninstall is the main logic function for the uninstall command.
func runUninstall(ctx context.Context, opts *uninstallOptions) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	dir := a.directory(opts.directory)

	question := fmt.Sprintf("Remove Lumigator at %s", dir)
	if !opts.keepEngine {
		question += " and uninstall Docker"
	}
	if opts.purge {
		question += " including all container data"
	}
	ok, err := Confirm(question+"?", opts.yes)
	if err != nil {
		return err
	}
	if !ok {
		Infof("Aborted")
		return nil
	}

	// Take the stack down before its files disappear. Best effort: the
	// daemon may already be gone.
	if _, statErr := os.Stat(dir); statErr == nil {
		Infof("Taking the compose stack down")
		if err := docker.ComposeDown(ctx, a.runner, dir, opts.purge); err != nil {
			VerboseLog("compose down failed (continuing): %v", err)
		}
	}

	Infof("Removing %s", dir)
	if err := a.projectManager().Remove(dir); err != nil {
		return err
	}

	if opts.keepEngine {
		printUninstallResult(dir, false, opts.purge)
		return nil
	}

	if opts.rootless {
		Infof("Removing rootless Docker")
		if err := a.rootlessInstaller().Uninstall(ctx, opts.purge); err != nil {
			return err
		}
	} else {
		mgr, err := pkgmgr.New(a.info.Family, a.runner)
		if err != nil {
			return err
		}
		Infof("Removing Docker via %s", a.info.Family)
		if err := mgr.UninstallDocker(ctx); err != nil {
			return err
		}
	}

	printUninstallResult(dir, true, opts.purge)
	return nil
}

// printUninstallResult outputs the result in text or JSON format.
func printUninstallResult(dir string, engineRemoved, purged bool) {
	if IsJSONOutput() {
		result := map[string]interface{}{
			"directory":     dir,
			"action":        "uninstalled",
			"engineRemoved": engineRemoved,
			"purged":        purged,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Removed Lumigator from %s\n", dir)
	if engineRemoved {
		fmt.Println("Docker has been uninstalled")
	}
	if !purged {
		fmt.Println("Container volumes were kept; re-run with --purge to delete them")
	}
}
