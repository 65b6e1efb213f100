// Package cli implements the cobra-based CLI commands for install-new.
//
// Each subcommand (install, uninstall, start, stop, doctor) is defined in
// its own file within this package. This file defines the root command that
// serves as the parent for all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/davidmanzanoai/install-new/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	jsonOutput bool

	// verbose enables detailed logging output for debugging.
	verbose bool

	// quiet suppresses informational output. Errors still print.
	quiet bool
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "install-new",
		Short: "Install Docker and Lumigator with one command",
		Long: `install-new sets up everything Lumigator needs on macOS or Linux:
the Docker engine (rootful via the package manager, or rootless from the
static binaries), the compose plugin, the Lumigator checkout itself, and
finally starts it and waits for the health endpoint.

All state lives in predictable places (~/lumigator, ~/bin,
~/.config/docker) and "install-new uninstall" removes it again.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	// PersistentFlags are inherited by all subcommands.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")

	rootCmd.AddCommand(NewInstallCommand())
	rootCmd.AddCommand(NewUninstallCommand())
	rootCmd.AddCommand(NewStartCommand())
	rootCmd.AddCommand(NewStopCommand())
	rootCmd.AddCommand(NewDoctorCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// The exit contract is flat: 0 on success, 1 on any failure, so existing
// automation written against the shell installers keeps working.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitFailure))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode; stdout is reserved for
		// successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// Infof prints an informational line to stderr unless --quiet or --json is
// set. Progress narration goes to stderr so stdout stays machine-parseable.
func Infof(format string, args ...interface{}) {
	if quiet || jsonOutput {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}
