// Package cli — doctor.go implements the "install-new doctor" command.
//
// Doctor reports the state of every dependency Lumigator needs (including
// the rootless-only ones), shows the running compose containers when the
// daemon is reachable, and can run the missing tools' install commands
// with --fix.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/davidmanzanoai/install-new/internal/docker"
	"github.com/davidmanzanoai/install-new/internal/doctor"
	"github.com/davidmanzanoai/install-new/internal/model"
)

// composeProjectName is the compose project Lumigator's Makefile creates.
const composeProjectName = "lumigator"

// Status glyph styles for the doctor report.
var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	skipStyle    = lipgloss.NewStyle().Faint(true)
	nameStyle    = lipgloss.NewStyle().Bold(true).Width(24)
	fixStyle     = lipgloss.NewStyle().Faint(true).PaddingLeft(6)
)

// NewDoctorCommand creates the "doctor" cobra command.
func NewDoctorCommand() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check every dependency Lumigator needs",
		Long: `Check the Docker CLI, compose plugin, make, git, daemon reachability,
and the rootless prerequisites (newuidmap, slirp4netns, user namespaces).
Each missing tool is reported with the command that installs it; --fix
runs those commands.

Exits 0 when everything required is present, 1 otherwise.

Examples:
  install-new doctor
  install-new doctor --fix
  install-new doctor --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), fix)
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Run the install command for each missing dependency")

	return cmd
}

// runDoctor is the main logic function for the doctor command.
func runDoctor(ctx context.Context, fix bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	checks := a.checker().RunAll(ctx, true)

	if fix {
		checks = runFixes(ctx, a, checks)
	}

	containers := lumigatorContainers(ctx)

	if IsJSONOutput() {
		printDoctorJSON(checks, containers)
	} else {
		printDoctorText(checks, containers)
	}

	if missing := doctor.MissingPrerequisites(checks); len(missing) > 0 {
		return model.Errorf("%d problem(s) found", len(missing))
	}
	return nil
}

// runFixes executes the fix command of every missing check, then re-runs
// the checks so the report shows the post-fix state.
func runFixes(ctx context.Context, a *app, checks []doctor.Check) []doctor.Check {
	fixer := doctor.NewFixer(a.runner)
	ran := false

	for _, c := range doctor.MissingPrerequisites(checks) {
		if c.Fix == nil {
			continue
		}
		Infof("Fixing %s: %s", c.Name, c.Fix.Command)
		if err := fixer.RunFix(ctx, c.Fix); err != nil {
			Infof("  fix failed: %v", err)
			continue
		}
		ran = true
	}

	if !ran {
		return checks
	}
	return a.checker().RunAll(ctx, true)
}

// lumigatorContainers lists the compose project's containers. Any failure
// (no daemon, no docker) yields nil; the daemon check already reports that.
func lumigatorContainers(ctx context.Context) []docker.ContainerInfo {
	cli, err := docker.NewClient()
	if err != nil {
		return nil
	}
	defer func() { _ = cli.Close() }()

	containers, err := docker.ListProjectContainers(ctx, cli, composeProjectName)
	if err != nil {
		return nil
	}
	return containers
}

// printDoctorText renders the human-readable report.
func printDoctorText(checks []doctor.Check, containers []docker.ContainerInfo) {
	fmt.Println("Dependency checks:")
	for _, c := range checks {
		fmt.Printf("  %s %s %s\n", glyph(c.Status), nameStyle.Render(c.Name), c.Message)
		if c.Status == doctor.StatusMissing && c.Fix != nil {
			fmt.Println(fixStyle.Render("fix: " + c.Fix.Command))
		}
	}

	s := doctor.Summarize(checks)
	fmt.Printf("\n%d checks: %d ok, %d missing, %d warnings, %d errors, %d skipped\n",
		s.Total, s.OK, s.Missing, s.Warnings, s.Errors, s.Skipped)

	if len(containers) > 0 {
		fmt.Printf("\nLumigator containers:\n")
		for _, c := range containers {
			style := okStyle
			if c.State != "running" {
				style = warnStyle
			}
			fmt.Printf("  %s %s (%s)\n", style.Render("●"), c.Name, c.State)
		}
	}
}

// glyph returns the styled status marker for a check.
func glyph(s doctor.Status) string {
	switch s {
	case doctor.StatusOK:
		return okStyle.Render("✓")
	case doctor.StatusMissing:
		return missingStyle.Render("✗")
	case doctor.StatusWarning:
		return warnStyle.Render("!")
	case doctor.StatusError:
		return missingStyle.Render("✗")
	default:
		return skipStyle.Render("-")
	}
}

// printDoctorJSON renders the machine-readable report.
func printDoctorJSON(checks []doctor.Check, containers []docker.ContainerInfo) {
	type checkJSON struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Status  string `json:"status"`
		Message string `json:"message"`
		Fix     string `json:"fix,omitempty"`
	}

	out := make([]checkJSON, 0, len(checks))
	for _, c := range checks {
		cj := checkJSON{
			ID:      c.ID,
			Name:    c.Name,
			Status:  c.Status.String(),
			Message: c.Message,
		}
		if c.Fix != nil {
			cj.Fix = c.Fix.Command
		}
		out = append(out, cj)
	}

	result := map[string]interface{}{
		"checks":  out,
		"summary": doctor.Summarize(checks),
	}
	if containers != nil {
		result["containers"] = containers
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(data))
}
