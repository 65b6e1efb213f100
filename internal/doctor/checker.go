package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/davidmanzanoai/install-new/internal/execx"
	"github.com/davidmanzanoai/install-new/internal/platform"
)

// Checker runs dependency checks for a detected platform.
type Checker struct {
	runner  execx.CommandRunner
	info    *platform.Info
	connect func() (Pinger, error)
}

// NewChecker creates a Checker. connect is invoked lazily by the daemon
// check; it typically wraps docker.NewClient.
func NewChecker(runner execx.CommandRunner, info *platform.Info, connect func() (Pinger, error)) *Checker {
	return &Checker{
		runner:  runner,
		info:    info,
		connect: connect,
	}
}

// RunAll executes every check, in report order. includeRootless adds the
// rootless-specific checks (uidmap, slirp4netns, user namespaces), which
// `doctor` always includes and `install` only includes with --rootless.
func (c *Checker) RunAll(ctx context.Context, includeRootless bool) []Check {
	checks := []Check{
		CheckDocker(ctx, c.runner, c.info.Family),
		CheckComposePlugin(ctx, c.runner, c.info.Family),
		CheckLegacyCompose(ctx, c.runner),
		CheckMake(ctx, c.runner, c.info.Family),
		CheckGit(ctx, c.runner, c.info.Family),
		CheckDaemon(ctx, c.connect),
	}

	if includeRootless {
		checks = append(checks,
			CheckSystemctl(ctx, c.runner, c.info.OS),
			CheckUIDMap(ctx, c.runner, c.info.OS, c.info.Family),
			CheckSlirp4netns(ctx, c.runner, c.info.OS, c.info.Family),
			CheckUserNamespaces(c.runner, c.info.OS),
		)
	}

	return checks
}

// MissingPrerequisites filters checks down to the hard failures: missing
// tools and errored checks. Warnings and skips do not block installation.
func MissingPrerequisites(checks []Check) []Check {
	var missing []Check
	for _, c := range checks {
		if c.Status == StatusMissing || c.Status == StatusError {
			missing = append(missing, c)
		}
	}
	return missing
}

// Fixer runs fix commands for failed checks.
type Fixer struct {
	runner execx.CommandRunner
}

// NewFixer creates a Fixer.
func NewFixer(runner execx.CommandRunner) *Fixer {
	return &Fixer{runner: runner}
}

// RunFix executes a fix command through `sh -c`. The combined output is
// included in the error when the command fails.
func (f *Fixer) RunFix(ctx context.Context, fix *FixCommand) error {
	if fix == nil {
		return fmt.Errorf("no fix command available")
	}

	out, err := f.runner.CombinedOutput(ctx, "sh", "-c", fix.Command)
	if err != nil {
		return fmt.Errorf("fix command failed: %s: %w", strings.TrimSpace(out), err)
	}
	return nil
}
