// Package systemd manages the per-user systemd unit that supervises the
// rootless Docker daemon. It renders the unit file, installs it under
// ~/.config/systemd/user, and drives it through `systemctl --user`.
package systemd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/davidmanzanoai/install-new/internal/execx"
)

// UnitName is the rootless Docker user unit.
const UnitName = "docker-rootless.service"

// unitTemplate follows the unit shipped with Docker's rootless extras.
// Delegate=yes lets the daemon manage its own cgroup subtree.
var unitTemplate = template.Must(template.New("unit").Parse(`[Unit]
Description=Docker Application Container Engine (Rootless)
Documentation=https://docs.docker.com/go/rootless/

[Service]
Environment=PATH={{.PathEnv}}
ExecStart={{.BinDir}}/dockerd-rootless.sh
ExecReload=/bin/kill -s HUP $MAINPID
TimeoutSec=0
RestartSec=2
Restart=always
StartLimitBurst=3
StartLimitInterval=60s
LimitNOFILE=infinity
LimitNPROC=infinity
LimitCORE=infinity
Delegate=yes
Type=notify
KillMode=mixed

[Install]
WantedBy=default.target
`))

// UnitPath returns the install location of the user unit.
func UnitPath(home string) string {
	return filepath.Join(home, ".config", "systemd", "user", UnitName)
}

// RenderUnit produces the unit file contents for a daemon whose helper
// scripts live in binDir. systemd performs no variable expansion inside
// Environment=, so the full search path is baked in at render time; it must
// keep /usr/bin visible or rootlesskit cannot find newuidmap/newgidmap.
func RenderUnit(binDir string) (string, error) {
	pathEnv := binDir + ":/sbin:/usr/sbin"
	if p := os.Getenv("PATH"); p != "" {
		pathEnv += ":" + p
	} else {
		pathEnv += ":/usr/local/bin:/usr/bin:/bin"
	}

	var b strings.Builder
	err := unitTemplate.Execute(&b, struct {
		BinDir  string
		PathEnv string
	}{BinDir: binDir, PathEnv: pathEnv})
	if err != nil {
		return "", fmt.Errorf("failed to render unit: %w", err)
	}
	return b.String(), nil
}

// WriteUnit renders the unit and installs it under the user's systemd
// directory, creating parents as needed.
func WriteUnit(home, binDir string) error {
	content, err := RenderUnit(binDir)
	if err != nil {
		return err
	}
	path := UnitPath(home)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// RemoveUnit deletes the installed unit file; a missing file is not an error.
func RemoveUnit(home string) error {
	if err := os.Remove(UnitPath(home)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", UnitPath(home), err)
	}
	return nil
}

// Controller drives the user unit through systemctl.
type Controller struct {
	runner execx.CommandRunner
}

// NewController returns a Controller using the given runner.
func NewController(runner execx.CommandRunner) *Controller {
	return &Controller{runner: runner}
}

// Available reports whether systemctl exists on PATH.
func (c *Controller) Available() bool {
	_, err := c.runner.LookPath("systemctl")
	return err == nil
}

// EnableNow reloads the user manager and starts the unit with enablement,
// so it comes back on login.
func (c *Controller) EnableNow(ctx context.Context) error {
	if err := c.systemctl(ctx, "daemon-reload"); err != nil {
		return err
	}
	return c.systemctl(ctx, "enable", "--now", UnitName)
}

// Stop stops the running unit.
func (c *Controller) Stop(ctx context.Context) error {
	return c.systemctl(ctx, "stop", UnitName)
}

// Disable disables and stops the unit; used during uninstall.
func (c *Controller) Disable(ctx context.Context) error {
	if err := c.systemctl(ctx, "disable", "--now", UnitName); err != nil {
		return err
	}
	return c.systemctl(ctx, "daemon-reload")
}

// IsActive reports whether the unit is currently running.
func (c *Controller) IsActive(ctx context.Context) bool {
	out, err := c.runner.CombinedOutput(ctx, "systemctl", "--user", "is-active", UnitName)
	return err == nil && out == "active"
}

func (c *Controller) systemctl(ctx context.Context, args ...string) error {
	full := append([]string{"--user"}, args...)
	out, err := c.runner.CombinedOutput(ctx, "systemctl", full...)
	if err != nil {
		return fmt.Errorf("systemctl --user %s failed: %w: %s", strings.Join(args, " "), err, out)
	}
	return nil
}
