package project

import (
	"context"

	"github.com/davidmanzanoai/install-new/internal/model"
)

// Makefile targets Lumigator ships for lifecycle management.
const (
	startTarget = "start-lumigator"
	stopTarget  = "stop-lumigator"
)

// Start runs `make start-lumigator` in dir with the caller's stdio
// attached, so compose build output streams to the terminal. extraEnv
// carries DOCKER_HOST when a rootless daemon was just bootstrapped and the
// shell environment does not have it yet.
func (m *Manager) Start(ctx context.Context, dir string, extraEnv map[string]string) error {
	if !hasMakefile(dir) {
		return model.Errorf("no Makefile in %s; run install first", dir)
	}

	m.logf("running make %s in %s", startTarget, dir)
	if err := m.runner.RunInteractive(ctx, dir, extraEnv, "make", startTarget); err != nil {
		return model.WrapCLIError("make "+startTarget+" failed", err)
	}
	return nil
}

// Stop runs `make stop-lumigator` in dir.
func (m *Manager) Stop(ctx context.Context, dir string, extraEnv map[string]string) error {
	if !hasMakefile(dir) {
		return model.Errorf("no Makefile in %s; nothing to stop", dir)
	}

	m.logf("running make %s in %s", stopTarget, dir)
	if err := m.runner.RunInteractive(ctx, dir, extraEnv, "make", stopTarget); err != nil {
		return model.WrapCLIError("make "+stopTarget+" failed", err)
	}
	return nil
}
