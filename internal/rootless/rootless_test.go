package rootless

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidmanzanoai/install-new/internal/doctor"
	"github.com/davidmanzanoai/install-new/internal/execx"
)

// readyRunner returns a FakeRunner representing a host where every rootless
// prerequisite is satisfied for user "dev" (uid 1000).
func readyRunner() *execx.FakeRunner {
	fake := execx.NewFakeRunner()
	fake.Paths["newuidmap"] = "/usr/bin/newuidmap"
	fake.Paths["newgidmap"] = "/usr/bin/newgidmap"
	fake.Files["/etc/subuid"] = []byte("dev:100000:65536\n")
	fake.Files["/etc/subgid"] = []byte("dev:100000:65536\n")
	fake.Files["/proc/sys/user/max_user_namespaces"] = []byte("28633\n")
	return fake
}

// TestPreflight_OK verifies a fully prepared host passes.
func TestPreflight_OK(t *testing.T) {
	assert.NoError(t, Preflight(readyRunner(), 1000, "dev"))
}

// TestPreflight_Root verifies running as root is rejected.
func TestPreflight_Root(t *testing.T) {
	err := Preflight(readyRunner(), 0, "root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regular user")
}

// TestPreflight_MissingUIDMap verifies the uidmap package hint.
func TestPreflight_MissingUIDMap(t *testing.T) {
	fake := readyRunner()
	delete(fake.Paths, "newgidmap")

	err := Preflight(fake, 1000, "dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newgidmap")
	assert.Contains(t, err.Error(), "uidmap")
}

// TestPreflight_SubIDs covers the subordinate ID edge cases: no entry,
// too-small range, and numeric-UID entries.
func TestPreflight_SubIDs(t *testing.T) {
	tests := []struct {
		name    string
		subuid  string
		wantErr string
	}{
		{
			name:    "no entry for user",
			subuid:  "other:100000:65536\n",
			wantErr: "no /etc/subuid entry for dev",
		},
		{
			name:    "range too small",
			subuid:  "dev:100000:1000\n",
			wantErr: "grants only 1000",
		},
		{
			name:   "numeric uid entry",
			subuid: "1000:100000:65536\n",
		},
		{
			name:   "entry among others",
			subuid: "alice:100000:65536\ndev:165536:65536\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := readyRunner()
			fake.Files["/etc/subuid"] = []byte(tt.subuid)

			err := Preflight(fake, 1000, "dev")
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

// TestPreflight_UserNSDisabled verifies the Debian clone sysctl gate.
func TestPreflight_UserNSDisabled(t *testing.T) {
	fake := readyRunner()
	fake.Files["/proc/sys/kernel/unprivileged_userns_clone"] = []byte("0\n")

	err := Preflight(fake, 1000, "dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unprivileged_userns_clone")
	assert.Contains(t, err.Error(), "sysctl")
}

// pingerFunc adapts a function to the doctor.Pinger interface.
type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// TestWaitForDaemon_SucceedsMidway verifies polling stops on first success.
func TestWaitForDaemon_SucceedsMidway(t *testing.T) {
	attempts := 0
	connect := func() (doctor.Pinger, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("socket not ready")
		}
		return pingerFunc(func(context.Context) error { return nil }), nil
	}

	slept := 0
	err := WaitForDaemon(context.Background(), connect, 5, time.Second,
		func(time.Duration) { slept++ },
		func(string, ...interface{}) {})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, slept)
}

// TestWaitForDaemon_ExhaustsAttempts verifies the loop makes exactly the
// configured number of attempts and sleeps only between them.
func TestWaitForDaemon_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	connect := func() (doctor.Pinger, error) {
		attempts++
		return nil, errors.New("no daemon")
	}

	slept := 0
	err := WaitForDaemon(context.Background(), connect, 3, time.Second,
		func(time.Duration) { slept++ },
		func(string, ...interface{}) {})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, slept)
}

// TestWaitForDaemon_PingFailure verifies a reachable socket with a failing
// ping still counts as a failed attempt.
func TestWaitForDaemon_PingFailure(t *testing.T) {
	connect := func() (doctor.Pinger, error) {
		return pingerFunc(func(context.Context) error {
			return errors.New("daemon starting")
		}), nil
	}

	err := WaitForDaemon(context.Background(), connect, 1, 0,
		func(time.Duration) {}, func(string, ...interface{}) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 1 attempts")
}
