package rootless

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/davidmanzanoai/install-new/internal/doctor"
	"github.com/davidmanzanoai/install-new/internal/execx"
	"github.com/davidmanzanoai/install-new/internal/platform"
)

// minSubIDCount is the subordinate ID range rootless Docker needs to map
// container users. 65536 covers a full 16-bit UID space per container.
const minSubIDCount = 65536

const (
	subUIDPath = "/etc/subuid"
	subGIDPath = "/etc/subgid"
)

// Preflight verifies the account and kernel can run a rootless daemon:
// a non-root caller, the setuid mapping helpers, subordinate ID ranges for
// the user, and unprivileged user namespace support. It returns the first
// blocking problem found, with a hint on how to fix it.
func Preflight(runner execx.CommandRunner, uid int, username string) error {
	if uid == 0 {
		return fmt.Errorf("rootless mode must run as a regular user, not root")
	}

	for _, bin := range []string{"newuidmap", "newgidmap"} {
		if _, err := runner.LookPath(bin); err != nil {
			return fmt.Errorf("%s not found; install the uidmap package", bin)
		}
	}

	if err := checkSubIDs(runner, subUIDPath, username, uid); err != nil {
		return err
	}
	if err := checkSubIDs(runner, subGIDPath, username, uid); err != nil {
		return err
	}

	if check := doctor.CheckUserNamespaces(runner, platform.Linux); check.Status != doctor.StatusOK {
		msg := fmt.Sprintf("unprivileged user namespaces unavailable: %s", check.Message)
		if check.Fix != nil {
			msg += fmt.Sprintf(" (try: %s)", check.Fix.Command)
		}
		return fmt.Errorf("%s", msg)
	}

	return nil
}

// checkSubIDs verifies the user has a subordinate ID range of at least
// minSubIDCount in the given file. Entries may name the user or the
// numeric UID.
func checkSubIDs(runner execx.CommandRunner, path, username string, uid int) error {
	data, err := runner.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s; add an entry like %q (sudo usermod --add-subuids 100000-165535 --add-subgids 100000-165535 %s)",
			path, username+":100000:65536", username)
	}

	uidStr := strconv.Itoa(uid)
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(strings.TrimSpace(line), ":")
		if len(fields) != 3 {
			continue
		}
		if fields[0] != username && fields[0] != uidStr {
			continue
		}
		count, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		if count >= minSubIDCount {
			return nil
		}
		return fmt.Errorf("%s entry for %s grants only %d subordinate IDs; at least %d are required",
			path, username, count, minSubIDCount)
	}

	return fmt.Errorf("no %s entry for %s; run: sudo usermod --add-subuids 100000-165535 --add-subgids 100000-165535 %s",
		path, username, username)
}
