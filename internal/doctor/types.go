package doctor

// Status represents the outcome of a single dependency check.
type Status int

const (
	// StatusOK indicates the dependency is installed and working.
	StatusOK Status = iota
	// StatusMissing indicates the dependency is not installed.
	StatusMissing
	// StatusWarning indicates the dependency has issues but may work.
	StatusWarning
	// StatusError indicates the check itself could not complete.
	StatusError
	// StatusSkipped indicates the check does not apply on this host
	// (e.g. rootless checks on macOS).
	StatusSkipped
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Check is the result of a single dependency check.
type Check struct {
	ID          string      // Unique identifier, e.g. "docker", "compose-plugin"
	Name        string      // Display name
	Description string      // What this tool is needed for
	Status      Status      // Outcome
	Message     string      // Version info, error detail, or hint
	Fix         *FixCommand // How to fix when missing (nil if not fixable)
}

// FixCommand describes how to install a missing dependency.
type FixCommand struct {
	Description string // Human-readable description of what the fix does
	Command     string // Shell command to run
	Sudo        bool   // Whether the command needs elevated privileges
}

// Check IDs.
const (
	IDDocker       = "docker"
	IDComposePlug  = "compose-plugin"
	IDLegacyCompos = "docker-compose"
	IDMake         = "make"
	IDGit          = "git"
	IDSystemctl    = "systemctl"
	IDUIDMap       = "uidmap"
	IDSlirp4netns  = "slirp4netns"
	IDUserNS       = "userns"
	IDDaemon       = "daemon"
)

// Summary aggregates check outcomes for the report footer.
type Summary struct {
	Total    int
	OK       int
	Missing  int
	Warnings int
	Errors   int
	Skipped  int
}

// Summarize counts check outcomes.
func Summarize(checks []Check) Summary {
	var s Summary
	for _, c := range checks {
		s.Total++
		switch c.Status {
		case StatusOK:
			s.OK++
		case StatusMissing:
			s.Missing++
		case StatusWarning:
			s.Warnings++
		case StatusError:
			s.Errors++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}
