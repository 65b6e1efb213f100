package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidmanzanoai/install-new/internal/execx"
	"github.com/davidmanzanoai/install-new/internal/platform"
)

// fakePinger satisfies Pinger with a scripted error.
type fakePinger struct {
	err error
}

func (p *fakePinger) Ping(context.Context) error { return p.err }

func linuxAptInfo() *platform.Info {
	return &platform.Info{OS: platform.Linux, Family: platform.FamilyApt, Arch: "amd64", DockerArch: "x86_64"}
}

// TestCheckDocker_Installed verifies that a docker binary on PATH with
// version output produces an OK check with the extracted version.
func TestCheckDocker_Installed(t *testing.T) {
	runner := execx.NewFakeRunner()
	runner.Paths["docker"] = "/usr/bin/docker"
	runner.Outputs["/usr/bin/docker --version"] = "Docker version 27.3.1, build ce12230"

	check := CheckDocker(context.Background(), runner, platform.FamilyApt)
	assert.Equal(t, StatusOK, check.Status)
	assert.Equal(t, "27.3.1", check.Message)
}

// TestCheckDocker_VersionFails verifies that a docker binary whose version
// command exits non-zero is a blocking failure, not a pass.
func TestCheckDocker_VersionFails(t *testing.T) {
	runner := execx.NewFakeRunner()
	runner.Paths["docker"] = "/usr/bin/docker"
	runner.Errs["/usr/bin/docker --version"] = errors.New("exit status 127")

	check := CheckDocker(context.Background(), runner, platform.FamilyApt)
	assert.Equal(t, StatusError, check.Status)
	assert.Contains(t, check.Message, "/usr/bin/docker")
	assert.Contains(t, check.Message, "failed")

	assert.Len(t, MissingPrerequisites([]Check{check}), 1)
}

// TestCheckDocker_Missing verifies the missing branch carries an apt fix.
func TestCheckDocker_Missing(t *testing.T) {
	runner := execx.NewFakeRunner()

	check := CheckDocker(context.Background(), runner, platform.FamilyApt)
	assert.Equal(t, StatusMissing, check.Status)
	require.NotNil(t, check.Fix)
	assert.Contains(t, check.Fix.Command, "apt-get install")
	assert.True(t, check.Fix.Sudo)
}

// TestCheckDocker_MissingUnknownFamily verifies that an unknown distro
// family yields no fix command.
func TestCheckDocker_MissingUnknownFamily(t *testing.T) {
	runner := execx.NewFakeRunner()

	check := CheckDocker(context.Background(), runner, platform.FamilyUnknown)
	assert.Equal(t, StatusMissing, check.Status)
	assert.Nil(t, check.Fix)
}

// TestCheckComposePlugin verifies the three plugin states: installed,
// plugin missing, docker itself missing.
func TestCheckComposePlugin(t *testing.T) {
	t.Run("installed", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.Paths["docker"] = "/usr/bin/docker"
		runner.Outputs["docker compose version"] = "Docker Compose version v2.29.7"

		check := CheckComposePlugin(context.Background(), runner, platform.FamilyApt)
		assert.Equal(t, StatusOK, check.Status)
		assert.Equal(t, "2.29.7", check.Message)
	})

	t.Run("plugin missing", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.Paths["docker"] = "/usr/bin/docker"
		runner.Errs["docker compose version"] = errors.New("is not a docker command")

		check := CheckComposePlugin(context.Background(), runner, platform.FamilyApt)
		assert.Equal(t, StatusMissing, check.Status)
	})

	t.Run("docker missing", func(t *testing.T) {
		runner := execx.NewFakeRunner()

		check := CheckComposePlugin(context.Background(), runner, platform.FamilyApt)
		assert.Equal(t, StatusMissing, check.Status)
		assert.Equal(t, "docker not installed", check.Message)
	})
}

// TestCheckLegacyCompose verifies that the standalone binary only warns.
func TestCheckLegacyCompose(t *testing.T) {
	runner := execx.NewFakeRunner()
	check := CheckLegacyCompose(context.Background(), runner)
	assert.Equal(t, StatusOK, check.Status)

	runner.Paths["docker-compose"] = "/usr/local/bin/docker-compose"
	check = CheckLegacyCompose(context.Background(), runner)
	assert.Equal(t, StatusWarning, check.Status)
}

// TestCheckUIDMap verifies subordinate-ID helper detection and the darwin
// skip.
func TestCheckUIDMap(t *testing.T) {
	runner := execx.NewFakeRunner()
	runner.Paths["newuidmap"] = "/usr/bin/newuidmap"

	check := CheckUIDMap(context.Background(), runner, platform.Linux, platform.FamilyApt)
	assert.Equal(t, StatusMissing, check.Status)
	assert.Contains(t, check.Message, "newgidmap")

	runner.Paths["newgidmap"] = "/usr/bin/newgidmap"
	check = CheckUIDMap(context.Background(), runner, platform.Linux, platform.FamilyApt)
	assert.Equal(t, StatusOK, check.Status)

	check = CheckUIDMap(context.Background(), runner, platform.Darwin, platform.FamilyBrew)
	assert.Equal(t, StatusSkipped, check.Status)
}

// TestCheckUserNamespaces exercises the kernel sysctl branches.
func TestCheckUserNamespaces(t *testing.T) {
	t.Run("debian clone sysctl disabled", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.Files[usernsClonePath] = []byte("0\n")

		check := CheckUserNamespaces(runner, platform.Linux)
		assert.Equal(t, StatusMissing, check.Status)
		require.NotNil(t, check.Fix)
		assert.Contains(t, check.Fix.Command, "unprivileged_userns_clone")
	})

	t.Run("max namespaces zero", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.Files[maxUserNamespaces] = []byte("0\n")

		check := CheckUserNamespaces(runner, platform.Linux)
		assert.Equal(t, StatusMissing, check.Status)
	})

	t.Run("supported", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.Files[usernsClonePath] = []byte("1\n")
		runner.Files[maxUserNamespaces] = []byte("28633\n")

		check := CheckUserNamespaces(runner, platform.Linux)
		assert.Equal(t, StatusOK, check.Status)
	})

	t.Run("sysctls absent", func(t *testing.T) {
		// Non-Debian kernels without the clone sysctl count as supported.
		runner := execx.NewFakeRunner()
		check := CheckUserNamespaces(runner, platform.Linux)
		assert.Equal(t, StatusOK, check.Status)
	})
}

// TestCheckDaemon verifies the three daemon states.
func TestCheckDaemon(t *testing.T) {
	ctx := context.Background()

	check := CheckDaemon(ctx, func() (Pinger, error) { return &fakePinger{}, nil })
	assert.Equal(t, StatusOK, check.Status)

	check = CheckDaemon(ctx, func() (Pinger, error) { return nil, errors.New("socket not found") })
	assert.Equal(t, StatusMissing, check.Status)

	check = CheckDaemon(ctx, func() (Pinger, error) {
		return &fakePinger{err: errors.New("daemon not responding")}, nil
	})
	assert.Equal(t, StatusError, check.Status)
}

// TestRunAll verifies check ordering and the rootless toggle.
func TestRunAll(t *testing.T) {
	runner := execx.NewFakeRunner()
	checker := NewChecker(runner, linuxAptInfo(), func() (Pinger, error) {
		return &fakePinger{}, nil
	})

	base := checker.RunAll(context.Background(), false)
	assert.Len(t, base, 6)

	full := checker.RunAll(context.Background(), true)
	assert.Len(t, full, 10)
	assert.Equal(t, IDUserNS, full[len(full)-1].ID)
}

// TestMissingPrerequisites verifies that warnings and skips do not block.
func TestMissingPrerequisites(t *testing.T) {
	checks := []Check{
		{ID: "a", Status: StatusOK},
		{ID: "b", Status: StatusWarning},
		{ID: "c", Status: StatusMissing},
		{ID: "d", Status: StatusSkipped},
		{ID: "e", Status: StatusError},
	}

	missing := MissingPrerequisites(checks)
	require.Len(t, missing, 2)
	assert.Equal(t, "c", missing[0].ID)
	assert.Equal(t, "e", missing[1].ID)
}

// TestFixer_RunFix verifies fix execution through sh -c and error wrapping.
func TestFixer_RunFix(t *testing.T) {
	runner := execx.NewFakeRunner()
	fixer := NewFixer(runner)

	fix := &FixCommand{Command: "sudo apt-get install -y make"}
	require.NoError(t, fixer.RunFix(context.Background(), fix))
	assert.True(t, runner.CalledWith("sh", "-c", "sudo apt-get install -y make"))

	runner.Errs["sh -c false-cmd"] = errors.New("exit status 1")
	runner.Outputs["sh -c false-cmd"] = "E: Unable to locate package"
	err := fixer.RunFix(context.Background(), &FixCommand{Command: "false-cmd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unable to locate package")

	assert.Error(t, fixer.RunFix(context.Background(), nil))
}

// TestSummarize verifies the report footer counts.
func TestSummarize(t *testing.T) {
	s := Summarize([]Check{
		{Status: StatusOK}, {Status: StatusOK},
		{Status: StatusMissing},
		{Status: StatusWarning},
		{Status: StatusSkipped},
	})
	assert.Equal(t, Summary{Total: 5, OK: 2, Missing: 1, Warnings: 1, Skipped: 1}, s)
}
