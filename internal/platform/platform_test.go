package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidmanzanoai/install-new/internal/execx"
	"github.com/davidmanzanoai/install-new/internal/model"
)

// TestDetect_Darwin verifies that macOS hosts resolve to the brew family
// without reading /etc/os-release.
func TestDetect_Darwin(t *testing.T) {
	runner := execx.NewFakeRunner()

	info, err := detect("darwin", "arm64", runner)
	require.NoError(t, err)

	assert.Equal(t, Darwin, info.OS)
	assert.Equal(t, "aarch64", info.DockerArch)
	assert.Equal(t, FamilyBrew, info.Family)
	assert.Empty(t, info.DistroID)
}

// TestDetect_LinuxUbuntu verifies os-release parsing and family resolution
// for a typical Ubuntu host.
func TestDetect_LinuxUbuntu(t *testing.T) {
	runner := execx.NewFakeRunner()
	runner.Files["/etc/os-release"] = []byte(`NAME="Ubuntu"
VERSION_ID="24.04"
ID=ubuntu
ID_LIKE=debian
`)

	info, err := detect("linux", "amd64", runner)
	require.NoError(t, err)

	assert.Equal(t, Linux, info.OS)
	assert.Equal(t, "x86_64", info.DockerArch)
	assert.Equal(t, "ubuntu", info.DistroID)
	assert.Equal(t, []string{"debian"}, info.DistroLike)
	assert.Equal(t, "24.04", info.VersionID)
	assert.Equal(t, FamilyApt, info.Family)
}

// TestDetect_LinuxDerivative verifies that ID_LIKE ancestry places
// derivatives into the parent's family.
func TestDetect_LinuxDerivative(t *testing.T) {
	tests := []struct {
		name      string
		osRelease string
		want      Family
	}{
		{"rocky", "ID=rocky\nID_LIKE=\"rhel centos fedora\"\n", FamilyDnf},
		{"manjaro", "ID=manjaro\nID_LIKE=arch\n", FamilyPacman},
		{"mint", "ID=linuxmint\nID_LIKE=\"ubuntu debian\"\n", FamilyApt},
		{"alpine", "ID=alpine\n", FamilyUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := execx.NewFakeRunner()
			runner.Files["/etc/os-release"] = []byte(tt.osRelease)

			info, err := detect("linux", "amd64", runner)
			require.NoError(t, err)
			assert.Equal(t, tt.want, info.Family)
		})
	}
}

// TestDetect_LinuxMissingOSRelease verifies that detection succeeds with an
// unknown family when /etc/os-release is absent. Rootless installs do not
// need a package manager, so this must not be fatal.
func TestDetect_LinuxMissingOSRelease(t *testing.T) {
	runner := execx.NewFakeRunner()

	info, err := detect("linux", "amd64", runner)
	require.NoError(t, err)
	assert.Equal(t, FamilyUnknown, info.Family)
}

// TestDetect_UnknownOS verifies the unknown-OS branch exits with the flat
// failure code and a message naming the OS.
func TestDetect_UnknownOS(t *testing.T) {
	runner := execx.NewFakeRunner()

	_, err := detect("windows", "amd64", runner)
	require.Error(t, err)

	cliErr, ok := err.(*model.CLIError)
	require.True(t, ok)
	assert.Equal(t, model.ExitFailure, cliErr.Code)
	assert.Contains(t, cliErr.Message, "unsupported OS")
	assert.Contains(t, cliErr.Message, "windows")
}

// TestDockerArch verifies the Go-to-Docker architecture name mapping.
func TestDockerArch(t *testing.T) {
	tests := []struct {
		goarch  string
		want    string
		wantErr bool
	}{
		{"amd64", "x86_64", false},
		{"arm64", "aarch64", false},
		{"arm", "armv7", false},
		{"riscv64", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.goarch, func(t *testing.T) {
			got, err := DockerArch(tt.goarch)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestParseOSRelease verifies quote stripping and comment handling.
func TestParseOSRelease(t *testing.T) {
	data := []byte(`# comment line
NAME="Fedora Linux"
ID=fedora
VERSION_ID=41
PRETTY_NAME='Fedora Linux 41'

MALFORMED LINE
`)

	fields := ParseOSRelease(data)
	assert.Equal(t, "Fedora Linux", fields["NAME"])
	assert.Equal(t, "fedora", fields["ID"])
	assert.Equal(t, "41", fields["VERSION_ID"])
	assert.Equal(t, "Fedora Linux 41", fields["PRETTY_NAME"])
	assert.NotContains(t, fields, "MALFORMED LINE")
}
