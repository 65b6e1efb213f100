package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Pinned fallback versions. These are used when release resolution against
// the GitHub API is skipped or fails, matching the versions the original
// installers hardcoded.
const (
	DefaultDockerVersion      = "27.3.1"
	DefaultComposeVersion     = "v2.29.7"
	DefaultSlirp4netnsVersion = "v1.2.3"
)

// Duration wraps time.Duration so the YAML file accepts "5s"-style strings.
// yaml.v3 has no native duration support and would otherwise demand raw
// nanosecond integers, unlike the environment variables.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler for env parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the plain time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the resolved installer configuration.
type Config struct {
	// Directory is the Lumigator install target. Defaults to ~/lumigator.
	Directory string `env:"INSTALL_NEW_DIRECTORY" yaml:"directory"`

	// DockerVersion pins the Docker static-binary bundle version.
	DockerVersion string `env:"INSTALL_NEW_DOCKER_VERSION" yaml:"dockerVersion"`

	// ComposeVersion pins the Compose plugin release (with leading "v").
	ComposeVersion string `env:"INSTALL_NEW_COMPOSE_VERSION" yaml:"composeVersion"`

	// Slirp4netnsVersion pins the slirp4netns release (with leading "v").
	Slirp4netnsVersion string `env:"INSTALL_NEW_SLIRP4NETNS_VERSION" yaml:"slirp4netnsVersion"`

	// LumigatorOwner and LumigatorRepo identify the GitHub repository the
	// application archive is fetched from.
	LumigatorOwner string `env:"INSTALL_NEW_LUMIGATOR_OWNER" yaml:"lumigatorOwner"`
	LumigatorRepo  string `env:"INSTALL_NEW_LUMIGATOR_REPO" yaml:"lumigatorRepo"`

	// HealthURL is polled after `make start-lumigator` to confirm the
	// application came up.
	HealthURL string `env:"INSTALL_NEW_HEALTH_URL" yaml:"healthURL"`

	// RetryAttempts is the fixed attempt ceiling for daemon and application
	// health polling. Each failing run of the loop makes exactly this many
	// attempts before giving up.
	RetryAttempts int `env:"INSTALL_NEW_RETRY_ATTEMPTS" yaml:"retryAttempts"`

	// RetryDelay is the pause between polling attempts.
	RetryDelay Duration `env:"INSTALL_NEW_RETRY_DELAY" yaml:"retryDelay"`

	// DockerHost mirrors the standard DOCKER_HOST variable. When set it
	// overrides socket autodetection.
	DockerHost string `env:"DOCKER_HOST" yaml:"-"`

	// XDGRuntimeDir mirrors XDG_RUNTIME_DIR, the directory the rootless
	// daemon places its socket in.
	XDGRuntimeDir string `env:"XDG_RUNTIME_DIR" yaml:"-"`
}

// Default returns the compiled-in configuration. The home directory is
// passed in so tests can use a temp dir.
func Default(home string) Config {
	return Config{
		Directory:          filepath.Join(home, "lumigator"),
		DockerVersion:      DefaultDockerVersion,
		ComposeVersion:     DefaultComposeVersion,
		Slirp4netnsVersion: DefaultSlirp4netnsVersion,
		LumigatorOwner:     "mozilla-ai",
		LumigatorRepo:      "lumigator",
		HealthURL:          "http://localhost:8000/health",
		RetryAttempts:      3,
		RetryDelay:         Duration(5 * time.Second),
	}
}

// FilePath returns the location of the optional YAML config file.
func FilePath(home string) string {
	return filepath.Join(home, ".config", "install-new", "config.yaml")
}

// Load resolves the configuration for the current user: defaults, then the
// YAML file if present, then environment variables.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine home directory: %w", err)
	}
	return load(home, FilePath(home))
}

// load is the testable core of Load.
func load(home, filePath string) (*Config, error) {
	cfg := Default(home)

	data, err := os.ReadFile(filePath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", filePath, err)
		}
	case os.IsNotExist(err):
		// No config file is the common case.
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.RetryAttempts < 1 {
		return nil, fmt.Errorf("retry attempts must be at least 1, got %d", cfg.RetryAttempts)
	}

	return &cfg, nil
}
