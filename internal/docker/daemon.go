package docker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// DaemonConfig is the subset of daemon.json the installer cares about.
// The full document is preserved in Raw so writing the file back does not
// drop settings this tool does not understand.
type DaemonConfig struct {
	// DataRoot is the daemon's storage directory ("data-root"). For the
	// rootless daemon this defaults to ~/.local/share/docker; uninstall
	// uses it to locate what to remove.
	DataRoot string

	// Raw holds the complete parsed document.
	Raw map[string]interface{}
}

// DefaultRootlessDaemonConfigPath returns where the rootless daemon reads
// its daemon.json from.
func DefaultRootlessDaemonConfigPath(home string) string {
	return filepath.Join(home, ".config", "docker", "daemon.json")
}

// LoadDaemonConfig reads a daemon.json file. Hand-edited daemon configs in
// the wild frequently carry // comments and trailing commas, so the bytes
// are run through a JSONC-to-JSON pass before parsing. A missing file
// yields an empty config, not an error.
func LoadDaemonConfig(path string) (*DaemonConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &DaemonConfig{Raw: map[string]interface{}{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	raw := map[string]interface{}{}
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg := &DaemonConfig{Raw: raw}
	if dr, ok := raw["data-root"].(string); ok {
		cfg.DataRoot = dr
	}
	return cfg, nil
}

// SetDataRoot updates the data-root in both the typed field and the raw
// document.
func (c *DaemonConfig) SetDataRoot(path string) {
	c.DataRoot = path
	if c.Raw == nil {
		c.Raw = map[string]interface{}{}
	}
	c.Raw["data-root"] = path
}

// WriteDaemonConfig writes the config as plain indented JSON, creating the
// parent directory as needed. Comments from a JSONC source are not carried
// over — dockerd itself only accepts strict JSON.
func WriteDaemonConfig(path string, cfg *DaemonConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	data, err := json.MarshalIndent(cfg.Raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode daemon config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
