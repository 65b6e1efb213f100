// Package shellrc persists environment variables for rootless Docker by
// writing a dedicated ~/.bashrc.docker file and sourcing it from ~/.bashrc.
// All content this package writes sits between marker lines so repeated
// installs rewrite the block instead of appending duplicates, and uninstall
// can remove exactly what was added.
package shellrc

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// envFileName is the file holding the exported variables.
	envFileName = ".bashrc.docker"

	beginMarker = "# >>> install-new docker env >>>"
	endMarker   = "# <<< install-new docker env <<<"
)

// EnvFilePath returns the path of the managed environment file.
func EnvFilePath(home string) string {
	return filepath.Join(home, envFileName)
}

// sourceLine is the single line added to ~/.bashrc to load the env file.
func sourceLine(home string) string {
	return fmt.Sprintf("[ -f %q ] && . %q %s", EnvFilePath(home), EnvFilePath(home), beginMarker)
}

// Apply writes the managed environment file with the given variables and
// ensures ~/.bashrc sources it. Calling Apply again replaces the previous
// block; nothing outside the markers is touched.
func Apply(home string, env map[string]string) error {
	var b strings.Builder
	b.WriteString(beginMarker + "\n")
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "export %s=%q\n", k, env[k])
	}
	b.WriteString(endMarker + "\n")

	if err := os.WriteFile(EnvFilePath(home), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", EnvFilePath(home), err)
	}

	return ensureSourced(home)
}

// ensureSourced adds the source line to ~/.bashrc unless already present.
func ensureSourced(home string) error {
	rcPath := filepath.Join(home, ".bashrc")
	line := sourceLine(home)

	data, err := os.ReadFile(rcPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", rcPath, err)
	}
	if strings.Contains(string(data), beginMarker) {
		return nil
	}

	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += line + "\n"

	if err := os.WriteFile(rcPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to update %s: %w", rcPath, err)
	}
	return nil
}

// Remove deletes the managed environment file and strips the source line
// from ~/.bashrc. Missing files are not an error.
func Remove(home string) error {
	if err := os.Remove(EnvFilePath(home)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", EnvFilePath(home), err)
	}

	rcPath := filepath.Join(home, ".bashrc")
	data, err := os.ReadFile(rcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", rcPath, err)
	}

	lines := strings.Split(string(data), "\n")
	kept := lines[:0]
	changed := false
	for _, l := range lines {
		if strings.Contains(l, beginMarker) {
			changed = true
			continue
		}
		kept = append(kept, l)
	}
	if !changed {
		return nil
	}

	if err := os.WriteFile(rcPath, []byte(strings.Join(kept, "\n")), 0o644); err != nil {
		return fmt.Errorf("failed to update %s: %w", rcPath, err)
	}
	return nil
}
