package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// composeFileNames are probed in order when locating the project's compose
// file, matching compose's own lookup order.
var composeFileNames = []string{
	"docker-compose.yaml",
	"docker-compose.yml",
	"compose.yaml",
	"compose.yml",
}

// composeFile mirrors the subset of the compose schema the port preflight
// needs.
type composeFile struct {
	Services map[string]composeService `yaml:"services"`
}

type composeService struct {
	Ports []composePort `yaml:"ports"`
}

// composePort accepts both the short string form ("8000:8000",
// "127.0.0.1:3000:3000") and the long map form ({published: 8000, ...}).
type composePort struct {
	published int
}

func (p *composePort) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		p.published = parseShortPort(s)
		return nil

	case yaml.MappingNode:
		// The long form allows published as either an int or a string.
		var long map[string]interface{}
		if err := value.Decode(&long); err != nil {
			return err
		}
		switch v := long["published"].(type) {
		case int:
			p.published = v
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				p.published = n
			}
		}
		return nil

	default:
		return fmt.Errorf("unsupported port entry on line %d", value.Line)
	}
}

// parseShortPort extracts the published (host) port from compose's short
// syntax. Entries without a host port, or with variable interpolation the
// file does not resolve, yield 0 and are skipped by the preflight.
func parseShortPort(s string) int {
	// Strip a protocol suffix like "8000:8000/udp".
	s, _, _ = strings.Cut(s, "/")

	parts := strings.Split(s, ":")
	var host string
	switch len(parts) {
	case 1:
		// Container-only port; no host binding to check.
		return 0
	case 2:
		host = parts[0]
	case 3:
		host = parts[1]
	default:
		return 0
	}

	n, err := strconv.Atoi(host)
	if err != nil {
		return 0
	}
	return n
}

// PublishedPorts parses the project's compose file and returns the host
// ports its services publish, sorted and deduplicated. A missing compose
// file returns an empty list: the Makefile may generate one, so its absence
// is not an error at preflight time.
func PublishedPorts(dir string) ([]int, error) {
	path := ""
	for _, name := range composeFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
			break
		}
	}
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cf composeFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	seen := map[int]bool{}
	var ports []int
	for _, svc := range cf.Services {
		for _, p := range svc.Ports {
			if p.published > 0 && !seen[p.published] {
				seen[p.published] = true
				ports = append(ports, p.published)
			}
		}
	}
	sort.Ints(ports)
	return ports, nil
}
