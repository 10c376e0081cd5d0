package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/marcmerge/pkg/errors"
)

// Manifest lists the record pairs of a batch run. Relative paths are
// resolved against the manifest's directory.
type Manifest struct {
	Rules  string `yaml:"rules" json:"rules"`
	OutDir string `yaml:"outDir" json:"outDir"`
	Pairs  []Pair `yaml:"pairs" json:"pairs"`
}

// Pair is one merge job.
type Pair struct {
	Name      string `yaml:"name" json:"name"`
	Preferred string `yaml:"preferred" json:"preferred"`
	Other     string `yaml:"other" json:"other"`
	// Output defaults to <outDir>/<name>.json.
	Output string `yaml:"output" json:"output"`
}

// LoadManifest reads a YAML or JSON manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	if err := m.resolve(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) resolve(base string) error {
	if len(m.Pairs) == 0 {
		return &errors.ValidationError{Field: "pairs", Message: "manifest lists no pairs"}
	}

	m.Rules = join(base, m.Rules)
	if m.OutDir == "" {
		m.OutDir = "."
	}
	m.OutDir = join(base, m.OutDir)

	seen := make(map[string]bool, len(m.Pairs))
	for i := range m.Pairs {
		p := &m.Pairs[i]
		if p.Preferred == "" || p.Other == "" {
			return &errors.ValidationError{
				Field:   fmt.Sprintf("pairs[%d]", i),
				Message: "preferred and other are required",
			}
		}
		if p.Name == "" {
			p.Name = strings.TrimSuffix(filepath.Base(p.Preferred), filepath.Ext(p.Preferred))
		}
		if seen[p.Name] {
			return &errors.ValidationError{Field: fmt.Sprintf("pairs[%d].name", i), Value: p.Name, Message: "duplicate name"}
		}
		seen[p.Name] = true

		p.Preferred = join(base, p.Preferred)
		p.Other = join(base, p.Other)
		if p.Output == "" {
			p.Output = filepath.Join(m.OutDir, p.Name+".json")
		} else {
			p.Output = join(base, p.Output)
		}
	}
	return nil
}

func join(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
