package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a user pattern catalog.
type File struct {
	Patterns []Pattern `yaml:"patterns"`
}

// Load reads a user catalog from a YAML file. Every pattern is
// compiled once up front so a bad expression fails at load time.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse pattern catalog: %w", err)
	}
	for _, p := range f.Patterns {
		if p.Language == "" {
			return nil, fmt.Errorf("pattern %q has no language", p.Name)
		}
		if _, err := p.Compile(); err != nil {
			return nil, err
		}
	}
	return New(f.Patterns)
}
