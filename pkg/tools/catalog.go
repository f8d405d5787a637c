package tools

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// catalogFile mirrors the YAML layout of catalog.yaml.
type catalogFile struct {
	Tools []Descriptor `yaml:"tools"`
}

// DefaultCatalog returns the descriptors shipped with the binary.
func DefaultCatalog() ([]Descriptor, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes a YAML tool catalog, keeping declaration order.
func ParseCatalog(data []byte) ([]Descriptor, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse tool catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Tools))
	out := make([]Descriptor, 0, len(file.Tools))
	for i, desc := range file.Tools {
		desc.Name = strings.TrimSpace(desc.Name)
		desc.Description = strings.TrimSpace(desc.Description)
		if desc.Name == "" {
			return nil, fmt.Errorf("tool catalog entry %d: missing name", i)
		}
		if seen[desc.Name] {
			return nil, fmt.Errorf("tool catalog: duplicate tool %s", desc.Name)
		}
		seen[desc.Name] = true
		out = append(out, desc)
	}
	return out, nil
}

// lookupDescriptor finds a descriptor by name.
func lookupDescriptor(descs []Descriptor, name string) (Descriptor, bool) {
	for _, d := range descs {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}
