package themefile

import (
	"fmt"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

// Selector serves a single go-theme manifest read from disk.
type Selector struct {
	manifest *theme.Manifest
}

var _ theme.ThemeSelector = (*Selector)(nil)

// Load reads a YAML (or JSON) theme manifest.
func Load(path string) (*Selector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("themefile: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes manifest content.
func Parse(data []byte) (*Selector, error) {
	var manifest theme.Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("themefile: parse manifest: %w", err)
	}
	return New(&manifest)
}

// New wraps an in-memory manifest.
func New(manifest *theme.Manifest) (*Selector, error) {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return nil, fmt.Errorf("themefile: manifest name is required")
	}
	return &Selector{manifest: manifest}, nil
}

// Select resolves the manifest, merging the variant's tokens over the base
// tokens. An empty name selects the manifest itself.
func (s *Selector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if s == nil || s.manifest == nil {
		return nil, fmt.Errorf("themefile: no manifest loaded")
	}
	name = strings.TrimSpace(name)
	if name != "" && name != s.manifest.Name {
		return nil, fmt.Errorf("themefile: unknown theme %q", name)
	}

	tokens := make(map[string]string, len(s.manifest.Tokens))
	for key, value := range s.manifest.Tokens {
		tokens[key] = value
	}

	variant = strings.TrimSpace(variant)
	if variant != "" {
		v, ok := s.manifest.Variants[variant]
		if !ok {
			return nil, fmt.Errorf("themefile: theme %q has no variant %q", s.manifest.Name, variant)
		}
		for key, value := range v.Tokens {
			tokens[key] = value
		}
	}

	return &theme.Selection{
		Theme:   s.manifest.Name,
		Variant: variant,
		Manifest: &theme.Manifest{
			Name:    s.manifest.Name,
			Version: s.manifest.Version,
			Tokens:  tokens,
		},
	}, nil
}
