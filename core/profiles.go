package core

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SearchProfile is a named preset of search terms.
// Profiles let operators keep recurring keyword sets (for example the
// standard terms for a demand-letter review) in one YAML file instead of
// retyping them per document set.
type SearchProfile struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Terms       []string `yaml:"terms"`
}

type profileFile struct {
	Profiles []SearchProfile `yaml:"profiles"`
}

// LoadProfiles reads search profiles from a YAML file.
// A missing file is not an error: profiles are optional, and an empty
// slice is returned so callers can treat the two cases uniformly.
func LoadProfiles(path string) ([]SearchProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("core: failed to read profiles file %s: %w", path, err)
	}
	return ParseProfiles(data)
}

// ParseProfiles parses and validates YAML profile data.
// Every profile must have a non-empty name and at least one non-blank
// term; names must be unique (case-insensitive). Terms are trimmed and
// blank entries dropped.
func ParseProfiles(data []byte) ([]SearchProfile, error) {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("core: invalid profiles YAML: %w", err)
	}

	seen := make(map[string]bool)
	profiles := make([]SearchProfile, 0, len(file.Profiles))
	for i, p := range file.Profiles {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, fmt.Errorf("core: profile %d has no name", i)
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			return nil, fmt.Errorf("core: duplicate profile name %q", p.Name)
		}
		seen[key] = true

		terms := make([]string, 0, len(p.Terms))
		for _, term := range p.Terms {
			term = strings.TrimSpace(term)
			if term != "" {
				terms = append(terms, term)
			}
		}
		if len(terms) == 0 {
			return nil, fmt.Errorf("core: profile %q has no terms", p.Name)
		}
		p.Terms = terms

		profiles = append(profiles, p)
	}
	return profiles, nil
}

// FindProfile returns the profile with the given name (case-insensitive),
// or false if no profile matches.
func FindProfile(profiles []SearchProfile, name string) (SearchProfile, bool) {
	for _, p := range profiles {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return SearchProfile{}, false
}
