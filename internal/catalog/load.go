package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yml
var seedYAML []byte

// Seed returns the compiled-in default catalog.
func Seed() []Entry {
	entries, err := Parse(seedYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded seed catalog: %v", err))
	}
	return entries
}

// Load reads a catalog file from disk. An empty path returns the
// compiled-in seed.
func Load(path string) ([]Entry, error) {
	if path == "" {
		return Seed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Parse decodes YAML bytes into an entry list.
func Parse(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return []Entry{}, nil
	}
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}
	if entries == nil {
		return []Entry{}, nil
	}
	return entries, nil
}

// Validate checks IDs are present and unique and ratings are within 0-5.
func Validate(entries []Entry) error {
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("entry %d: missing id", i)
		}
		if seen[e.ID] {
			return fmt.Errorf("duplicate entry id %q", e.ID)
		}
		seen[e.ID] = true
		if e.Rating < 0 || e.Rating > 5 {
			return fmt.Errorf("entry %q: rating %.1f out of range 0-5", e.ID, e.Rating)
		}
	}
	return nil
}
