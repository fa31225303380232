package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"diningwatch/internal/models"
)

// hallsFile represents the structure of the optional halls YAML file.
type hallsFile struct {
	Halls []models.Hall `yaml:"halls"`
}

// DefaultHalls returns the built-in hall table, used when no HALLS_FILE is set.
func DefaultHalls() []models.Hall {
	return []models.Hall{
		{Name: "Baker House", URL: "http://mit.cafebonappetit.com/cafe/baker/"},
		{Name: "Maseeh Hall", URL: "http://mit.cafebonappetit.com/cafe/the-howard-dining-hall-at-maseeh/"},
		{Name: "McCormick", URL: "http://mit.cafebonappetit.com/cafe/mccormick/"},
		{Name: "New Vassar", URL: "http://mit.cafebonappetit.com/cafe/new-vassar/"},
		{Name: "Next House", URL: "http://mit.cafebonappetit.com/cafe/next/"},
		{Name: "Simmons Hall", URL: "http://mit.cafebonappetit.com/cafe/simmons/"},
	}
}

// LoadHalls loads the hall table from the configured YAML file, falling back
// to the built-in defaults when no file is configured. The table is loaded
// once at startup and never mutated at runtime.
func LoadHalls(path string) ([]models.Hall, error) {
	if path == "" {
		return DefaultHalls(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read halls file %s: %w", path, err)
	}

	var f hallsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse halls file %s: %w", path, err)
	}

	if len(f.Halls) == 0 {
		return nil, fmt.Errorf("halls file %s defines no halls", path)
	}

	seen := make(map[string]bool, len(f.Halls))
	for _, h := range f.Halls {
		if h.Name == "" || h.URL == "" {
			return nil, fmt.Errorf("halls file %s: every hall needs a name and a url", path)
		}
		if seen[h.Name] {
			return nil, fmt.Errorf("halls file %s: duplicate hall %q", path, h.Name)
		}
		seen[h.Name] = true
	}

	return f.Halls, nil
}
