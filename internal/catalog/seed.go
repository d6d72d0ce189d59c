package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout accepted by LoadSeed.
//
//	movies:
//	  - title: Heat
//	    description: ...
//	    genre: Crime
//	    release_date: "1995-12-15"
//	    rating: 8.3
type SeedFile struct {
	Movies []MovieInput `yaml:"movies"`
}

// LoadSeed reads and validates a YAML seed file.
func LoadSeed(path string) ([]MovieInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, in := range f.Movies {
		if err := Validate(in); err != nil {
			return nil, fmt.Errorf("seed entry %d (%q): %w", i, in.Title, err)
		}
	}
	return f.Movies, nil
}

// Seed inserts movies into an empty store. A store that already holds
// movies is left untouched and Seed reports zero inserts.
func Seed(ctx context.Context, s Store, movies []MovieInput) (int, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	for i, in := range movies {
		if _, err := s.Create(ctx, in); err != nil {
			return i, fmt.Errorf("failed to seed %q: %w", in.Title, err)
		}
	}
	return len(movies), nil
}
