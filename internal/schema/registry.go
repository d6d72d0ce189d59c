// Package schema embeds the DefraDB collection definitions for the catalog
// and user accounts.
package schema

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed schemas/*.graphql
var schemaFS embed.FS

// Collection names.
const (
	Movie = "Movie"
	User  = "User"
)

// Schema is one DefraDB collection definition.
type Schema struct {
	Name string
	SDL  string
}

// names lists collections in the order they are applied.
var names = []string{Movie, User}

// All returns every schema in application order.
func All() ([]Schema, error) {
	out := make([]Schema, 0, len(names))
	for _, n := range names {
		s, err := Get(n)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

// Get returns a single schema by collection name.
func Get(name string) (*Schema, error) {
	for _, n := range names {
		if n != name {
			continue
		}
		content, err := schemaFS.ReadFile("schemas/" + strings.ToLower(n) + ".graphql")
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", n, err)
		}
		return &Schema{Name: n, SDL: string(content)}, nil
	}
	return nil, fmt.Errorf("schema not found: %s", name)
}
