// Package metadata builds the prompt that drafts descriptive fields for a
// new catalog entry from its title.
package metadata

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cinemind/cinemind/internal/prompts"
)

//go:embed draft.tmpl
var draftTmpl string

var draftTemplate = prompts.MustParse("metadata", draftTmpl)

// PromptKey identifies the metadata prompt in the registry.
const PromptKey = "metadata.draft"

// ErrEmptyTitle is returned for a blank title.
var ErrEmptyTitle = errors.New("title is empty")

// Prompt renders the metadata instruction for title.
func Prompt(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	titleJSON, err := json.Marshal(title)
	if err != nil {
		return "", fmt.Errorf("failed to encode title: %w", err)
	}

	return draftTemplate.Render(struct{ Title string }{string(titleJSON)})
}

// RegisterPrompts registers the metadata prompt with the registry.
func RegisterPrompts(r *prompts.Registry) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PromptKey,
		Text:        draftTmpl,
		Description: "Metadata synthesis: draft description, genre, release date and rating from a title",
	})
}
