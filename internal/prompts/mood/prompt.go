// Package mood builds the mood-search prompt.
package mood

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cinemind/cinemind/internal/catalog"
	"github.com/cinemind/cinemind/internal/prompts"
)

//go:embed recommend.tmpl
var recommendTmpl string

var recommendTemplate = prompts.MustParse("mood", recommendTmpl)

// PromptKey identifies the mood-search prompt in the registry.
const PromptKey = "mood.recommend"

var (
	ErrEmptyMood    = errors.New("mood is empty")
	ErrEmptyCatalog = errors.New("catalog snapshot is empty")
)

// Prompt renders the instruction asking the model for the limit best
// matching ids from snapshot. Descriptions longer than descLimit runes are
// shortened (descLimit <= 0 keeps them whole).
func Prompt(mood string, snapshot []catalog.SnapshotEntry, limit, descLimit int) (string, error) {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return "", ErrEmptyMood
	}
	if len(snapshot) == 0 {
		return "", ErrEmptyCatalog
	}

	entries := snapshot
	if descLimit > 0 {
		entries = make([]catalog.SnapshotEntry, len(snapshot))
		for i, e := range snapshot {
			e.Description = shorten(e.Description, descLimit)
			entries[i] = e
		}
	}

	catalogJSON, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode catalog snapshot: %w", err)
	}
	moodJSON, err := json.Marshal(mood)
	if err != nil {
		return "", fmt.Errorf("failed to encode mood: %w", err)
	}

	return recommendTemplate.Render(struct {
		Mood    string
		Catalog string
		Limit   int
	}{string(moodJSON), string(catalogJSON), limit})
}

func shorten(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit])) + "…"
}

// RegisterPrompts registers the mood prompt with the registry.
func RegisterPrompts(r *prompts.Registry) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PromptKey,
		Text:        recommendTmpl,
		Description: "Mood search: pick the best matching catalog ids for a free-text mood",
	})
}
