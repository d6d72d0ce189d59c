// Package prompts keeps the instruction templates sent to the generative
// model. Templates are embedded .tmpl files; the registry exposes them with
// a content hash so a logged call can be tied to the exact prompt text.
package prompts

// EmbeddedPrompt is a prompt template loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   `json:"key"`                 // Hierarchical key: mood.recommend
	Text        string   `json:"text"`                // Go template source
	Description string   `json:"description"`         // Human-readable description
	Variables   []string `json:"variables,omitempty"` // Extracted template variables
	Hash        string   `json:"hash"`                // SHA256 of Text
}
