package prompts

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"text/template"
	"text/template/parse"
)

// Template is a parsed prompt template.
type Template struct {
	name string
	tmpl *template.Template
}

// MustParse parses text and panics on a syntax error. Prompt templates are
// embedded at build time, so a bad one is a programming error.
func MustParse(name, text string) *Template {
	t := template.New(name).Option("missingkey=error")
	return &Template{name: name, tmpl: template.Must(t.Parse(text))}
}

// Render executes the template with data.
func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", t.name, err)
	}
	return buf.String(), nil
}

// ExtractVariables returns the sorted, distinct top-level fields a template
// reads, such as "Mood" for {{.Mood}} or "Movie.Title" for {{.Movie.Title}}.
// Fields read inside range and with bodies refer to a different dot and are
// skipped. Text that does not parse yields nil.
func ExtractVariables(text string) []string {
	trees, err := parse.Parse("vars", text, "", "", map[string]any{})
	if err != nil {
		return nil
	}
	var vars []string
	for _, tree := range trees {
		if tree.Root != nil {
			vars = collectFields(tree.Root, vars)
		}
	}
	if len(vars) == 0 {
		return nil
	}
	slices.Sort(vars)
	return slices.Compact(vars)
}

func collectFields(node parse.Node, vars []string) []string {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return vars
		}
		for _, c := range n.Nodes {
			vars = collectFields(c, vars)
		}
	case *parse.ActionNode:
		vars = collectPipe(n.Pipe, vars)
	case *parse.IfNode:
		vars = collectPipe(n.Pipe, vars)
		vars = collectFields(n.List, vars)
		vars = collectFields(n.ElseList, vars)
	case *parse.RangeNode:
		vars = collectPipe(n.Pipe, vars)
		vars = collectFields(n.ElseList, vars)
	case *parse.WithNode:
		vars = collectPipe(n.Pipe, vars)
		vars = collectFields(n.ElseList, vars)
	}
	return vars
}

func collectPipe(pipe *parse.PipeNode, vars []string) []string {
	if pipe == nil {
		return vars
	}
	for _, cmd := range pipe.Cmds {
		for _, arg := range cmd.Args {
			switch a := arg.(type) {
			case *parse.FieldNode:
				vars = append(vars, strings.Join(a.Ident, "."))
			case *parse.PipeNode:
				vars = collectPipe(a, vars)
			}
		}
	}
	return vars
}

// HashText returns the hex SHA-256 of text. It ties a recorded model call
// to the exact prompt that produced it.
func HashText(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
