package structured

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	idListSchema = mustCompile("id_list.json")
	idSchema     = mustCompile("id.json")
	draftSchema  = mustCompile("draft.json")
	fieldSchemas = mustCompileFields("draft_fields.json")
)

func compile(name string, raw []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return schema, nil
}

func mustCompile(name string) *jsonschema.Schema {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(err)
	}
	schema, err := compile(name, raw)
	if err != nil {
		panic(err)
	}
	return schema
}

// mustCompileFields compiles one schema per top-level key so each field of
// an object can be accepted or dropped on its own.
func mustCompileFields(name string) map[string]*jsonschema.Schema {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		panic(fmt.Errorf("invalid field schema file %s: %w", name, err))
	}

	out := make(map[string]*jsonschema.Schema, len(fields))
	for field, fieldRaw := range fields {
		schema, err := compile(field+".json", fieldRaw)
		if err != nil {
			panic(err)
		}
		out[field] = schema
	}
	return out
}

// Schemas returns the raw JSON schemas used for validation, keyed by file
// name, for display alongside the prompts that request them.
func Schemas() (map[string]json.RawMessage, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(entries))
	for _, e := range entries {
		raw, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			return nil, err
		}
		out[e.Name()] = raw
	}
	return out, nil
}
