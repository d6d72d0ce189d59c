// Package structured turns raw generative-model text into validated data.
// Model output is treated as untrusted input: anything that fails to parse
// or does not match the expected shape is dropped, and the caller receives a
// typed outcome rather than an error.
package structured

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNoJSON = errors.New("no JSON value found in model output")

// parseJSON decodes the first usable JSON value in model output. It tries
// the text as-is, then with code fences stripped, then the first balanced
// array or object embedded in surrounding prose.
func parseJSON(content string) (any, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errNoJSON
	}
	for _, candidate := range []string{content, StripFences(content)} {
		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			return parsed, nil
		}
	}
	if v, ok := firstEmbeddedValue(content); ok {
		return v, nil
	}
	return nil, errNoJSON
}

// StripFences removes a markdown code fence (```json ... ``` or ``` ... ```)
// wrapping the content. Text without a fence is returned trimmed, so
// applying it twice gives the same result as applying it once.
func StripFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && isFenceLabel(s[:nl]) {
		s = s[nl+1:]
	} else {
		// Single-line fence: ```json [...]```
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimPrefix(s, "JSON")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// isFenceLabel reports whether the rest of a fence's opening line is an info
// string such as "json" rather than content.
func isFenceLabel(s string) bool {
	s = strings.TrimSpace(s)
	return !strings.ContainsAny(s, "[]{}\"")
}

// firstEmbeddedValue decodes the JSON value starting at the earliest '['
// or '{' that opens one. The decoder stops at the end of that value, so
// brackets in trailing prose are ignored.
func firstEmbeddedValue(content string) (any, bool) {
	for i := 0; i < len(content); i++ {
		if content[i] != '[' && content[i] != '{' {
			continue
		}
		var v any
		if err := json.NewDecoder(strings.NewReader(content[i:])).Decode(&v); err == nil {
			return v, true
		}
	}
	return nil, false
}
