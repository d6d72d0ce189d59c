package structured

import (
	"fmt"
	"strings"
	"unicode"
)

// IDs validates model output that should be a JSON array of catalog
// identifiers. Elements that are not non-empty strings without whitespace
// are dropped, repeats keep their first position, and at most limit ids are
// returned (limit <= 0 means no cap). Whitespace is any Unicode space. Output that cannot be parsed as an array
// yields an empty list with StatusMalformed.
func IDs(raw string, limit int) IDList {
	doc, err := parseJSON(raw)
	if err != nil {
		return IDList{IDs: []string{}, Status: StatusMalformed, Issue: err.Error()}
	}
	if err := idListSchema.Validate(doc); err != nil {
		return IDList{IDs: []string{}, Status: StatusMalformed, Issue: "top-level value is not an array"}
	}

	items := doc.([]any)
	out := IDList{IDs: make([]string, 0, len(items)), Status: StatusOK}
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		if idSchema.Validate(item) != nil {
			out.Dropped++
			continue
		}
		id := item.(string)
		if strings.ContainsFunc(id, unicode.IsSpace) {
			out.Dropped++
			continue
		}
		if _, dup := seen[id]; dup {
			out.Dropped++
			continue
		}
		seen[id] = struct{}{}

		if limit > 0 && len(out.IDs) >= limit {
			out.Truncated++
			continue
		}
		out.IDs = append(out.IDs, id)
	}

	if out.Dropped > 0 {
		out.Status = StatusPartial
		out.Issue = fmt.Sprintf("dropped %d of %d elements", out.Dropped, len(items))
	}
	return out
}
