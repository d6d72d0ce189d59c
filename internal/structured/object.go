package structured

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cinemind/cinemind/internal/catalog"
)

// Draft validates model output that should be a JSON object carrying some
// of description, genre, releaseDate and rating. Each field is checked on
// its own and dropped if it fails; unknown keys are ignored. Output that is
// not an object yields an empty draft with StatusMalformed.
func Draft(raw string) DraftResult {
	doc, err := parseJSON(raw)
	if err != nil {
		return DraftResult{Status: StatusMalformed, Issue: err.Error()}
	}
	if err := draftSchema.Validate(doc); err != nil {
		return DraftResult{Status: StatusMalformed, Issue: "top-level value is not an object"}
	}
	obj := doc.(map[string]any)

	var res DraftResult
	for field, schema := range fieldSchemas {
		v, present := obj[field]
		if !present || v == nil {
			continue
		}
		if schema.Validate(v) != nil || !assign(&res.Draft, field, v) {
			res.Dropped = append(res.Dropped, field)
		}
	}
	sort.Strings(res.Dropped)

	switch {
	case len(res.Dropped) > 0:
		res.Status = StatusPartial
		res.Issue = "dropped fields: " + strings.Join(res.Dropped, ", ")
	default:
		res.Status = StatusOK
	}
	return res
}

// assign stores a schema-conforming value into the draft, applying the
// checks a schema cannot express. Text that trims to nothing under Unicode
// rules is unusable. It reports false if the value is unusable.
func assign(d *catalog.Draft, field string, v any) bool {
	switch field {
	case "description":
		s := strings.TrimSpace(v.(string))
		if s == "" {
			return false
		}
		d.Description = &s
	case "genre":
		s := strings.TrimSpace(v.(string))
		if s == "" {
			return false
		}
		d.Genre = &s
	case "releaseDate":
		s := strings.TrimSpace(v.(string))
		if _, err := time.Parse(catalog.DateLayout, s); err != nil {
			return false
		}
		d.ReleaseDate = &s
	case "rating":
		r, ok := rating(v)
		if !ok {
			return false
		}
		d.Rating = &r
	default:
		return false
	}
	return true
}

// rating accepts a number or numeric text in the range 1 to 10.
func rating(v any) (float64, bool) {
	var r float64
	switch x := v.(type) {
	case float64:
		r = x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		r = f
	default:
		return 0, false
	}
	if r < 1 || r > 10 {
		return 0, false
	}
	return r, true
}
