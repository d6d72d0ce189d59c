package structured

import "github.com/cinemind/cinemind/internal/catalog"

// Status classifies how well model output matched the expected shape.
type Status string

const (
	// StatusOK means every element or field conformed.
	StatusOK Status = "ok"
	// StatusPartial means some elements or fields were dropped.
	StatusPartial Status = "partial"
	// StatusMalformed means nothing usable could be parsed.
	StatusMalformed Status = "malformed"
)

// IDList is the outcome of validating a list of identifiers.
type IDList struct {
	IDs    []string
	Status Status

	// Dropped counts elements that were not identifier-like or repeated.
	Dropped int
	// Truncated counts valid ids cut by the cap.
	Truncated int
	// Issue describes why output was malformed or partial.
	Issue string
}

// DraftResult is the outcome of validating a metadata object.
type DraftResult struct {
	Draft  catalog.Draft
	Status Status

	// Dropped names the expected fields that were present but failed validation.
	Dropped []string
	Issue   string
}
