// Package catalog holds the movie catalog: the authoritative records, the
// reduced projections handed to the generative model, and the stores that
// persist them.
package catalog

import (
	"errors"
	"time"
)

// DateLayout is the on-the-wire layout for release dates.
const DateLayout = "2006-01-02"

// Sentinel errors for the catalog package.
var (
	// ErrNotFound is returned when a movie does not exist.
	ErrNotFound = errors.New("movie not found")

	// ErrInvalidID is returned when an identifier cannot be used for lookup.
	ErrInvalidID = errors.New("invalid movie id")
)

// Movie is one catalog entry.
type Movie struct {
	ID           string    `json:"_id" yaml:"id,omitempty"`
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description" yaml:"description"`
	Genre        string    `json:"genre" yaml:"genre"`
	ReleaseDate  string    `json:"releaseDate" yaml:"release_date"`
	Rating       float64   `json:"rating" yaml:"rating"`
	Image        string    `json:"image,omitempty" yaml:"image,omitempty"`
	TelegramLink string    `json:"telegramLink,omitempty" yaml:"telegram_link,omitempty"`
	TrailerLink  string    `json:"trailerLink,omitempty" yaml:"trailer_link,omitempty"`
	CreatedAt    time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt    time.Time `json:"updatedAt" yaml:"-"`
}

// Snapshot reduces a movie to the fields the generative model is allowed to see.
func (m Movie) Snapshot() SnapshotEntry {
	return SnapshotEntry{
		ID:          m.ID,
		Title:       m.Title,
		Genre:       m.Genre,
		Description: m.Description,
	}
}

// SnapshotEntry is the projection sent to the generative model.
// Links, poster and timestamps are never included.
type SnapshotEntry struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
}

// MovieInput is the writable part of a movie, used for create and update.
type MovieInput struct {
	Title        string  `json:"title" yaml:"title" validate:"required,max=300"`
	Description  string  `json:"description" yaml:"description" validate:"required"`
	Genre        string  `json:"genre" yaml:"genre" validate:"required,max=100"`
	ReleaseDate  string  `json:"releaseDate" yaml:"release_date" validate:"required,datetime=2006-01-02"`
	Rating       float64 `json:"rating" yaml:"rating" validate:"gte=1,lte=10"`
	Image        string  `json:"image,omitempty" yaml:"image,omitempty" validate:"omitempty,url"`
	TelegramLink string  `json:"telegramLink,omitempty" yaml:"telegram_link,omitempty" validate:"omitempty,url"`
	TrailerLink  string  `json:"trailerLink,omitempty" yaml:"trailer_link,omitempty" validate:"omitempty,url"`
}

// Apply copies the input onto a movie, leaving identity and timestamps alone.
func (in MovieInput) Apply(m *Movie) {
	m.Title = in.Title
	m.Description = in.Description
	m.Genre = in.Genre
	m.ReleaseDate = in.ReleaseDate
	m.Rating = in.Rating
	m.Image = in.Image
	m.TelegramLink = in.TelegramLink
	m.TrailerLink = in.TrailerLink
}

// Draft is an AI-proposed set of descriptive fields for a new movie.
// It is never persisted and never carries an identifier. A nil field means
// the model did not supply a usable value for it.
type Draft struct {
	Description *string  `json:"description,omitempty"`
	Genre       *string  `json:"genre,omitempty"`
	ReleaseDate *string  `json:"releaseDate,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
}

// Empty reports whether the draft carries no fields at all.
func (d Draft) Empty() bool {
	return d.Description == nil && d.Genre == nil && d.ReleaseDate == nil && d.Rating == nil
}

// Fields returns the number of populated fields.
func (d Draft) Fields() int {
	n := 0
	if d.Description != nil {
		n++
	}
	if d.Genre != nil {
		n++
	}
	if d.ReleaseDate != nil {
		n++
	}
	if d.Rating != nil {
		n++
	}
	return n
}
