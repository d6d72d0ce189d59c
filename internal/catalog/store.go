package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Store is the authoritative movie collection. Implementations must be safe
// for concurrent use; the recommendation pipeline only ever reads from it.
type Store interface {
	// ListProjection returns the reduced projection of every movie.
	ListProjection(ctx context.Context) ([]SnapshotEntry, error)

	// FindByIDs returns the movies matching ids, in no particular order.
	// Unknown ids are skipped without error.
	FindByIDs(ctx context.Context, ids []string) ([]Movie, error)

	// FindAll returns every movie.
	FindAll(ctx context.Context) ([]Movie, error)

	// Get returns a single movie or ErrNotFound.
	Get(ctx context.Context, id string) (*Movie, error)

	Create(ctx context.Context, in MovieInput) (*Movie, error)
	Update(ctx context.Context, id string, in MovieInput) (*Movie, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)

	// HealthCheck reports whether the backing storage is reachable.
	HealthCheck(ctx context.Context) error

	// Backend names the storage implementation (e.g. "memory", "defra").
	Backend() string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a movie input against the catalog field constraints.
func Validate(in MovieInput) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("invalid movie: %w", err)
	}
	return nil
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	var ve validator.ValidationErrors
	return errors.As(err, &ve)
}
