package schema

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cinemind/cinemind/internal/defra"
)

// existsMarkers are the fragments DefraDB puts in the error text when a
// collection is already defined. The HTTP API has no error codes.
var existsMarkers = []string{"already exists", "collection already defined"}

// Initialize registers every collection with the node. Collections that are
// already defined are left alone, so it runs on every startup.
func Initialize(ctx context.Context, client *defra.Client, logger *slog.Logger) error {
	schemas, err := All()
	if err != nil {
		return fmt.Errorf("failed to load schemas: %w", err)
	}

	var added, existing []string
	for _, s := range schemas {
		err := client.AddSchema(ctx, s.SDL)
		switch {
		case err == nil:
			added = append(added, s.Name)
		case alreadyDefined(err):
			existing = append(existing, s.Name)
		default:
			return fmt.Errorf("failed to add schema %s: %w", s.Name, err)
		}
	}
	logger.Info("schema initialized", "added", added, "existing", existing)
	return nil
}

func alreadyDefined(err error) bool {
	msg := err.Error()
	for _, m := range existsMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
