// Package store persists canonical profiles and run payloads. Profiles are
// upserted by their external-identifier key (platform + platform id), the
// contract the rest of the system relies on for cross-run identity.
package store

import (
	"context"

	"github.com/scoutline/sourcing-cli/internal/model"
)

// Store defines the persistence interface for the sourcing pipeline.
type Store interface {
	// SaveRun records one run's full payload.
	SaveRun(ctx context.Context, result *model.SearchResult) error

	// UpsertProfiles writes profiles keyed by (platform, external id),
	// updating rows that already exist. Returns the number of upserted
	// profiles.
	UpsertProfiles(ctx context.Context, runID string, profiles []model.CanonicalProfile) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
