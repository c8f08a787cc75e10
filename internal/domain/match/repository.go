package match

import (
	"context"
	"time"
)

// Repository is the persistence contract for fan-site matches.
type Repository interface {
	// GetByID returns the match or an error wrapping the caller's not-found
	// sentinel.
	GetByID(ctx context.Context, id string) (Match, error)

	// ListNeedingSync returns finished matches that have no auto-generated
	// timeline yet, oldest kickoff first.
	ListNeedingSync(ctx context.Context, limit int) ([]Match, error)

	// SetExternalFixtureID records the resolved provider fixture id.
	SetExternalFixtureID(ctx context.Context, id string, externalFixtureID int64) error

	// UpdateScores writes the final score and bumps updated_at.
	UpdateScores(ctx context.Context, id string, homeScore, awayScore int, updatedAt time.Time) error
}
