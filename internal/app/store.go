package app

import (
	"context"

	"benefits-points-service/internal/domain"
)

// UserStore abstracts how user records are stored (in-memory, Redis,
// Postgres). CompleteMission and OpenChest are the atomic award
// primitives: each one tests set membership and, only when absent, adds
// the identifier and increments points as a single serialized step.
// Two concurrent calls for the same user and identifier must never both
// report applied=true.
type UserStore interface {
	Create(ctx context.Context, record domain.UserRecord) (domain.UserRecord, error)
	FindByID(ctx context.Context, id string) (domain.UserRecord, error)
	FindByEmail(ctx context.Context, email string) (domain.UserRecord, error)
	SaveProfile(ctx context.Context, record domain.UserRecord) (domain.UserRecord, error)

	CompleteMission(ctx context.Context, userID, missionID string, points int, markProfile bool) (applied bool, record domain.UserRecord, err error)
	OpenChest(ctx context.Context, userID, chestID string, points int) (applied bool, record domain.UserRecord, err error)

	// ListRanked returns every record ordered by points descending,
	// tie-broken by creation sequence so repeated calls over unchanged
	// data yield an identical ordering.
	ListRanked(ctx context.Context) ([]domain.UserRecord, error)
}

// MissionCatalog loads read-only mission and chest definitions
// (from cache/backing store).
type MissionCatalog interface {
	GetMission(ctx context.Context, missionID string) (domain.Mission, error)
	GetChest(ctx context.Context, chestID string) (domain.Chest, error)
}
