package app

import (
	"context"
	"time"

	"benefits-points-service/internal/domain"
)

// LeaderboardService derives a ranked, paginated view of users by point
// total. Rankings are recomputed from current store state on every call;
// there is no materialized ranking table and no snapshot isolation
// across calls.
type LeaderboardService struct {
	store UserStore
	now   func() time.Time
}

func NewLeaderboardService(store UserStore) *LeaderboardService {
	return &LeaderboardService{store: store, now: time.Now}
}

// NewLeaderboardServiceWithClock is test-only for deterministic timestamps.
func NewLeaderboardServiceWithClock(store UserStore, now func() time.Time) *LeaderboardService {
	return &LeaderboardService{store: store, now: now}
}

// GetLeaderboard returns the [skip, skip+limit) page of the full
// ordering plus the requesting user's own entry, which is located over
// the full ordering independent of the page. A skip past the end yields
// an empty page with me and total still populated.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, requesterID string, limit, skip int) (domain.LeaderboardView, error) {
	entries, err := s.rankedEntries(ctx)
	if err != nil {
		return domain.LeaderboardView{}, err
	}

	if limit < 0 {
		limit = 0
	}
	if skip < 0 {
		skip = 0
	}

	var me domain.LeaderboardEntry
	found := false
	for _, entry := range entries {
		if entry.UserID == requesterID {
			me = entry
			found = true
			break
		}
	}
	if !found {
		return domain.LeaderboardView{}, domain.ErrUserNotFound
	}

	page := []domain.LeaderboardEntry{}
	if skip < len(entries) {
		end := skip + limit
		if end > len(entries) {
			end = len(entries)
		}
		page = entries[skip:end]
	}

	return domain.LeaderboardView{
		Leaderboard: page,
		Me:          me,
		Total:       len(entries),
		UpdatedAt:   s.now(),
	}, nil
}

// Snapshot returns the top of the current ranking without a requester;
// it feeds the live leaderboard stream.
func (s *LeaderboardService) Snapshot(ctx context.Context, limit int) (domain.LeaderboardView, error) {
	entries, err := s.rankedEntries(ctx)
	if err != nil {
		return domain.LeaderboardView{}, err
	}
	total := len(entries)
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return domain.LeaderboardView{
		Leaderboard: entries,
		Total:       total,
		UpdatedAt:   s.now(),
	}, nil
}

// rankedEntries assigns dense 1-based positions over the store's full
// ordering (points desc, creation sequence asc). Ties do not share a
// rank; the stable tie-break gives equal-point users deterministic
// adjacent positions across repeated calls.
func (s *LeaderboardService) rankedEntries(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	records, err := s.store.ListRanked(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.LeaderboardEntry, 0, len(records))
	for i, record := range records {
		entries = append(entries, domain.LeaderboardEntry{
			Position: i + 1,
			UserID:   record.ID,
			Name:     record.Name,
			Points:   record.Points,
			PhotoURL: record.PhotoURL,
			Level:    domain.LevelForPoints(record.Points),
		})
	}
	return entries, nil
}
