package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"benefits-points-service/internal/app"
	"benefits-points-service/internal/domain"
	"benefits-points-service/internal/infra/memory"
)

func TestLeaderboardRanksAndMe(t *testing.T) {
	ctx := context.Background()
	_, svc := newLeaderboardFixture(t, []int{50, 50, 30, 10})

	view, err := svc.GetLeaderboard(ctx, "u3", 2, 0)
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}

	if view.Total != 4 {
		t.Fatalf("expected total 4, got %d", view.Total)
	}
	if len(view.Leaderboard) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(view.Leaderboard))
	}
	// Tied at 50: u1 was created first and keeps position 1.
	if view.Leaderboard[0].UserID != "u1" || view.Leaderboard[0].Position != 1 {
		t.Fatalf("expected u1 first, got %+v", view.Leaderboard[0])
	}
	if view.Leaderboard[1].UserID != "u2" || view.Leaderboard[1].Position != 2 {
		t.Fatalf("expected u2 second, got %+v", view.Leaderboard[1])
	}
	// Me is located over the full ordering, not the page.
	if view.Me.UserID != "u3" || view.Me.Position != 3 || view.Me.Points != 30 {
		t.Fatalf("expected me at position 3 with 30 points, got %+v", view.Me)
	}
}

func TestLeaderboardPagination(t *testing.T) {
	ctx := context.Background()
	_, svc := newLeaderboardFixture(t, []int{50, 50, 30, 10})

	view, err := svc.GetLeaderboard(ctx, "u1", 2, 2)
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	if len(view.Leaderboard) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(view.Leaderboard))
	}
	if view.Leaderboard[0].Position != 3 || view.Leaderboard[1].Position != 4 {
		t.Fatalf("expected positions 3 and 4, got %+v", view.Leaderboard)
	}

	// Positions are absolute: page two keeps the full-ordering ranks.
	if view.Leaderboard[0].UserID != "u3" || view.Leaderboard[1].UserID != "u4" {
		t.Fatalf("expected u3 and u4 on page two, got %+v", view.Leaderboard)
	}
}

func TestLeaderboardSkipPastEnd(t *testing.T) {
	ctx := context.Background()
	_, svc := newLeaderboardFixture(t, []int{50, 50, 30, 10})

	view, err := svc.GetLeaderboard(ctx, "u2", 10, 100)
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	if len(view.Leaderboard) != 0 {
		t.Fatalf("expected empty page, got %d entries", len(view.Leaderboard))
	}
	if view.Me.UserID != "u2" || view.Me.Position != 2 {
		t.Fatalf("expected me populated at position 2, got %+v", view.Me)
	}
	if view.Total != 4 {
		t.Fatalf("expected total 4, got %d", view.Total)
	}
}

func TestLeaderboardUnknownRequester(t *testing.T) {
	ctx := context.Background()
	_, svc := newLeaderboardFixture(t, []int{50})

	if _, err := svc.GetLeaderboard(ctx, "ghost", 10, 0); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLeaderboardSnapshot(t *testing.T) {
	ctx := context.Background()
	_, svc := newLeaderboardFixture(t, []int{50, 50, 30, 10})

	view, err := svc.Snapshot(ctx, 2)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(view.Leaderboard) != 2 || view.Total != 4 {
		t.Fatalf("expected 2 of 4 entries, got %d of %d", len(view.Leaderboard), view.Total)
	}
}

// newLeaderboardFixture creates users u1..uN in order with the given
// point totals, seeded through the atomic award primitive.
func newLeaderboardFixture(t *testing.T, points []int) (*memory.UserStore, *app.LeaderboardService) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewUserStore()

	for i, p := range points {
		id := fmt.Sprintf("u%d", i+1)
		if _, err := store.Create(ctx, domain.UserRecord{
			ID:                id,
			Email:             id + "@test.dev",
			Name:              "User " + id,
			MissionsCompleted: []string{},
			ChestsOpened:      []string{},
		}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
		if p > 0 {
			applied, _, err := store.CompleteMission(ctx, id, "seed-points", p, false)
			if err != nil || !applied {
				t.Fatalf("seed points for %s: applied=%v err=%v", id, applied, err)
			}
		}
	}

	return store, app.NewLeaderboardServiceWithClock(store, func() time.Time {
		return time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)
	})
}
