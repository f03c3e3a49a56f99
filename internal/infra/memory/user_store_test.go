package memory

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"benefits-points-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	if _, err := store.Create(ctx, domain.UserRecord{ID: "u1", Email: "alice@test.dev"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, domain.UserRecord{ID: "u2", Email: "ALICE@test.dev"}); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestCompleteMissionAppliesExactlyOnceUnderContention(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	if _, err := store.Create(ctx, domain.UserRecord{ID: "u1", Email: "u1@test.dev"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	var appliedCount int64
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			applied, _, err := store.CompleteMission(ctx, "u1", "quiz-1", 15, false)
			if err != nil {
				return err
			}
			if applied {
				atomic.AddInt64(&appliedCount, 1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent completions: %v", err)
	}

	if appliedCount != 1 {
		t.Fatalf("expected exactly one applied award, got %d", appliedCount)
	}
	record, err := store.FindByID(ctx, "u1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if record.Points != 15 {
		t.Fatalf("expected points awarded once (15), got %d", record.Points)
	}
}

func TestOpenChestAppliesExactlyOnce(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	if _, err := store.Create(ctx, domain.UserRecord{ID: "u1", Email: "u1@test.dev"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	applied, record, err := store.OpenChest(ctx, "u1", "chest-1", 10)
	if err != nil || !applied {
		t.Fatalf("expected first open applied, got applied=%v err=%v", applied, err)
	}
	if record.Points != 10 {
		t.Fatalf("expected 10 points, got %d", record.Points)
	}

	applied, record, err = store.OpenChest(ctx, "u1", "chest-1", 10)
	if err != nil || applied {
		t.Fatalf("expected repeat open skipped, got applied=%v err=%v", applied, err)
	}
	if record.Points != 10 {
		t.Fatalf("expected points unchanged, got %d", record.Points)
	}
}

func TestCompleteMissionHonorsLegacyProfileFlag(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	// A record written before the mission set existed carries only the
	// boolean; the profile mission must not award again.
	if _, err := store.Create(ctx, domain.UserRecord{
		ID:                      "u1",
		Email:                   "u1@test.dev",
		ProfileMissionCompleted: true,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	applied, _, err := store.CompleteMission(ctx, "u1", domain.MissionProfile, 10, true)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if applied {
		t.Fatalf("expected legacy flag to block a second profile award")
	}
}

func TestListRankedOrdersByPointsThenCreation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	store := NewUserStoreWithClock(func() time.Time { return now })

	for _, u := range []struct {
		id     string
		points int
	}{{"u1", 50}, {"u2", 50}, {"u3", 70}} {
		if _, err := store.Create(ctx, domain.UserRecord{ID: u.id, Email: u.id + "@test.dev"}); err != nil {
			t.Fatalf("create %s: %v", u.id, err)
		}
		if _, _, err := store.CompleteMission(ctx, u.id, "seed", u.points, false); err != nil {
			t.Fatalf("seed %s: %v", u.id, err)
		}
	}

	records, err := store.ListRanked(ctx)
	if err != nil {
		t.Fatalf("list ranked: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].ID != "u3" {
		t.Fatalf("expected u3 first, got %s", records[0].ID)
	}
	// Equal points fall back to creation order.
	if records[1].ID != "u1" || records[2].ID != "u2" {
		t.Fatalf("expected tie broken by creation order, got %s then %s", records[1].ID, records[2].ID)
	}
}
