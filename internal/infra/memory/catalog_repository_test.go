package memory

import (
	"context"
	"testing"
	"time"

	"benefits-points-service/internal/catalog"
	"benefits-points-service/internal/domain"
)

func TestCatalogRepositoryCachesEntries(t *testing.T) {
	loader := &countingLoader{CatalogLoader: testLoader()}
	repo := NewCatalogRepository(loader, time.Minute)

	if _, err := repo.GetMission(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get mission: %v", err)
	}
	if loader.missionCalls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.missionCalls)
	}

	// Second call should hit cache, loader not incremented.
	if _, err := repo.GetMission(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get mission: %v", err)
	}
	if loader.missionCalls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.missionCalls)
	}

	if _, err := repo.GetChest(context.Background(), "chest-1"); err != nil {
		t.Fatalf("get chest: %v", err)
	}
	if _, err := repo.GetChest(context.Background(), "chest-1"); err != nil {
		t.Fatalf("get chest: %v", err)
	}
	if loader.chestCalls != 1 {
		t.Fatalf("expected one chest load, got %d", loader.chestCalls)
	}
}

func TestCatalogRepositoryExpiresEntries(t *testing.T) {
	loader := &countingLoader{CatalogLoader: testLoader()}
	repo := NewCatalogRepository(loader, time.Millisecond)

	now := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	if _, err := repo.GetMission(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get mission: %v", err)
	}

	now = now.Add(time.Second)
	if _, err := repo.GetMission(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get mission after expiry: %v", err)
	}
	if loader.missionCalls != 2 {
		t.Fatalf("expected reload after expiry, got %d calls", loader.missionCalls)
	}
}

func TestCatalogRepositoryUnknownEntry(t *testing.T) {
	repo := NewCatalogRepository(testLoader(), time.Minute)

	if _, err := repo.GetMission(context.Background(), "missing"); err != domain.ErrMissionNotFound {
		t.Fatalf("expected ErrMissionNotFound, got %v", err)
	}
	if _, err := repo.GetChest(context.Background(), "missing"); err != domain.ErrChestNotFound {
		t.Fatalf("expected ErrChestNotFound, got %v", err)
	}
}

type countingLoader struct {
	CatalogLoader
	missionCalls int
	chestCalls   int
}

func (l *countingLoader) LoadMission(ctx context.Context, missionID string) (domain.Mission, error) {
	l.missionCalls++
	return l.CatalogLoader.LoadMission(ctx, missionID)
}

func (l *countingLoader) LoadChest(ctx context.Context, chestID string) (domain.Chest, error) {
	l.chestCalls++
	return l.CatalogLoader.LoadChest(ctx, chestID)
}

func testLoader() *catalog.StaticLoader {
	return catalog.NewStaticLoader(
		map[string]domain.Mission{
			"quiz-1": {
				ID:   "quiz-1",
				Kind: domain.MissionQuiz,
				Quiz: domain.QuizConfig{PointsPerCorrect: 2, MaxCorrect: 10, MaxTimeBonusSeconds: 300, MaxTimeBonusPoints: 10, MaxTotalPoints: 30},
			},
		},
		map[string]domain.Chest{
			"chest-1": {ID: "chest-1", Points: 10, RequiredMissions: []string{"quiz-1"}},
		},
	)
}
