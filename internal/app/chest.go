package app

import (
	"context"
	"fmt"

	"benefits-points-service/internal/domain"
)

// ChestService awards one-time bonus chests gated behind prerequisite
// missions.
type ChestService struct {
	store    UserStore
	catalog  MissionCatalog
	notifier *LeaderboardNotifier
}

func NewChestService(store UserStore, catalog MissionCatalog, notifier *LeaderboardNotifier) *ChestService {
	return &ChestService{store: store, catalog: catalog, notifier: notifier}
}

// OpenChest opens chestID for the given award amount once every mission
// in requiredMissionIDs is complete. The amount and prerequisites are
// passed in rather than looked up so the component stays
// catalog-agnostic; OpenCatalogChest is the catalog-backed variant the
// HTTP layer uses.
func (s *ChestService) OpenChest(ctx context.Context, userID, chestID string, points int, requiredMissionIDs []string) (domain.ChestAward, error) {
	record, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return domain.ChestAward{}, err
	}

	for _, missionID := range requiredMissionIDs {
		if !record.HasMission(missionID) {
			return domain.ChestAward{}, domain.ErrChestLocked
		}
	}
	if record.HasChest(chestID) {
		return domain.ChestAward{}, domain.ErrChestOpened
	}

	applied, record, err := s.store.OpenChest(ctx, userID, chestID, points)
	if err != nil {
		return domain.ChestAward{}, fmt.Errorf("open chest %s: %w", chestID, err)
	}
	if !applied {
		return domain.ChestAward{}, domain.ErrChestOpened
	}

	s.notifier.Publish(ctx)
	return domain.ChestAward{
		ChestID:       chestID,
		PointsAwarded: points,
		TotalPoints:   record.Points,
	}, nil
}

// OpenCatalogChest resolves the award amount and prerequisites from the
// server-side chest catalog instead of trusting caller-supplied values.
func (s *ChestService) OpenCatalogChest(ctx context.Context, userID, chestID string) (domain.ChestAward, error) {
	chest, err := s.catalog.GetChest(ctx, chestID)
	if err != nil {
		return domain.ChestAward{}, err
	}
	return s.OpenChest(ctx, userID, chest.ID, chest.Points, chest.RequiredMissions)
}
