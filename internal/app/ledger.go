package app

import (
	"context"
	"fmt"
	"math"

	"benefits-points-service/internal/domain"
)

// LedgerService owns the rules for awarding and recording mission
// points. All decision logic (idempotency, clamping, computation) runs
// before any mutation; persistence happens through the store's atomic
// primitives, so a storage failure never leaves a partial award.
type LedgerService struct {
	store    UserStore
	catalog  MissionCatalog
	notifier *LeaderboardNotifier
}

func NewLedgerService(store UserStore, catalog MissionCatalog, notifier *LeaderboardNotifier) *LedgerService {
	return &LedgerService{store: store, catalog: catalog, notifier: notifier}
}

// CompleteFixedMission awards a flat catalog-defined amount exactly once
// per user. Repeats return domain.ErrMissionCompleted without mutation.
func (s *LedgerService) CompleteFixedMission(ctx context.Context, userID, missionID string) (domain.MissionAward, error) {
	mission, err := s.catalog.GetMission(ctx, missionID)
	if err != nil {
		return domain.MissionAward{}, err
	}
	if mission.Kind != domain.MissionFixed {
		return domain.MissionAward{}, domain.ErrMissionNotFound
	}

	markProfile := missionID == domain.MissionProfile
	applied, record, err := s.store.CompleteMission(ctx, userID, missionID, mission.FixedPoints, markProfile)
	if err != nil {
		return domain.MissionAward{}, fmt.Errorf("complete mission %s: %w", missionID, err)
	}
	if !applied {
		return domain.MissionAward{}, domain.ErrMissionCompleted
	}

	s.notifier.Publish(ctx)
	return domain.MissionAward{
		MissionID:     missionID,
		PointsAwarded: mission.FixedPoints,
		Breakdown:     domain.PointsBreakdown{BasePoints: mission.FixedPoints},
		TotalPoints:   record.Points,
	}, nil
}

// CompleteQuizMission computes a quiz award from the caller-reported
// correct count and completion time, then records it exactly once.
// Inputs come from an untrusted client and are clamped before any
// computation; the clamp-then-compute order is part of the contract.
func (s *LedgerService) CompleteQuizMission(ctx context.Context, userID, missionID string, correctCount, timeSpentSeconds float64) (domain.MissionAward, error) {
	mission, err := s.catalog.GetMission(ctx, missionID)
	if err != nil {
		return domain.MissionAward{}, err
	}
	if mission.Kind != domain.MissionQuiz {
		return domain.MissionAward{}, domain.ErrMissionNotFound
	}

	awarded, breakdown := computeQuizAward(mission.Quiz, correctCount, timeSpentSeconds)

	applied, record, err := s.store.CompleteMission(ctx, userID, missionID, awarded, false)
	if err != nil {
		return domain.MissionAward{}, fmt.Errorf("complete mission %s: %w", missionID, err)
	}
	if !applied {
		// The historical award stands; it is never recomputed on retry.
		return domain.MissionAward{}, domain.ErrMissionCompleted
	}

	s.notifier.Publish(ctx)
	return domain.MissionAward{
		MissionID:     missionID,
		PointsAwarded: awarded,
		Breakdown:     breakdown,
		TotalPoints:   record.Points,
	}, nil
}

// CompleteWordSearchMission records the word-search game: a flat base
// plus one bonus point per full minute saved under the bonus window.
func (s *LedgerService) CompleteWordSearchMission(ctx context.Context, userID, missionID string, timeSpentSeconds float64) (domain.MissionAward, error) {
	mission, err := s.catalog.GetMission(ctx, missionID)
	if err != nil {
		return domain.MissionAward{}, err
	}
	if mission.Kind != domain.MissionWordSearch {
		return domain.MissionAward{}, domain.ErrMissionNotFound
	}

	cfg := mission.WordSearch
	timeSpent := clampSeconds(timeSpentSeconds)
	bonus := 0
	if timeSpent > 0 && cfg.SecondsPerBonus > 0 {
		saved := float64(cfg.BonusWindowSecs) - timeSpent
		if saved > 0 {
			bonus = int(math.Floor(saved / float64(cfg.SecondsPerBonus)))
		}
	}
	awarded := cfg.BasePoints + bonus

	applied, record, err := s.store.CompleteMission(ctx, userID, missionID, awarded, false)
	if err != nil {
		return domain.MissionAward{}, fmt.Errorf("complete mission %s: %w", missionID, err)
	}
	if !applied {
		return domain.MissionAward{}, domain.ErrMissionCompleted
	}

	s.notifier.Publish(ctx)
	return domain.MissionAward{
		MissionID:     missionID,
		PointsAwarded: awarded,
		Breakdown:     domain.PointsBreakdown{BasePoints: cfg.BasePoints, TimeBonus: bonus},
		TotalPoints:   record.Points,
	}, nil
}

// IsMissionCompleted is a pure query over a record snapshot.
func (s *LedgerService) IsMissionCompleted(record domain.UserRecord, missionID string) bool {
	return record.HasMission(missionID)
}

// computeQuizAward applies the award formula: clamp correctCount to
// [0, maxCorrect], clamp timeSpent to [0, inf), base = correct *
// perCorrect, bonus = floor(max(0, (window-time)/window) * maxBonus)
// only when time > 0, total capped at maxTotalPoints.
func computeQuizAward(cfg domain.QuizConfig, correctCount, timeSpentSeconds float64) (int, domain.PointsBreakdown) {
	correct := clampCount(correctCount, cfg.MaxCorrect)
	timeSpent := clampSeconds(timeSpentSeconds)

	base := correct * cfg.PointsPerCorrect

	bonus := 0
	if timeSpent > 0 && cfg.MaxTimeBonusSeconds > 0 {
		window := float64(cfg.MaxTimeBonusSeconds)
		ratio := math.Max(0, (window-timeSpent)/window)
		bonus = int(math.Floor(ratio * float64(cfg.MaxTimeBonusPoints)))
	}

	awarded := base + bonus
	if awarded > cfg.MaxTotalPoints {
		awarded = cfg.MaxTotalPoints
	}
	return awarded, domain.PointsBreakdown{BasePoints: base, TimeBonus: bonus}
}

func clampCount(v float64, max int) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	n := int(math.Floor(v))
	if n > max {
		return max
	}
	return n
}

func clampSeconds(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
