package app

import (
	"context"
	"errors"

	"benefits-points-service/internal/domain"
)

// ProfileService reads and updates profile fields and routes the
// one-time profile-completion award through the ledger.
type ProfileService struct {
	store  UserStore
	ledger *LedgerService
}

func NewProfileService(store UserStore, ledger *LedgerService) *ProfileService {
	return &ProfileService{store: store, ledger: ledger}
}

// ProfileUpdate uses pointers so absent fields are left untouched.
// City/State/ZipCode exist both nested and at the root because the edit
// screen historically sent them flat.
type ProfileUpdate struct {
	Name     *string         `json:"name"`
	Phone    *string         `json:"phone"`
	Bio      *string         `json:"bio"`
	PhotoURL *string         `json:"photoUrl"`
	Address  *domain.Address `json:"address"`
	City     *string         `json:"city"`
	State    *string         `json:"state"`
	ZipCode  *string         `json:"zipCode"`
}

func (s *ProfileService) Get(ctx context.Context, userID string) (domain.UserRecord, error) {
	return s.store.FindByID(ctx, userID)
}

// Update merges the submitted fields into the record and, when the
// profile counts as filled (name and phone both present), awards the
// profile mission exactly once. Returns the final record and whether
// the award landed on this call.
func (s *ProfileService) Update(ctx context.Context, userID string, update ProfileUpdate) (domain.UserRecord, bool, error) {
	record, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return domain.UserRecord{}, false, err
	}

	if update.Name != nil && *update.Name != "" {
		record.Name = *update.Name
	}
	if update.Phone != nil && *update.Phone != "" {
		record.Phone = *update.Phone
	}
	if update.Bio != nil {
		record.Bio = *update.Bio
	}
	if update.PhotoURL != nil {
		record.PhotoURL = *update.PhotoURL
	}
	if update.Address != nil {
		if update.Address.Street != "" {
			record.Address.Street = update.Address.Street
		}
		if update.Address.City != "" {
			record.Address.City = update.Address.City
		}
		if update.Address.State != "" {
			record.Address.State = update.Address.State
		}
		if update.Address.ZipCode != "" {
			record.Address.ZipCode = update.Address.ZipCode
		}
	}
	if update.City != nil {
		record.Address.City = *update.City
	}
	if update.State != nil {
		record.Address.State = *update.State
	}
	if update.ZipCode != nil {
		record.Address.ZipCode = *update.ZipCode
	}

	record, err = s.store.SaveProfile(ctx, record)
	if err != nil {
		return domain.UserRecord{}, false, err
	}

	if record.Name == "" || record.Phone == "" || record.HasMission(domain.MissionProfile) {
		return record, false, nil
	}

	if _, err := s.ledger.CompleteFixedMission(ctx, userID, domain.MissionProfile); err != nil {
		if errors.Is(err, domain.ErrMissionCompleted) {
			// Lost a race with a concurrent update; the award landed once.
			return record, false, nil
		}
		return domain.UserRecord{}, false, err
	}

	record, err = s.store.FindByID(ctx, userID)
	if err != nil {
		return domain.UserRecord{}, false, err
	}
	return record, true, nil
}
