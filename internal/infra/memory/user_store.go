package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"benefits-points-service/internal/app"
	"benefits-points-service/internal/domain"
)

// UserStore is an in-memory implementation of app.UserStore. A single
// mutex serializes every read-test-mutate sequence, which satisfies the
// at-most-one-award-per-mission-per-user contract.
type UserStore struct {
	mu      sync.Mutex
	users   map[string]*domain.UserRecord
	byEmail map[string]string
	seq     int64
	now     func() time.Time
}

var _ app.UserStore = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{
		users:   make(map[string]*domain.UserRecord),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

// NewUserStoreWithClock is test-only for deterministic creation times.
func NewUserStoreWithClock(now func() time.Time) *UserStore {
	store := NewUserStore()
	store.now = now
	return store
}

func (s *UserStore) Create(_ context.Context, record domain.UserRecord) (domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := app.NormalizeEmail(record.Email)
	if _, taken := s.byEmail[email]; taken {
		return domain.UserRecord{}, domain.ErrEmailTaken
	}

	s.seq++
	record.Email = email
	record.Seq = s.seq
	record.CreatedAt = s.now()
	if record.MissionsCompleted == nil {
		record.MissionsCompleted = []string{}
	}
	if record.ChestsOpened == nil {
		record.ChestsOpened = []string{}
	}

	stored := cloneRecord(record)
	s.users[record.ID] = &stored
	s.byEmail[email] = record.ID
	return record, nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.users[id]
	if !ok {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	return cloneRecord(*record), nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[app.NormalizeEmail(email)]
	if !ok {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	return cloneRecord(*s.users[id]), nil
}

// SaveProfile persists profile fields only; points and the award sets
// are owned by the atomic primitives.
func (s *UserStore) SaveProfile(_ context.Context, record domain.UserRecord) (domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[record.ID]
	if !ok {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	stored.Name = record.Name
	stored.Phone = record.Phone
	stored.Bio = record.Bio
	stored.PhotoURL = record.PhotoURL
	stored.Address = record.Address
	return cloneRecord(*stored), nil
}

func (s *UserStore) CompleteMission(_ context.Context, userID, missionID string, points int, markProfile bool) (bool, domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.users[userID]
	if !ok {
		return false, domain.UserRecord{}, domain.ErrUserNotFound
	}
	if record.HasMission(missionID) {
		return false, cloneRecord(*record), nil
	}

	record.MissionsCompleted = append(record.MissionsCompleted, missionID)
	record.Points += points
	if markProfile {
		record.ProfileMissionCompleted = true
	}
	return true, cloneRecord(*record), nil
}

func (s *UserStore) OpenChest(_ context.Context, userID, chestID string, points int) (bool, domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.users[userID]
	if !ok {
		return false, domain.UserRecord{}, domain.ErrUserNotFound
	}
	if record.HasChest(chestID) {
		return false, cloneRecord(*record), nil
	}

	record.ChestsOpened = append(record.ChestsOpened, chestID)
	record.Points += points
	return true, cloneRecord(*record), nil
}

func (s *UserStore) ListRanked(_ context.Context) ([]domain.UserRecord, error) {
	s.mu.Lock()
	records := make([]domain.UserRecord, 0, len(s.users))
	for _, record := range s.users {
		records = append(records, cloneRecord(*record))
	}
	s.mu.Unlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].Points != records[j].Points {
			return records[i].Points > records[j].Points
		}
		return records[i].Seq < records[j].Seq
	})
	return records, nil
}

func cloneRecord(record domain.UserRecord) domain.UserRecord {
	record.MissionsCompleted = append([]string(nil), record.MissionsCompleted...)
	record.ChestsOpened = append([]string(nil), record.ChestsOpened...)
	return record
}
