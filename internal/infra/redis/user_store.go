package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"benefits-points-service/internal/app"
	"benefits-points-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// UserStore keeps one hash per user plus one set each for completed
// missions and opened chests, an email index, and a ZSET mirroring
// point totals. The award primitives run as Lua scripts, so the
// test-and-set plus increment is a single atomic step on the server.
type UserStore struct {
	client *redis.Client
}

var _ app.UserStore = (*UserStore)(nil)

func NewUserStore(client *redis.Client) *UserStore {
	return &UserStore{client: client}
}

const (
	emailIndexKey  = "users:by_email"
	seqKey         = "users:seq"
	leaderboardKey = "users:leaderboard"
)

// completeMissionScript returns -1 when the user is missing, -2 when the
// mission is already recorded, otherwise the new point total.
var completeMissionScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
if redis.call('SISMEMBER', KEYS[2], ARGV[1]) == 1 then return -2 end
if ARGV[4] == '1' and redis.call('HGET', KEYS[1], 'profile_mission_completed') == '1' then return -2 end
redis.call('SADD', KEYS[2], ARGV[1])
local total = redis.call('HINCRBY', KEYS[1], 'points', ARGV[2])
redis.call('ZADD', KEYS[3], total, ARGV[3])
if ARGV[4] == '1' then redis.call('HSET', KEYS[1], 'profile_mission_completed', '1') end
return total
`)

var openChestScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
if redis.call('SISMEMBER', KEYS[2], ARGV[1]) == 1 then return -2 end
redis.call('SADD', KEYS[2], ARGV[1])
local total = redis.call('HINCRBY', KEYS[1], 'points', ARGV[2])
redis.call('ZADD', KEYS[3], total, ARGV[3])
return total
`)

func (s *UserStore) Create(ctx context.Context, record domain.UserRecord) (domain.UserRecord, error) {
	email := app.NormalizeEmail(record.Email)
	claimed, err := s.client.HSetNX(ctx, emailIndexKey, email, record.ID).Result()
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("claim email: %w", err)
	}
	if !claimed {
		return domain.UserRecord{}, domain.ErrEmailTaken
	}

	seq, err := s.client.Incr(ctx, seqKey).Result()
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("next seq: %w", err)
	}
	record.Email = email
	record.Seq = seq
	record.CreatedAt = time.Now().UTC()

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.userKey(record.ID), recordToFields(record))
	pipe.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(record.Points), Member: record.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.UserRecord{}, fmt.Errorf("store user: %w", err)
	}
	return record, nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (domain.UserRecord, error) {
	return s.loadRecord(ctx, id)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (domain.UserRecord, error) {
	id, err := s.client.HGet(ctx, emailIndexKey, app.NormalizeEmail(email)).Result()
	if err == redis.Nil {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("email lookup: %w", err)
	}
	return s.loadRecord(ctx, id)
}

func (s *UserStore) SaveProfile(ctx context.Context, record domain.UserRecord) (domain.UserRecord, error) {
	exists, err := s.client.Exists(ctx, s.userKey(record.ID)).Result()
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("check user: %w", err)
	}
	if exists == 0 {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}

	err = s.client.HSet(ctx, s.userKey(record.ID), map[string]interface{}{
		"name":      record.Name,
		"phone":     record.Phone,
		"bio":       record.Bio,
		"photo_url": record.PhotoURL,
		"street":    record.Address.Street,
		"city":      record.Address.City,
		"state":     record.Address.State,
		"zip_code":  record.Address.ZipCode,
	}).Err()
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("save profile: %w", err)
	}
	return s.loadRecord(ctx, record.ID)
}

func (s *UserStore) CompleteMission(ctx context.Context, userID, missionID string, points int, markProfile bool) (bool, domain.UserRecord, error) {
	mark := "0"
	if markProfile {
		mark = "1"
	}
	result, err := completeMissionScript.Run(ctx, s.client,
		[]string{s.userKey(userID), s.missionsKey(userID), leaderboardKey},
		missionID, points, userID, mark,
	).Int64()
	if err != nil {
		return false, domain.UserRecord{}, fmt.Errorf("complete mission: %w", err)
	}
	switch result {
	case -1:
		return false, domain.UserRecord{}, domain.ErrUserNotFound
	case -2:
		record, err := s.loadRecord(ctx, userID)
		return false, record, err
	}
	record, err := s.loadRecord(ctx, userID)
	return true, record, err
}

func (s *UserStore) OpenChest(ctx context.Context, userID, chestID string, points int) (bool, domain.UserRecord, error) {
	result, err := openChestScript.Run(ctx, s.client,
		[]string{s.userKey(userID), s.chestsKey(userID), leaderboardKey},
		chestID, points, userID,
	).Int64()
	if err != nil {
		return false, domain.UserRecord{}, fmt.Errorf("open chest: %w", err)
	}
	switch result {
	case -1:
		return false, domain.UserRecord{}, domain.ErrUserNotFound
	case -2:
		record, err := s.loadRecord(ctx, userID)
		return false, record, err
	}
	record, err := s.loadRecord(ctx, userID)
	return true, record, err
}

func (s *UserStore) ListRanked(ctx context.Context) ([]domain.UserRecord, error) {
	ids, err := s.client.ZRevRange(ctx, leaderboardKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list ranked: %w", err)
	}

	records := make([]domain.UserRecord, 0, len(ids))
	for _, id := range ids {
		record, err := s.loadRecord(ctx, id)
		if err != nil {
			if err == domain.ErrUserNotFound {
				continue
			}
			return nil, err
		}
		records = append(records, record)
	}

	// The ZSET orders ties lexically; re-sort for the creation-order tie-break.
	sort.Slice(records, func(i, j int) bool {
		if records[i].Points != records[j].Points {
			return records[i].Points > records[j].Points
		}
		return records[i].Seq < records[j].Seq
	})
	return records, nil
}

func (s *UserStore) loadRecord(ctx context.Context, id string) (domain.UserRecord, error) {
	fields, err := s.client.HGetAll(ctx, s.userKey(id)).Result()
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("load user: %w", err)
	}
	if len(fields) == 0 {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}

	missions, err := s.client.SMembers(ctx, s.missionsKey(id)).Result()
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("load missions: %w", err)
	}
	chests, err := s.client.SMembers(ctx, s.chestsKey(id)).Result()
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("load chests: %w", err)
	}
	sort.Strings(missions)
	sort.Strings(chests)

	record := domain.UserRecord{
		ID:           id,
		Email:        fields["email"],
		PasswordHash: fields["password_hash"],
		Name:         fields["name"],
		Phone:        fields["phone"],
		Bio:          fields["bio"],
		PhotoURL:     fields["photo_url"],
		Address: domain.Address{
			Street:  fields["street"],
			City:    fields["city"],
			State:   fields["state"],
			ZipCode: fields["zip_code"],
		},
		MissionsCompleted:       missions,
		ChestsOpened:            chests,
		ProfileMissionCompleted: fields["profile_mission_completed"] == "1",
	}
	record.Points, _ = strconv.Atoi(fields["points"])
	record.Seq, _ = strconv.ParseInt(fields["seq"], 10, 64)
	if unix, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		record.CreatedAt = time.Unix(unix, 0).UTC()
	}
	return record, nil
}

func recordToFields(record domain.UserRecord) map[string]interface{} {
	profileFlag := "0"
	if record.ProfileMissionCompleted {
		profileFlag = "1"
	}
	return map[string]interface{}{
		"email":                     record.Email,
		"password_hash":             record.PasswordHash,
		"name":                      record.Name,
		"phone":                     record.Phone,
		"bio":                       record.Bio,
		"photo_url":                 record.PhotoURL,
		"street":                    record.Address.Street,
		"city":                      record.Address.City,
		"state":                     record.Address.State,
		"zip_code":                  record.Address.ZipCode,
		"points":                    record.Points,
		"profile_mission_completed": profileFlag,
		"seq":                       record.Seq,
		"created_at":                record.CreatedAt.Unix(),
	}
}

func (s *UserStore) userKey(id string) string {
	return "user:" + id
}

func (s *UserStore) missionsKey(id string) string {
	return "user:" + id + ":missions"
}

func (s *UserStore) chestsKey(id string) string {
	return "user:" + id + ":chests"
}
