package postgres

import (
	"context"
	"errors"
	"fmt"

	"benefits-points-service/internal/app"
	"benefits-points-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// UserStore persists user records in Postgres. The award primitives are
// single conditional UPDATEs, so the membership test and the point
// increment commit atomically; applied is derived from the affected row
// count.
type UserStore struct {
	pool *pgxpool.Pool
}

var _ app.UserStore = (*UserStore)(nil)

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const recordColumns = `id, email, password_hash, name, phone, bio, photo_url,
	street, city, state, zip_code, points, profile_mission_completed,
	missions_completed, chests_opened, seq, created_at`

func (s *UserStore) Create(ctx context.Context, record domain.UserRecord) (domain.UserRecord, error) {
	email := app.NormalizeEmail(record.Email)
	if _, err := s.FindByEmail(ctx, email); err == nil {
		return domain.UserRecord{}, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.UserRecord{}, err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, name, phone, bio, photo_url,
			street, city, state, zip_code, points, profile_mission_completed,
			missions_completed, chests_opened)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+recordColumns,
		record.ID, email, record.PasswordHash, record.Name, record.Phone,
		record.Bio, record.PhotoURL, record.Address.Street, record.Address.City,
		record.Address.State, record.Address.ZipCode, record.Points,
		record.ProfileMissionCompleted, record.MissionsCompleted, record.ChestsOpened,
	)
	created, err := scanRecord(row)
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (domain.UserRecord, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM users WHERE id = $1`, id)
	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("find user: %w", err)
	}
	return record, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (domain.UserRecord, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM users WHERE email = $1`, app.NormalizeEmail(email))
	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("find user by email: %w", err)
	}
	return record, nil
}

func (s *UserStore) SaveProfile(ctx context.Context, record domain.UserRecord) (domain.UserRecord, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users
		SET name = $2, phone = $3, bio = $4, photo_url = $5,
			street = $6, city = $7, state = $8, zip_code = $9
		WHERE id = $1
		RETURNING `+recordColumns,
		record.ID, record.Name, record.Phone, record.Bio, record.PhotoURL,
		record.Address.Street, record.Address.City, record.Address.State,
		record.Address.ZipCode,
	)
	updated, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("save profile: %w", err)
	}
	return updated, nil
}

func (s *UserStore) CompleteMission(ctx context.Context, userID, missionID string, points int, markProfile bool) (bool, domain.UserRecord, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET points = points + $3,
			missions_completed = array_append(missions_completed, $2),
			profile_mission_completed = profile_mission_completed OR $4
		WHERE id = $1
		  AND NOT (missions_completed @> ARRAY[$2::text])
		  AND NOT ($4 AND profile_mission_completed)`,
		userID, missionID, points, markProfile,
	)
	if err != nil {
		return false, domain.UserRecord{}, fmt.Errorf("complete mission: %w", err)
	}

	record, err := s.FindByID(ctx, userID)
	if err != nil {
		return false, domain.UserRecord{}, err
	}
	return tag.RowsAffected() > 0, record, nil
}

func (s *UserStore) OpenChest(ctx context.Context, userID, chestID string, points int) (bool, domain.UserRecord, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET points = points + $3,
			chests_opened = array_append(chests_opened, $2)
		WHERE id = $1
		  AND NOT (chests_opened @> ARRAY[$2::text])`,
		userID, chestID, points,
	)
	if err != nil {
		return false, domain.UserRecord{}, fmt.Errorf("open chest: %w", err)
	}

	record, err := s.FindByID(ctx, userID)
	if err != nil {
		return false, domain.UserRecord{}, err
	}
	return tag.RowsAffected() > 0, record, nil
}

func (s *UserStore) ListRanked(ctx context.Context) ([]domain.UserRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+recordColumns+` FROM users ORDER BY points DESC, seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list ranked: %w", err)
	}
	defer rows.Close()

	var records []domain.UserRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRecord(row pgx.Row) (domain.UserRecord, error) {
	var record domain.UserRecord
	err := row.Scan(
		&record.ID, &record.Email, &record.PasswordHash, &record.Name,
		&record.Phone, &record.Bio, &record.PhotoURL,
		&record.Address.Street, &record.Address.City, &record.Address.State,
		&record.Address.ZipCode, &record.Points, &record.ProfileMissionCompleted,
		&record.MissionsCompleted, &record.ChestsOpened, &record.Seq, &record.CreatedAt,
	)
	if err != nil {
		return domain.UserRecord{}, err
	}
	if record.MissionsCompleted == nil {
		record.MissionsCompleted = []string{}
	}
	if record.ChestsOpened == nil {
		record.ChestsOpened = []string{}
	}
	return record, nil
}
