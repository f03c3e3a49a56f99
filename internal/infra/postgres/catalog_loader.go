package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"benefits-points-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogLoader loads mission/chest JSONB from Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadMission(ctx context.Context, missionID string) (domain.Mission, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM mission_catalog WHERE id=$1`, missionID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Mission{}, domain.ErrMissionNotFound
	}
	if err != nil {
		return domain.Mission{}, fmt.Errorf("load mission: %w", err)
	}
	var mission domain.Mission
	if err := json.Unmarshal(raw, &mission); err != nil {
		return domain.Mission{}, fmt.Errorf("unmarshal mission: %w", err)
	}
	return mission, nil
}

func (l *CatalogLoader) LoadChest(ctx context.Context, chestID string) (domain.Chest, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM chest_catalog WHERE id=$1`, chestID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Chest{}, domain.ErrChestNotFound
	}
	if err != nil {
		return domain.Chest{}, fmt.Errorf("load chest: %w", err)
	}
	var chest domain.Chest
	if err := json.Unmarshal(raw, &chest); err != nil {
		return domain.Chest{}, fmt.Errorf("unmarshal chest: %w", err)
	}
	return chest, nil
}
