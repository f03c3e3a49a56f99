package migrations

import (
	"context"
	"encoding/json"

	"benefits-points-service/internal/catalog"
	"github.com/uptrace/bun"
)

// Seeds the built-in catalog so a fresh database serves the same
// missions and chests as the static loader.
func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			for id, mission := range catalog.DefaultMissions() {
				data, err := json.Marshal(mission)
				if err != nil {
					return err
				}
				if _, err := db.ExecContext(ctx,
					`INSERT INTO mission_catalog (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`,
					id, string(data)); err != nil {
					return err
				}
			}
			for id, chest := range catalog.DefaultChests() {
				data, err := json.Marshal(chest)
				if err != nil {
					return err
				}
				if _, err := db.ExecContext(ctx,
					`INSERT INTO chest_catalog (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`,
					id, string(data)); err != nil {
					return err
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.ExecContext(ctx, `DELETE FROM mission_catalog`); err != nil {
				return err
			}
			_, err := db.ExecContext(ctx, `DELETE FROM chest_catalog`)
			return err
		},
	)
}
