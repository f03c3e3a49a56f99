package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"benefits-points-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches mission/chest definitions from a backing store.
type CatalogLoader interface {
	LoadMission(ctx context.Context, missionID string) (domain.Mission, error)
	LoadChest(ctx context.Context, chestID string) (domain.Chest, error)
}

// CatalogRepository caches catalog entries in Redis as JSON values and
// falls back to the loader on cache miss.
// Missions are stored as: SET catalog:mission:{missionID} {json}
// Chests are stored as:   SET catalog:chest:{chestID}     {json}
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetMission(ctx context.Context, missionID string) (domain.Mission, error) {
	key := r.missionKey(missionID)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var mission domain.Mission
		if json.Unmarshal(raw, &mission) == nil {
			return mission, nil
		}
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
			var mission domain.Mission
			if json.Unmarshal(raw, &mission) == nil {
				return mission, nil
			}
		}

		mission, err := r.loader.LoadMission(ctx, missionID)
		if err != nil {
			return domain.Mission{}, err
		}
		if raw, err := json.Marshal(mission); err == nil {
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return mission, nil
	})
	if err != nil {
		return domain.Mission{}, err
	}
	return result.(domain.Mission), nil
}

func (r *CatalogRepository) GetChest(ctx context.Context, chestID string) (domain.Chest, error) {
	key := r.chestKey(chestID)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var chest domain.Chest
		if json.Unmarshal(raw, &chest) == nil {
			return chest, nil
		}
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
			var chest domain.Chest
			if json.Unmarshal(raw, &chest) == nil {
				return chest, nil
			}
		}

		chest, err := r.loader.LoadChest(ctx, chestID)
		if err != nil {
			return domain.Chest{}, err
		}
		if raw, err := json.Marshal(chest); err == nil {
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return chest, nil
	})
	if err != nil {
		return domain.Chest{}, err
	}
	return result.(domain.Chest), nil
}

func (r *CatalogRepository) missionKey(missionID string) string {
	return "catalog:mission:" + missionID
}

func (r *CatalogRepository) chestKey(chestID string) string {
	return "catalog:chest:" + chestID
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
