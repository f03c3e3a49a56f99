package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"benefits-points-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches mission/chest definitions from a backing store.
type CatalogLoader interface {
	LoadMission(ctx context.Context, missionID string) (domain.Mission, error)
	LoadChest(ctx context.Context, chestID string) (domain.Chest, error)
}

// CatalogRepository caches catalog entries with TTL to avoid repeated
// backing-store hits.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu       sync.RWMutex
	missions map[string]cachedMission
	chests   map[string]cachedChest
}

type cachedMission struct {
	mission   domain.Mission
	expiresAt time.Time
}

type cachedChest struct {
	chest     domain.Chest
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader:   loader,
		ttl:      ttl,
		clock:    time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		missions: make(map[string]cachedMission),
		chests:   make(map[string]cachedChest),
	}
}

func (r *CatalogRepository) GetMission(ctx context.Context, missionID string) (domain.Mission, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.missions[missionID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.mission, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("mission:"+missionID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.missions[missionID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.mission, nil
		}
		r.mu.RUnlock()

		mission, err := r.loader.LoadMission(ctx, missionID)
		if err != nil {
			return domain.Mission{}, err
		}

		r.mu.Lock()
		r.missions[missionID] = cachedMission{mission: mission, expiresAt: now.Add(r.ttlWithJitter())}
		r.mu.Unlock()
		return mission, nil
	})
	if err != nil {
		return domain.Mission{}, err
	}
	return result.(domain.Mission), nil
}

func (r *CatalogRepository) GetChest(ctx context.Context, chestID string) (domain.Chest, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.chests[chestID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.chest, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("chest:"+chestID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.chests[chestID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.chest, nil
		}
		r.mu.RUnlock()

		chest, err := r.loader.LoadChest(ctx, chestID)
		if err != nil {
			return domain.Chest{}, err
		}

		r.mu.Lock()
		r.chests[chestID] = cachedChest{chest: chest, expiresAt: now.Add(r.ttlWithJitter())}
		r.mu.Unlock()
		return chest, nil
	})
	if err != nil {
		return domain.Chest{}, err
	}
	return result.(domain.Chest), nil
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
