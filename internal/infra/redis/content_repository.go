package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"dictation-trainer/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ContentLoader fetches exercise content from a backing store (files, Postgres).
type ContentLoader interface {
	LoadCatalog(ctx context.Context) ([]domain.CatalogEntry, error)
	LoadSegments(ctx context.Context, exerciseID string) ([]domain.Segment, error)
}

// ContentRepository caches exercise content in Redis and falls back to a loader on cache miss.
// Catalog is stored as:  SET trainer:catalog                   <json>
// Segments are stored as: SET trainer:exercise:{id}:segments   <json>
type ContentRepository struct {
	client *redis.Client
	loader ContentLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewContentRepository(client *redis.Client, loader ContentLoader, ttl time.Duration) *ContentRepository {
	return &ContentRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ContentRepository) Catalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	var entries []domain.CatalogEntry
	err := r.cached(ctx, catalogKey, &entries, func() (any, error) {
		return r.loader.LoadCatalog(ctx)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ContentRepository) Segments(ctx context.Context, exerciseID string) ([]domain.Segment, error) {
	var segments []domain.Segment
	err := r.cached(ctx, segmentsKey(exerciseID), &segments, func() (any, error) {
		return r.loader.LoadSegments(ctx, exerciseID)
	})
	if err != nil {
		return nil, err
	}
	return segments, nil
}

// cached decodes key into dst, loading and storing it on a miss. Redis
// errors degrade to a direct load.
func (r *ContentRepository) cached(ctx context.Context, key string, dst any, load func() (any, error)) error {
	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		if json.Unmarshal(raw, dst) == nil {
			return nil
		}
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
			return raw, nil
		}

		value, err := load()
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		return raw, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(result.([]byte), dst)
}

const catalogKey = "trainer:catalog"

func segmentsKey(exerciseID string) string {
	return "trainer:exercise:" + exerciseID + ":segments"
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
