package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"dictation-trainer/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ContentLoader fetches exercise content from a backing store (files, Postgres).
type ContentLoader interface {
	LoadCatalog(ctx context.Context) ([]domain.CatalogEntry, error)
	LoadSegments(ctx context.Context, exerciseID string) ([]domain.Segment, error)
}

// ContentRepository caches catalog and segment lists with a TTL to avoid
// re-reading content for every session.
type ContentRepository struct {
	loader ContentLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu       sync.RWMutex
	catalog  *cachedCatalog
	segments map[string]cachedSegments
}

type cachedCatalog struct {
	entries   []domain.CatalogEntry
	expiresAt time.Time
}

type cachedSegments struct {
	segments  []domain.Segment
	expiresAt time.Time
}

const catalogFlightKey = "\x00catalog"

func NewContentRepository(loader ContentLoader, ttl time.Duration) *ContentRepository {
	return &ContentRepository{
		loader:   loader,
		ttl:      ttl,
		clock:    time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		segments: make(map[string]cachedSegments),
	}
}

func (r *ContentRepository) Catalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	if entries, ok := r.cachedCatalog(); ok {
		return entries, nil
	}

	result, err, _ := r.sf.Do(catalogFlightKey, func() (interface{}, error) {
		if entries, ok := r.cachedCatalog(); ok {
			return entries, nil
		}
		entries, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		expiresAt := r.clock().Add(r.ttlWithJitter())
		r.mu.Lock()
		r.catalog = &cachedCatalog{entries: entries, expiresAt: expiresAt}
		r.mu.Unlock()
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.CatalogEntry), nil
}

func (r *ContentRepository) Segments(ctx context.Context, exerciseID string) ([]domain.Segment, error) {
	if segments, ok := r.cachedSegments(exerciseID); ok {
		return segments, nil
	}

	result, err, _ := r.sf.Do(exerciseID, func() (interface{}, error) {
		if segments, ok := r.cachedSegments(exerciseID); ok {
			return segments, nil
		}
		segments, err := r.loader.LoadSegments(ctx, exerciseID)
		if err != nil {
			return nil, err
		}
		expiresAt := r.clock().Add(r.ttlWithJitter())
		r.mu.Lock()
		r.segments[exerciseID] = cachedSegments{segments: segments, expiresAt: expiresAt}
		r.mu.Unlock()
		return segments, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Segment), nil
}

func (r *ContentRepository) cachedCatalog() ([]domain.CatalogEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.catalog != nil && r.catalog.expiresAt.After(r.clock()) {
		return r.catalog.entries, true
	}
	return nil, false
}

func (r *ContentRepository) cachedSegments(exerciseID string) ([]domain.Segment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.segments[exerciseID]; ok && entry.expiresAt.After(r.clock()) {
		return entry.segments, true
	}
	return nil, false
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticContentLoader is a loader backed by in-memory maps (useful for tests/demos).
type StaticContentLoader struct {
	catalog  []domain.CatalogEntry
	segments map[string][]domain.Segment
}

func NewStaticContentLoader(catalog []domain.CatalogEntry, segments map[string][]domain.Segment) *StaticContentLoader {
	return &StaticContentLoader{catalog: catalog, segments: segments}
}

func (l *StaticContentLoader) LoadCatalog(_ context.Context) ([]domain.CatalogEntry, error) {
	return l.catalog, nil
}

func (l *StaticContentLoader) LoadSegments(_ context.Context, exerciseID string) ([]domain.Segment, error) {
	if segments, ok := l.segments[exerciseID]; ok {
		return segments, nil
	}
	return nil, domain.ErrExerciseNotFound
}
