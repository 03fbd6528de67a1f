package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"dictation-trainer/internal/domain"
	"dictation-trainer/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestContentRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{ContentLoader: sampleLoader()}
	repo := NewContentRepository(newClient(mr), loader, time.Minute)

	segments, err := repo.Segments(context.Background(), "1")
	if err != nil {
		t.Fatalf("segments: %v", err)
	}
	if len(segments) != 1 || segments[0].Transcript != "Meet me in [Boston]." {
		t.Fatalf("unexpected segments %+v", segments)
	}
	if loader.segmentCalls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.segmentCalls)
	}
	if !mr.Exists("trainer:exercise:1:segments") {
		t.Fatalf("expected segments cached in redis")
	}
	if ttl := mr.TTL("trainer:exercise:1:segments"); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl with jitter, got %v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	_, _ = repo.Segments(context.Background(), "1")
	if loader.segmentCalls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.segmentCalls)
	}

	catalog, err := repo.Catalog(context.Background())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	_, _ = repo.Catalog(context.Background())
	if len(catalog) != 1 || loader.catalogCalls != 1 {
		t.Fatalf("expected one cached catalog load, got %d entries and %d calls", len(catalog), loader.catalogCalls)
	}
}

func TestContentRepositoryMissingExercise(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := NewContentRepository(newClient(mr), sampleLoader(), time.Minute)
	if _, err := repo.Segments(context.Background(), "9"); !errors.Is(err, domain.ErrExerciseNotFound) {
		t.Fatalf("expected ErrExerciseNotFound, got %v", err)
	}
	if mr.Exists("trainer:exercise:9:segments") {
		t.Fatalf("failed loads must not be cached")
	}
}

type countingLoader struct {
	ContentLoader
	catalogCalls int
	segmentCalls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	l.catalogCalls++
	return l.ContentLoader.LoadCatalog(ctx)
}

func (l *countingLoader) LoadSegments(ctx context.Context, exerciseID string) ([]domain.Segment, error) {
	l.segmentCalls++
	return l.ContentLoader.LoadSegments(ctx, exerciseID)
}

func sampleLoader() *memory.StaticContentLoader {
	return memory.NewStaticContentLoader(
		[]domain.CatalogEntry{{ID: "1", Name: "Test 1"}},
		map[string][]domain.Segment{"1": sampleSegments()},
	)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
