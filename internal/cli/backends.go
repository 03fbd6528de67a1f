package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dictation-trainer/internal/app"
	"dictation-trainer/internal/config"
	"dictation-trainer/internal/infra/file"
	"dictation-trainer/internal/infra/memory"
	"dictation-trainer/internal/infra/postgres"
	infraredis "dictation-trainer/internal/infra/redis"
	"dictation-trainer/internal/infra/sqlite"
	"dictation-trainer/internal/progress"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// backends holds the shared connections opened from config. Nil fields are
// not configured.
type backends struct {
	redis   *redis.Client
	pool    *pgxpool.Pool
	closers []func()
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = b.redis.Close() })
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.pool = pool
		b.closers = append(b.closers, pool.Close)
	}
	return b, nil
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// contentRepository reads from Postgres when configured, else from the
// content directory, and caches in Redis when available.
func (b *backends) contentRepository(cfg config.Config) app.ContentRepository {
	var loader memory.ContentLoader = file.NewContentLoader(cfg.Content.Dir)
	if b.pool != nil {
		loader = postgres.NewContentLoader(b.pool)
	}
	ttl := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
	if b.redis != nil {
		return infraredis.NewContentRepository(b.redis, loader, ttl)
	}
	return memory.NewContentRepository(loader, ttl)
}

func (b *backends) sessionRepository(cfg config.Config) app.SessionRepository {
	if b.redis != nil {
		return infraredis.NewSessionStore(b.redis, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	}
	return memory.NewSessionStore()
}

func (b *backends) progressBackend(cfg config.Config) (progress.Backend, error) {
	switch strings.ToLower(cfg.Progress.Backend) {
	case "memory":
		return memory.NewProgressBackend(), nil
	case "redis":
		if b.redis == nil {
			return nil, fmt.Errorf("progress backend redis: redis addr not configured")
		}
		return infraredis.NewProgressBackend(b.redis, config.TTLDuration(cfg.Progress.TTL, 0)), nil
	case "postgres":
		if b.pool == nil {
			return nil, fmt.Errorf("progress backend postgres: postgres url not configured")
		}
		return postgres.NewProgressBackend(b.pool), nil
	case "sqlite", "":
		backend, err := sqlite.Open(cfg.Progress.SQLite.Path)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = backend.Close() })
		return backend, nil
	default:
		return nil, fmt.Errorf("unsupported progress backend: %s", cfg.Progress.Backend)
	}
}
