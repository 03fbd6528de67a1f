package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const progressPrefix = "trainer:progress:"

// ProgressBackend keeps one JSON record per exercise under
// trainer:progress:{exerciseID}. A zero ttl keeps records forever.
type ProgressBackend struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProgressBackend(client *redis.Client, ttl time.Duration) *ProgressBackend {
	return &ProgressBackend{client: client, ttl: ttl}
}

func (b *ProgressBackend) Put(ctx context.Context, exerciseID string, data []byte) error {
	if err := b.client.Set(ctx, progressPrefix+exerciseID, data, b.ttl).Err(); err != nil {
		return fmt.Errorf("redis set progress: %w", err)
	}
	return nil
}

func (b *ProgressBackend) Get(ctx context.Context, exerciseID string) ([]byte, bool, error) {
	data, err := b.client.Get(ctx, progressPrefix+exerciseID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get progress: %w", err)
	}
	return data, true, nil
}

func (b *ProgressBackend) Delete(ctx context.Context, exerciseID string) error {
	if err := b.client.Del(ctx, progressPrefix+exerciseID).Err(); err != nil {
		return fmt.Errorf("redis del progress: %w", err)
	}
	return nil
}

func (b *ProgressBackend) Keys(ctx context.Context) ([]string, error) {
	var ids []string
	iter := b.client.Scan(ctx, 0, progressPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), progressPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan progress: %w", err)
	}
	return ids, nil
}
