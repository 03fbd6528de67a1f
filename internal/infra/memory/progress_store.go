package memory

import (
	"context"
	"sync"
)

// ProgressBackend keeps progress records in a map. Used for tests and the
// demo server when no durable backend is configured.
type ProgressBackend struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewProgressBackend() *ProgressBackend {
	return &ProgressBackend{records: make(map[string][]byte)}
}

func (b *ProgressBackend) Put(_ context.Context, exerciseID string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[exerciseID] = append([]byte(nil), data...)
	return nil
}

func (b *ProgressBackend) Get(_ context.Context, exerciseID string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.records[exerciseID]
	return data, ok, nil
}

func (b *ProgressBackend) Delete(_ context.Context, exerciseID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.records, exerciseID)
	return nil
}

func (b *ProgressBackend) Keys(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.records))
	for id := range b.records {
		keys = append(keys, id)
	}
	return keys, nil
}
