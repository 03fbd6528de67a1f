package progress

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"dictation-trainer/internal/domain"
)

// Backend persists one opaque record per exercise id.
type Backend interface {
	Put(ctx context.Context, exerciseID string, data []byte) error
	// Get reports ok=false when nothing is stored for the id.
	Get(ctx context.Context, exerciseID string) (data []byte, ok bool, err error)
	Delete(ctx context.Context, exerciseID string) error
	Keys(ctx context.Context) ([]string, error)
}

// Store applies the persistence policy on top of a Backend: every save
// overwrites the whole record, and storage failures are logged, never
// returned.
type Store struct {
	backend Backend
	log     *slog.Logger
	now     func() time.Time
}

type Option func(*Store)

// WithLogger overrides slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{backend: backend, log: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stamps and writes the snapshot, returning the stamped copy.
func (s *Store) Save(ctx context.Context, p domain.Progress) domain.Progress {
	p.Timestamp = s.now().UnixMilli()
	data, err := Encode(p)
	if err != nil {
		s.log.Error("encode progress", "exercise", p.ExerciseID, "error", err)
		return p
	}
	if err := s.backend.Put(ctx, p.ExerciseID, data); err != nil {
		s.log.Error("save progress", "exercise", p.ExerciseID, "error", err)
		return p
	}
	s.log.Debug("progress saved", "exercise", p.ExerciseID, "blanks", len(p.BlankStates))
	return p
}

// Load returns the stored snapshot. Missing, unreadable or foreign records
// all come back as ok=false.
func (s *Store) Load(ctx context.Context, exerciseID string) (domain.Progress, bool) {
	data, ok, err := s.backend.Get(ctx, exerciseID)
	if err != nil {
		s.log.Error("load progress", "exercise", exerciseID, "error", err)
		return domain.Progress{}, false
	}
	if !ok {
		return domain.Progress{}, false
	}
	p, err := Decode(data, exerciseID)
	if err != nil {
		s.log.Warn("discarding stored progress", "exercise", exerciseID, "error", err)
		return domain.Progress{}, false
	}
	return p, true
}

// Clear removes the record. It is the only way blank states are destroyed.
func (s *Store) Clear(ctx context.Context, exerciseID string) {
	if err := s.backend.Delete(ctx, exerciseID); err != nil {
		s.log.Error("clear progress", "exercise", exerciseID, "error", err)
		return
	}
	s.log.Info("progress cleared", "exercise", exerciseID)
}

// Saved lists exercise ids with stored progress, sorted.
func (s *Store) Saved(ctx context.Context) []string {
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		s.log.Error("list saved progress", "error", err)
		return nil
	}
	sort.Strings(keys)
	return keys
}

// Summary derives completion and accuracy from the stored snapshot.
func (s *Store) Summary(ctx context.Context, exerciseID string) (domain.ProgressSummary, bool) {
	p, ok := s.Load(ctx, exerciseID)
	if !ok {
		return domain.ProgressSummary{}, false
	}
	return domain.Summarize(p), true
}
