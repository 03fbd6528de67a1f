package app

import (
	"context"
	"fmt"
	"log/slog"

	"dictation-trainer/internal/domain"
)

// SessionRepository keeps live exercise sessions (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Get(exerciseID string) (*Session, bool)
	// PutIfAbsent stores session unless one is already live for the
	// exercise, and returns whichever is live.
	PutIfAbsent(session *Session) *Session
	DeleteIfIdle(exerciseID string)
}

// ContentRepository loads the exercise catalog and segment lists.
type ContentRepository interface {
	Catalog(ctx context.Context) ([]domain.CatalogEntry, error)
	Segments(ctx context.Context, exerciseID string) ([]domain.Segment, error)
}

// ProgressStore persists session snapshots. Implementations never fail the
// caller; see progress.Store.
type ProgressStore interface {
	Save(ctx context.Context, p domain.Progress) domain.Progress
	Load(ctx context.Context, exerciseID string) (domain.Progress, bool)
	Clear(ctx context.Context, exerciseID string)
	Summary(ctx context.Context, exerciseID string) (domain.ProgressSummary, bool)
}

// CatalogItem is a catalog entry with its saved progress, if any.
type CatalogItem struct {
	domain.CatalogEntry
	Progress *domain.ProgressSummary `json:"progress,omitempty"`
}

// TrainerService contains the dictation exercise use cases.
type TrainerService struct {
	sessions SessionRepository
	content  ContentRepository
	progress ProgressStore
	log      *slog.Logger
}

func NewTrainerService(sessions SessionRepository, content ContentRepository, progress ProgressStore) *TrainerService {
	return &TrainerService{
		sessions: sessions,
		content:  content,
		progress: progress,
		log:      slog.Default(),
	}
}

// Catalog lists exercises with a progress summary for those started.
func (s *TrainerService) Catalog(ctx context.Context) ([]CatalogItem, error) {
	entries, err := s.content.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]CatalogItem, 0, len(entries))
	for _, entry := range entries {
		item := CatalogItem{CatalogEntry: entry}
		if sum, ok := s.Summary(ctx, entry.ID); ok {
			item.Progress = &sum
		}
		items = append(items, item)
	}
	return items, nil
}

// Open returns the live session for an exercise, building it from content
// and saved progress on first use. No session exists until content loads.
func (s *TrainerService) Open(ctx context.Context, exerciseID string) (domain.SessionView, error) {
	if session, ok := s.sessions.Get(exerciseID); ok {
		return session.View(), nil
	}

	segments, err := s.content.Segments(ctx, exerciseID)
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("open exercise %s: %w", exerciseID, err)
	}
	if err := domain.ValidateSegments(segments); err != nil {
		return domain.SessionView{}, fmt.Errorf("open exercise %s: %w", exerciseID, err)
	}

	session := NewSession(exerciseID, segments)
	if saved, ok := s.progress.Load(ctx, exerciseID); ok {
		session.Restore(saved)
		s.log.Info("progress restored", "exercise", exerciseID, "segment", session.ActiveSegment())
	}
	session = s.sessions.PutIfAbsent(session)
	return session.View(), nil
}

// View renders the active segment of a live session.
func (s *TrainerService) View(_ context.Context, exerciseID string) (domain.SessionView, error) {
	session, ok := s.sessions.Get(exerciseID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	return session.View(), nil
}

// Input records typed text for a blank.
func (s *TrainerService) Input(ctx context.Context, exerciseID, blankID, text string) (domain.BlankState, error) {
	session, ok := s.sessions.Get(exerciseID)
	if !ok {
		return domain.BlankState{}, domain.ErrSessionNotFound
	}
	state, err := session.Input(blankID, text)
	if err != nil {
		return domain.BlankState{}, err
	}
	s.save(ctx, session)
	return state, nil
}

// Check grades a blank. position is the audio playback position in seconds,
// used to place the replay suggestion after a wrong answer.
func (s *TrainerService) Check(ctx context.Context, exerciseID, blankID string, position float64) (domain.CheckOutcome, error) {
	session, ok := s.sessions.Get(exerciseID)
	if !ok {
		return domain.CheckOutcome{}, domain.ErrSessionNotFound
	}
	outcome, err := session.Check(blankID, position)
	if err != nil {
		return domain.CheckOutcome{}, err
	}
	if outcome.Checked {
		s.save(ctx, session)
	}
	return outcome, nil
}

// Navigate jumps to a segment; the index is clamped into range.
func (s *TrainerService) Navigate(ctx context.Context, exerciseID string, index int) (domain.SessionView, error) {
	session, ok := s.sessions.Get(exerciseID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	session.SetActiveSegment(index)
	s.save(ctx, session)
	return session.View(), nil
}

// Reset clears saved progress and every blank state of the exercise.
func (s *TrainerService) Reset(ctx context.Context, exerciseID string) (domain.SessionView, error) {
	s.progress.Clear(ctx, exerciseID)
	session, ok := s.sessions.Get(exerciseID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	session.Reset()
	return session.View(), nil
}

// ClearProgress removes saved progress and resets the live session, if any.
func (s *TrainerService) ClearProgress(ctx context.Context, exerciseID string) {
	if _, err := s.Reset(ctx, exerciseID); err != nil {
		s.log.Debug("progress cleared without live session", "exercise", exerciseID)
	}
}

// Summary reports saved progress for an exercise. Live sessions save after
// every mutation, so the store is current.
func (s *TrainerService) Summary(ctx context.Context, exerciseID string) (domain.ProgressSummary, bool) {
	return s.progress.Summary(ctx, exerciseID)
}

// Subscribe returns a channel of session events. The caller must invoke the
// returned cancel function to avoid leaks.
func (s *TrainerService) Subscribe(_ context.Context, exerciseID string) (<-chan domain.Event, func(), error) {
	session, ok := s.sessions.Get(exerciseID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Leave drops the live session once nobody is subscribed. Saved progress
// is kept.
func (s *TrainerService) Leave(_ context.Context, exerciseID string) {
	session, ok := s.sessions.Get(exerciseID)
	if !ok {
		return
	}
	if session.Idle() {
		s.sessions.DeleteIfIdle(exerciseID)
	}
}

func (s *TrainerService) save(ctx context.Context, session *Session) {
	s.progress.Save(ctx, session.Snapshot())
}
