package redis

import (
	"context"
	"sync"
	"time"

	"dictation-trainer/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions live in a local map so the in-process event fan-out keeps
// working; Redis only carries a liveness marker per open exercise, which
// lets operators see which exercises are being worked on.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) PutIfAbsent(session *app.Session) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[session.ExerciseID()]; ok {
		return existing
	}
	s.sessions[session.ExerciseID()] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.ExerciseID()), "1", s.ttl).Err()
	return session
}

func (s *SessionStore) Get(exerciseID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[exerciseID]
	return session, ok
}

func (s *SessionStore) DeleteIfIdle(exerciseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[exerciseID]
	if !ok {
		return
	}
	if session.Idle() {
		delete(s.sessions, exerciseID)
		_ = s.client.Del(context.Background(), s.key(exerciseID)).Err()
	}
}

func (s *SessionStore) key(exerciseID string) string {
	return "trainer:session:" + exerciseID
}
