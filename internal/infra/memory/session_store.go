package memory

import (
	"sync"

	"dictation-trainer/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
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
	}
}
