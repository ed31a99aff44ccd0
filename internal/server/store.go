// internal/server/store.go
package server

import (
	"sync"

	"refi-pipeline/internal/pipeline"
)

// SessionStore holds live pipeline sessions in memory. Sessions are
// short-lived conversational state; the durable record is written by the
// persistence connector at finalization.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*pipeline.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]*pipeline.Session{}}
}

// Create starts a new session and registers it.
func (s *SessionStore) Create() *pipeline.Session {
	sess := pipeline.NewSession()
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session or nil.
func (s *SessionStore) Get(id string) *pipeline.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// Delete removes a finished or abandoned session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
