package sessionstore

import (
	"context"
	"sync"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/session"
)

// Memory keeps sessions in process. Expired sessions are dropped on read.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
}

var _ session.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]session.Session)}
}

func (s *Memory) Create(_ context.Context, sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *Memory) Get(_ context.Context, id string) (session.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	if sess.Expired(core.NowFunc()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return session.Session{}, session.ErrNotFound
	}
	return sess, nil
}

func (s *Memory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
