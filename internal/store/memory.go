package store

import (
	"context"
	"sort"
	"sync"

	"github.com/Praveenitis/CollabIDE/internal/models"
)

// MemoryStore is the process-local fallback used when Redis is
// unreachable at startup. It deep-copies records on every call so
// callers observe the same value semantics as the networked backend.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.Session)}
}

func (s *MemoryStore) GetAll(_ context.Context) ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess.Clone(), nil
}

func (s *MemoryStore) Put(_ context.Context, id string, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = sess.Clone()
	return nil
}
