package intake

import (
	"context"
	"sync"
)

// SessionStore keeps live sessions. Sessions carry in-flight state, so they
// are never persisted.
type SessionStore interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, ownerID, id string) (*Session, error)
	Delete(ctx context.Context, ownerID, id string) error
	All(ctx context.Context) ([]*Session, error)
}

// MemoryStore is an in-memory SessionStore scoped by owner.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*Session // sessionId -> session
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*Session)}
}

func (m *MemoryStore) Put(ctx context.Context, s *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.ID()] = s
	return nil
}

// Get returns the session only when ownerID owns it.
func (m *MemoryStore) Get(ctx context.Context, ownerID, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.data[id]
	if !ok || s.Owner() != ownerID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) Delete(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[id]
	if !ok || s.Owner() != ownerID {
		return ErrSessionNotFound
	}
	delete(m.data, id)
	return nil
}

func (m *MemoryStore) All(ctx context.Context) ([]*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.data))
	for _, s := range m.data {
		out = append(out, s)
	}
	return out, nil
}
