package profile

import (
	"context"
	"sync"
)

// MemoryStore keeps profiles in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*Profile)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, exists := m.profiles[id]
	if !exists {
		return nil, ErrNotFound
	}
	return p.clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.profiles[p.ID] = p.clone()
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.profiles)
}
