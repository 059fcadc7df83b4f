package memory

import (
	"context"
	"sync"

	"movie-knowledge-service/internal/domain"
)

// ProfileStore keeps profiles in a map. It stores and returns deep copies so
// callers never share state with the store.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*domain.Profile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]*domain.Profile)}
}

func (s *ProfileStore) LoadProfile(_ context.Context, profileID string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[profileID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return p.Clone(), nil
}

func (s *ProfileStore) SaveProfile(_ context.Context, profile *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = profile.Clone()
	return nil
}
