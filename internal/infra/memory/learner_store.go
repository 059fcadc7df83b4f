package memory

import (
	"sync"

	"movie-knowledge-service/internal/app"
)

// LearnerStore is an in-memory implementation of app.LearnerRepository.
type LearnerStore struct {
	mu       sync.RWMutex
	learners map[string]*app.Learner
}

func NewLearnerStore() *LearnerStore {
	return &LearnerStore{
		learners: make(map[string]*app.Learner),
	}
}

func (s *LearnerStore) GetOrCreate(profileID string) *app.Learner {
	s.mu.Lock()
	defer s.mu.Unlock()
	if learner, ok := s.learners[profileID]; ok {
		return learner
	}
	learner := app.NewLearner(profileID)
	s.learners[profileID] = learner
	return learner
}

func (s *LearnerStore) Get(profileID string) (*app.Learner, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	learner, ok := s.learners[profileID]
	return learner, ok
}

func (s *LearnerStore) DeleteIfIdle(profileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	learner, ok := s.learners[profileID]
	if !ok {
		return
	}
	if learner.Retire() {
		delete(s.learners, profileID)
	}
}
