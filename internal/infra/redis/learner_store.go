package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"movie-knowledge-service/internal/app"
)

// LearnerStore is a Redis-aware implementation of app.LearnerRepository.
// Learners stay in a local map since their lock and subscribers are
// in-process; Redis only carries a liveness marker per active profile so other
// instances and operators can see who is playing.
type LearnerStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	learners map[string]*app.Learner
}

func NewLearnerStore(client *redis.Client, ttl time.Duration) *LearnerStore {
	return &LearnerStore{
		client:   client,
		ttl:      ttl,
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
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(profileID), "1", s.ttl).Err()
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
		_ = s.client.Del(context.Background(), s.key(profileID)).Err()
	}
}

// Active reports whether any instance marked the profile as live.
func (s *LearnerStore) Active(ctx context.Context, profileID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(profileID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *LearnerStore) key(profileID string) string {
	return "learner:active:" + profileID
}
