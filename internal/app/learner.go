package app

import (
	"sync"

	"movie-knowledge-service/internal/domain"
)

// Learner is the single owner of one profile's mutable state. Every mutating
// use case runs under its lock so completion, commits and daily records never
// interleave for the same profile.
type Learner struct {
	id string

	mu      sync.Mutex
	profile *domain.Profile
	quiz    *QuizSession
	dirty   bool
	retired bool

	subMu       sync.Mutex
	subscribers map[chan domain.Event]struct{}
}

// NewLearner is exported for infrastructure layers that keep learner registries.
func NewLearner(profileID string) *Learner {
	return &Learner{
		id:          profileID,
		subscribers: make(map[chan domain.Event]struct{}),
	}
}

// ID returns the profile id the learner owns.
func (l *Learner) ID() string {
	return l.id
}

// Retire marks the learner released when it has no unfinished quiz, no
// listeners and a committed profile. Holders of a retired learner must fetch
// a fresh one from the registry.
func (l *Learner) Retire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.retired {
		return true
	}
	if l.quiz != nil && !l.quiz.IsFinished() || l.dirty {
		return false
	}
	l.subMu.Lock()
	listeners := len(l.subscribers)
	l.subMu.Unlock()
	if listeners > 0 {
		return false
	}
	l.retired = true
	return true
}

func (l *Learner) subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 16)

	l.subMu.Lock()
	l.subscribers[ch] = struct{}{}
	l.subMu.Unlock()

	cancel := func() {
		l.subMu.Lock()
		if _, ok := l.subscribers[ch]; ok {
			delete(l.subscribers, ch)
			close(ch)
		}
		l.subMu.Unlock()
	}
	return ch, cancel
}

func (l *Learner) publish(events []domain.Event) {
	if len(events) == 0 {
		return
	}
	l.subMu.Lock()
	defer l.subMu.Unlock()
	for ch := range l.subscribers {
		for _, ev := range events {
			select {
			case ch <- ev:
			default:
				// Drop the oldest pending event so a slow reader never blocks a quiz.
				select {
				case <-ch:
				default:
				}
				ch <- ev
			}
		}
	}
}
