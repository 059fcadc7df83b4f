package app

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"movie-knowledge-service/internal/domain"
)

const (
	defaultCommitAttempts = 3
	defaultCommitInterval = 50 * time.Millisecond
)

// CommitPolicy bounds the retries of a profile save.
type CommitPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
}

func (p CommitPolicy) withDefaults() CommitPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultCommitAttempts
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = defaultCommitInterval
	}
	return p
}

func (p CommitPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx)
}

// commitLocked saves the learner's profile. On failure the in-memory profile
// is kept and marked dirty so a later commit or Flush can catch up.
// Callers hold l.mu.
func (s *LearnerService) commitLocked(ctx context.Context, l *Learner) error {
	snapshot := l.profile.Clone()
	attempt := 0
	op := func() error {
		attempt++
		return s.profiles.SaveProfile(ctx, snapshot)
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Warn("profile commit failed, retrying",
			"profile_id", l.id,
			"attempt", attempt,
			"retry_in", wait,
			"error", err,
		)
	}

	if err := backoff.RetryNotify(op, s.commit.backOff(ctx), notify); err != nil {
		l.dirty = true
		s.logger.Error("profile commit failed", "profile_id", l.id, "attempts", attempt, "error", err)
		return fmt.Errorf("%w: save profile %s: %w", domain.ErrPersistence, l.id, err)
	}
	l.dirty = false
	return nil
}
