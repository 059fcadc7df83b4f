package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"movie-knowledge-service/internal/app"
	"movie-knowledge-service/internal/domain"
	"movie-knowledge-service/internal/infra/memory"
	"movie-knowledge-service/internal/progression"
)

var testNow = time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// scenarioCategory has a five question lesson worth 10,10,15,10,10 followed by
// a one question lesson and a lesson with no content yet.
func scenarioCategory() domain.Category {
	return domain.Category{
		ID:           "classics",
		Title:        "Classics",
		DisplayOrder: 0,
		SubCategories: []domain.SubCategory{
			{
				ID:           "classics-0",
				Title:        "Golden Age",
				DisplayOrder: 0,
				Challenges: []domain.Challenge{
					{ID: "c1", CorrectAnswer: "Casablanca", Difficulty: domain.DifficultyEasy},
					{ID: "c2", CorrectAnswer: "1939", Difficulty: domain.DifficultyEasy},
					{ID: "c3", CorrectAnswer: "Orson Welles", Difficulty: domain.DifficultyMedium},
					{ID: "c4", CorrectAnswer: "true", Difficulty: domain.DifficultyEasy},
					{ID: "c5", CorrectAnswer: "Vertigo", Difficulty: domain.DifficultyEasy},
				},
			},
			{
				ID:           "classics-1",
				Title:        "Noir",
				DisplayOrder: 1,
				Challenges: []domain.Challenge{
					{ID: "n1", CorrectAnswer: "yes", Difficulty: domain.DifficultyHard},
				},
			},
			{ID: "classics-2", Title: "Coming Soon", DisplayOrder: 2},
		},
	}
}

func scenarioCatalog() *domain.Catalog {
	return domain.NewCatalog([]domain.Category{scenarioCategory()})
}

func newSession(t *testing.T, profile *domain.Profile, subID string, opts ...app.SessionOption) *app.QuizSession {
	t.Helper()
	pctx := progression.NewContext(time.UTC, nil)
	opts = append([]app.SessionOption{app.WithClock(fixedClock)}, opts...)
	s, err := app.NewQuizSession(pctx, profile, scenarioCatalog(), subID, opts...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

// answerAll submits answers in order, calling next after each one, and
// returns the completion result.
func answerAll(t *testing.T, s *app.QuizSession, answers ...string) *app.CompletionResult {
	t.Helper()
	var result *app.CompletionResult
	for i, a := range answers {
		if _, err := s.SubmitAnswer(a); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		r, err := s.NextQuestion()
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		result = r
	}
	return result
}

type fixture struct {
	service  *app.LearnerService
	profiles *flakyProfiles
	learners *memory.LearnerStore
	notifier *recordingNotifier
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		profiles: &flakyProfiles{ProfileStore: memory.NewProfileStore()},
		learners: memory.NewLearnerStore(),
		notifier: &recordingNotifier{},
		now:      testNow,
	}
	content := memory.NewContentRepository(memory.NewStaticContentLoader([]domain.Category{scenarioCategory()}), time.Minute)
	f.service = app.NewLearnerService(f.learners, f.profiles, content, progression.NewContext(time.UTC, nil), app.Options{
		Now:      func() time.Time { return f.now },
		Notifier: f.notifier,
		Commit:   app.CommitPolicy{MaxAttempts: 2, InitialInterval: time.Millisecond},
	})
	return f
}

var errStoreDown = errors.New("store down")

// flakyProfiles fails every save while failing is set.
type flakyProfiles struct {
	*memory.ProfileStore

	mu      sync.Mutex
	failing bool
	saves   int
}

func (p *flakyProfiles) setFailing(v bool) {
	p.mu.Lock()
	p.failing = v
	p.mu.Unlock()
}

func (p *flakyProfiles) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	p.mu.Lock()
	p.saves++
	failing := p.failing
	p.mu.Unlock()
	if failing {
		return errStoreDown
	}
	return p.ProfileStore.SaveProfile(ctx, profile)
}

type recordingNotifier struct {
	mu      sync.Mutex
	correct int
	wrong   int
	levels  []int
	badges  []string
}

func (n *recordingNotifier) CorrectAnswer(string) {
	n.mu.Lock()
	n.correct++
	n.mu.Unlock()
}

func (n *recordingNotifier) WrongAnswer(string) {
	n.mu.Lock()
	n.wrong++
	n.mu.Unlock()
}

func (n *recordingNotifier) BadgeEarned(_ string, badge domain.Badge) {
	n.mu.Lock()
	n.badges = append(n.badges, badge.Title)
	n.mu.Unlock()
}

func (n *recordingNotifier) LevelUp(_ string, level int) {
	n.mu.Lock()
	n.levels = append(n.levels, level)
	n.mu.Unlock()
}
