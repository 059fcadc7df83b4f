package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"movie-knowledge-service/internal/domain"
	"movie-knowledge-service/internal/progression"
)

// LearnerRepository keeps the per-profile owners (in-memory, Redis-marked, etc).
type LearnerRepository interface {
	GetOrCreate(profileID string) *Learner
	Get(profileID string) (*Learner, bool)
	DeleteIfIdle(profileID string)
}

// ProfileRepository loads and commits profiles.
type ProfileRepository interface {
	LoadProfile(ctx context.Context, profileID string) (*domain.Profile, error)
	SaveProfile(ctx context.Context, profile *domain.Profile) error
}

// ContentRepository loads lesson content (from cache/backing store).
type ContentRepository interface {
	GetCatalog(ctx context.Context) (*domain.Catalog, error)
}

// Notifier receives fire-and-forget feedback signals for haptics and sounds.
type Notifier interface {
	CorrectAnswer(profileID string)
	WrongAnswer(profileID string)
	BadgeEarned(profileID string, badge domain.Badge)
	LevelUp(profileID string, level int)
}

// Options tunes a LearnerService.
type Options struct {
	Lives    int
	Shuffle  bool
	Commit   CommitPolicy
	Now      func() time.Time
	Logger   *slog.Logger
	Notifier Notifier
}

// LearnerService contains the quiz and progression use cases.
type LearnerService struct {
	learners LearnerRepository
	profiles ProfileRepository
	content  ContentRepository
	pctx     *progression.Context

	lives    int
	shuffle  func(n int, swap func(i, j int))
	commit   CommitPolicy
	now      func() time.Time
	logger   *slog.Logger
	notifier Notifier
}

func NewLearnerService(learners LearnerRepository, profiles ProfileRepository, content ContentRepository, pctx *progression.Context, opts Options) *LearnerService {
	s := &LearnerService{
		learners: learners,
		profiles: profiles,
		content:  content,
		pctx:     pctx,
		lives:    opts.Lives,
		commit:   opts.Commit.withDefaults(),
		now:      opts.Now,
		logger:   opts.Logger,
		notifier: opts.Notifier,
	}
	if s.lives <= 0 {
		s.lives = DefaultLives
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if opts.Shuffle {
		s.shuffle = rand.Shuffle
	}
	return s
}

// Profile returns a snapshot of the profile, creating the default one on first use.
func (s *LearnerService) Profile(ctx context.Context, profileID string) (ProfileView, error) {
	var view ProfileView
	err := s.withLearner(ctx, profileID, func(l *Learner) error {
		view = newProfileView(l.profile.Clone())
		return nil
	})
	return view, err
}

// StartQuiz opens an attempt at an unlocked lesson, replacing any unfinished one.
func (s *LearnerService) StartQuiz(ctx context.Context, profileID, subCategoryID string) (*QuestionView, error) {
	catalog, err := s.content.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	var view *QuestionView
	err = s.withLearner(ctx, profileID, func(l *Learner) error {
		category, sub, ok := catalog.SubCategory(subCategoryID)
		if !ok {
			return domain.ErrSubCategoryNotFound
		}
		if !s.pctx.Progress.IsUnlocked(category, sub, l.profile) {
			return domain.ErrLocked
		}
		quiz, err := NewQuizSession(s.pctx, l.profile, catalog, subCategoryID, s.sessionOptions()...)
		if err != nil {
			return err
		}
		l.quiz = quiz
		l.profile.LastPlayed = &domain.LastPlayed{CategoryID: category.ID, SubCategoryID: sub.ID}
		view = questionView(quiz, s.shuffle)
		return s.commitLocked(ctx, l)
	})
	return view, err
}

// SubmitAnswer answers the current question of the active quiz.
func (s *LearnerService) SubmitAnswer(ctx context.Context, profileID, answer string) (AnswerFeedback, error) {
	var feedback AnswerFeedback
	err := s.withQuiz(ctx, profileID, func(l *Learner, quiz *QuizSession) error {
		var err error
		feedback, err = quiz.SubmitAnswer(answer)
		if err != nil {
			return err
		}
		s.emit(l, feedback.Events)
		return nil
	})
	return feedback, err
}

// SkipQuestion gives up on the current question and moves on.
func (s *LearnerService) SkipQuestion(ctx context.Context, profileID string) (SkipOutcome, error) {
	var out SkipOutcome
	err := s.withQuiz(ctx, profileID, func(l *Learner, quiz *QuizSession) error {
		feedback, result, err := quiz.SkipQuestion()
		if err != nil {
			return err
		}
		s.emit(l, feedback.Events)
		out.Feedback = feedback
		out.StepOutcome, err = s.afterStep(ctx, l, quiz, result)
		return err
	})
	return out, err
}

// NextQuestion advances past the feedback pause, finishing the quiz when due.
func (s *LearnerService) NextQuestion(ctx context.Context, profileID string) (StepOutcome, error) {
	var out StepOutcome
	err := s.withQuiz(ctx, profileID, func(l *Learner, quiz *QuizSession) error {
		result, err := quiz.NextQuestion()
		if err != nil {
			return err
		}
		out, err = s.afterStep(ctx, l, quiz, result)
		return err
	})
	return out, err
}

// RetryMistakes starts a new attempt over the wrong answers of the finished quiz.
func (s *LearnerService) RetryMistakes(ctx context.Context, profileID string) (*QuestionView, error) {
	var view *QuestionView
	err := s.withQuiz(ctx, profileID, func(l *Learner, quiz *QuizSession) error {
		retry, err := quiz.RetryMistakes()
		if err != nil {
			return err
		}
		l.quiz = retry
		view = questionView(retry, s.shuffle)
		return nil
	})
	return view, err
}

// Abandon drops the active quiz. Nothing it scored reaches the profile.
func (s *LearnerService) Abandon(ctx context.Context, profileID string) error {
	err := s.withLearner(ctx, profileID, func(l *Learner) error {
		l.quiz = nil
		return nil
	})
	s.learners.DeleteIfIdle(profileID)
	return err
}

// CurrentQuestion returns the open question of the active quiz, if any.
func (s *LearnerService) CurrentQuestion(ctx context.Context, profileID string) (*QuestionView, error) {
	var view *QuestionView
	err := s.withQuiz(ctx, profileID, func(_ *Learner, quiz *QuizSession) error {
		view = questionView(quiz, s.shuffle)
		return nil
	})
	return view, err
}

// AwardXP grants XP outside a quiz and commits.
func (s *LearnerService) AwardXP(ctx context.Context, profileID string, amount int) (progression.LevelChange, error) {
	var change progression.LevelChange
	err := s.withLearner(ctx, profileID, func(l *Learner) error {
		var err error
		change, err = s.pctx.Leveling.AwardXP(l.profile, amount)
		if err != nil {
			return err
		}
		s.emit(l, s.levelEvents(profileID, change))
		return s.commitLocked(ctx, l)
	})
	return change, err
}

// RecordActivity marks today as active and commits.
func (s *LearnerService) RecordActivity(ctx context.Context, profileID string) (progression.StreakChange, error) {
	var change progression.StreakChange
	err := s.withLearner(ctx, profileID, func(l *Learner) error {
		change = s.pctx.Streaks.RecordActivity(l.profile, s.now())
		if change == progression.StreakUnchanged {
			return nil
		}
		return s.commitLocked(ctx, l)
	})
	return change, err
}

// EvaluateBadges awards anything newly eligible and commits.
func (s *LearnerService) EvaluateBadges(ctx context.Context, profileID string) ([]domain.Badge, error) {
	catalog, err := s.content.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	var badges []domain.Badge
	err = s.withLearner(ctx, profileID, func(l *Learner) error {
		var err error
		badges, err = s.pctx.Badges.Evaluate(l.profile, catalog.Categories(), s.now())
		if err != nil {
			return err
		}
		if len(badges) == 0 {
			return nil
		}
		s.emit(l, s.badgeEvents(profileID, badges))
		return s.commitLocked(ctx, l)
	})
	return badges, err
}

// TodayFocus returns today's recommended lesson, or nil when everything is done.
func (s *LearnerService) TodayFocus(ctx context.Context, profileID string) (*FocusView, error) {
	catalog, err := s.content.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	var view *FocusView
	err = s.withLearner(ctx, profileID, func(l *Learner) error {
		focus, fresh := s.pctx.Focus.TodayFocus(l.profile, catalog, s.now())
		if focus == nil {
			return nil
		}
		view = focusView(focus, l.profile.DailyFocus.Date)
		if !fresh {
			return nil
		}
		return s.commitLocked(ctx, l)
	})
	return view, err
}

// Categories lists every category with the profile's progress and unlock state.
func (s *LearnerService) Categories(ctx context.Context, profileID string) ([]CategoryView, error) {
	catalog, err := s.content.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	var views []CategoryView
	err = s.withLearner(ctx, profileID, func(l *Learner) error {
		tracker := s.pctx.Progress
		for _, c := range catalog.Categories() {
			view := CategoryView{
				ID:                   c.ID,
				Title:                c.Title,
				DisplayOrder:         c.DisplayOrder,
				CompletionPercentage: tracker.CompletionPercentage(c, l.profile),
				Status:               tracker.Status(c, l.profile),
			}
			progress := l.profile.Progress(c.ID)
			for _, sub := range c.SubCategories {
				view.SubCategories = append(view.SubCategories, SubCategoryView{
					ID:           sub.ID,
					Title:        sub.Title,
					DisplayOrder: sub.DisplayOrder,
					Unlocked:     tracker.IsUnlocked(c, sub, l.profile),
					Completed:    progress.IsCompleted(sub.ID),
					ComingSoon:   len(sub.Challenges) == 0,
				})
			}
			views = append(views, view)
		}
		return nil
	})
	return views, err
}

// Subscribe streams the learner's feedback events until cancel is called.
func (s *LearnerService) Subscribe(_ context.Context, profileID string) (<-chan domain.Event, func(), error) {
	if profileID == "" {
		return nil, nil, fmt.Errorf("%w: profile id is required", domain.ErrInvalidInput)
	}
	l := s.acquire(profileID)
	ch, cancel := l.subscribe()
	l.mu.Unlock()
	return ch, func() {
		cancel()
		s.learners.DeleteIfIdle(profileID)
	}, nil
}

// Flush commits a profile whose last commit failed.
func (s *LearnerService) Flush(ctx context.Context, profileID string) error {
	l, ok := s.learners.Get(profileID)
	if !ok {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.retired || !l.dirty || l.profile == nil {
		return nil
	}
	return s.commitLocked(ctx, l)
}

func (s *LearnerService) sessionOptions() []SessionOption {
	opts := []SessionOption{WithLives(s.lives), WithClock(s.now)}
	if s.shuffle != nil {
		opts = append(opts, WithShuffle(s.shuffle))
	}
	return opts
}

func (s *LearnerService) afterStep(ctx context.Context, l *Learner, quiz *QuizSession, result *CompletionResult) (StepOutcome, error) {
	if result == nil {
		return StepOutcome{Question: questionView(quiz, s.shuffle)}, nil
	}
	s.logger.Info("quiz completed",
		"profile_id", l.id,
		"subcategory_id", quiz.SubCategory().ID,
		"earned_xp", result.EarnedXP,
		"correct", result.CorrectCount,
		"total", result.TotalQuestions,
		"game_over", result.GameOver,
	)
	s.emit(l, result.Events)
	return StepOutcome{Result: result}, s.commitLocked(ctx, l)
}

// withLearner runs fn under the learner's lock with its profile loaded.
func (s *LearnerService) withLearner(ctx context.Context, profileID string, fn func(l *Learner) error) error {
	if profileID == "" {
		return fmt.Errorf("%w: profile id is required", domain.ErrInvalidInput)
	}
	l := s.acquire(profileID)
	defer l.mu.Unlock()
	if err := s.ensureProfileLocked(ctx, l); err != nil {
		return err
	}
	var pending error
	if l.dirty {
		pending = s.commitLocked(ctx, l)
	}
	if err := fn(l); err != nil {
		return err
	}
	if l.dirty {
		// fn's result stands in memory but the profile is still unsaved.
		return pending
	}
	return nil
}

// acquire returns the registered owner of profileID, locked. A learner the
// registry retired between lookup and lock is skipped for the fresh one.
func (s *LearnerService) acquire(profileID string) *Learner {
	for {
		l := s.learners.GetOrCreate(profileID)
		l.mu.Lock()
		if !l.retired {
			return l
		}
		l.mu.Unlock()
	}
}

func (s *LearnerService) withQuiz(ctx context.Context, profileID string, fn func(l *Learner, quiz *QuizSession) error) error {
	return s.withLearner(ctx, profileID, func(l *Learner) error {
		if l.quiz == nil {
			return domain.ErrNoActiveQuiz
		}
		return fn(l, l.quiz)
	})
}

func (s *LearnerService) ensureProfileLocked(ctx context.Context, l *Learner) error {
	if l.profile != nil {
		return nil
	}
	profile, err := s.profiles.LoadProfile(ctx, l.id)
	if errors.Is(err, domain.ErrNotFound) {
		l.profile = domain.NewProfile(l.id, "", s.now())
		l.dirty = true
		s.logger.Info("created profile", "profile_id", l.id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if profile.CategoryProgress == nil {
		profile.CategoryProgress = make(map[string]*domain.CategoryProgress)
	}
	l.profile = profile
	return nil
}

func (s *LearnerService) emit(l *Learner, events []domain.Event) {
	l.publish(events)
	if s.notifier == nil {
		return
	}
	for _, ev := range events {
		switch ev.Type {
		case domain.EventCorrectAnswer:
			s.notifier.CorrectAnswer(ev.ProfileID)
		case domain.EventWrongAnswer:
			s.notifier.WrongAnswer(ev.ProfileID)
		case domain.EventLevelUp:
			s.notifier.LevelUp(ev.ProfileID, ev.Level)
		case domain.EventBadgeEarned:
			if ev.Badge != nil {
				s.notifier.BadgeEarned(ev.ProfileID, *ev.Badge)
			}
		}
	}
}

func (s *LearnerService) levelEvents(profileID string, change progression.LevelChange) []domain.Event {
	var events []domain.Event
	for _, level := range change.Reached() {
		events = append(events, domain.Event{Type: domain.EventLevelUp, ProfileID: profileID, Level: level, OccurredAt: s.now()})
	}
	return events
}

func (s *LearnerService) badgeEvents(profileID string, badges []domain.Badge) []domain.Event {
	events := make([]domain.Event, 0, len(badges))
	for i := range badges {
		events = append(events, domain.Event{Type: domain.EventBadgeEarned, ProfileID: profileID, Badge: &badges[i], OccurredAt: s.now()})
	}
	return events
}
