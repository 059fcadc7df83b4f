package app

import (
	"fmt"
	"strings"
	"time"

	"movie-knowledge-service/internal/domain"
	"movie-knowledge-service/internal/progression"
)

// DefaultLives is the number of wrong answers a quiz tolerates.
const DefaultLives = 3

// SessionState is the position of a quiz attempt in its lifecycle.
type SessionState int

const (
	StateActive SessionState = iota
	StateAnswered
	StateComplete
	StateGameOver
)

func (s SessionState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateAnswered:
		return "answered"
	case StateComplete:
		return "complete"
	case StateGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// AnswerFeedback is what the player sees right after answering.
type AnswerFeedback struct {
	Index          int            `json:"index"`
	Correct        bool           `json:"correct"`
	CorrectAnswer  string         `json:"correctAnswer"`
	Explanation    string         `json:"explanation,omitempty"`
	LivesRemaining int            `json:"livesRemaining"`
	GameOver       bool           `json:"gameOver"`
	Events         []domain.Event `json:"-"`
}

// CompletionResult summarizes what a finished attempt did to the profile.
type CompletionResult struct {
	EarnedXP       int                      `json:"earnedXp"`
	CorrectCount   int                      `json:"correctCount"`
	TotalQuestions int                      `json:"totalQuestions"`
	Accuracy       float64                  `json:"accuracy"`
	GameOver       bool                     `json:"gameOver"`
	Level          progression.LevelChange  `json:"level"`
	Streak         progression.StreakChange `json:"streak"`
	NewlyCompleted bool                     `json:"newlyCompleted"`
	FocusCompleted bool                     `json:"focusCompleted"`
	NewBadges      []domain.Badge           `json:"newBadges"`
	CanRetry       bool                     `json:"canRetry"`
	Events         []domain.Event           `json:"-"`
}

// SessionOption customizes a QuizSession.
type SessionOption func(*QuizSession)

// WithLives sets the starting lives.
func WithLives(n int) SessionOption {
	return func(s *QuizSession) {
		if n > 0 {
			s.lives = n
		}
	}
}

// WithClock makes the session date its completion with now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *QuizSession) {
		if now != nil {
			s.now = now
		}
	}
}

// WithShuffle reorders the challenges once at construction.
func WithShuffle(shuffle func(n int, swap func(i, j int))) SessionOption {
	return func(s *QuizSession) {
		s.shuffle = shuffle
	}
}

// QuizSession is one attempt at a lesson. It scores answers locally and only
// touches the profile when completion runs, all at once, at the end.
type QuizSession struct {
	pctx        *progression.Context
	profile     *domain.Profile
	catalog     *domain.Catalog
	category    domain.Category
	subCategory domain.SubCategory
	challenges  []domain.Challenge

	lives   int
	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
	opts    []SessionOption

	state          SessionState
	index          int
	answers        []string
	correct        []bool
	wrong          []domain.Challenge
	livesRemaining int
	gameOver       bool
	result         *CompletionResult
}

// NewQuizSession starts an attempt over every challenge of a lesson.
func NewQuizSession(pctx *progression.Context, profile *domain.Profile, catalog *domain.Catalog, subCategoryID string, opts ...SessionOption) (*QuizSession, error) {
	category, sub, ok := catalog.SubCategory(subCategoryID)
	if !ok {
		return nil, domain.ErrSubCategoryNotFound
	}
	return newQuizSession(pctx, profile, catalog, category, sub, sub.Challenges, opts)
}

func newQuizSession(pctx *progression.Context, profile *domain.Profile, catalog *domain.Catalog, category domain.Category, sub domain.SubCategory, challenges []domain.Challenge, opts []SessionOption) (*QuizSession, error) {
	if len(challenges) == 0 {
		return nil, domain.ErrEmptyQuiz
	}
	s := &QuizSession{
		pctx:        pctx,
		profile:     profile,
		catalog:     catalog,
		category:    category,
		subCategory: sub,
		challenges:  append([]domain.Challenge(nil), challenges...),
		lives:       DefaultLives,
		now:         time.Now,
		opts:        opts,
		state:       StateActive,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.shuffle != nil {
		s.shuffle(len(s.challenges), func(i, j int) {
			s.challenges[i], s.challenges[j] = s.challenges[j], s.challenges[i]
		})
	}
	s.livesRemaining = s.lives
	return s, nil
}

// RetryMistakes starts a fresh attempt over the challenges answered wrong here.
func (s *QuizSession) RetryMistakes(opts ...SessionOption) (*QuizSession, error) {
	if !s.IsFinished() {
		return nil, domain.ErrSessionNotOver
	}
	if len(s.wrong) == 0 {
		return nil, domain.ErrNoMistakes
	}
	merged := append(append([]SessionOption(nil), s.opts...), opts...)
	return newQuizSession(s.pctx, s.profile, s.catalog, s.category, s.subCategory, s.wrong, merged)
}

// SubmitAnswer scores text against the current challenge.
func (s *QuizSession) SubmitAnswer(text string) (AnswerFeedback, error) {
	if err := s.requireActive(); err != nil {
		return AnswerFeedback{}, err
	}
	challenge := s.challenges[s.index]
	return s.record(text, normalize(text) == normalize(challenge.CorrectAnswer)), nil
}

// SkipQuestion counts the current challenge as wrong and advances at once.
func (s *QuizSession) SkipQuestion() (AnswerFeedback, *CompletionResult, error) {
	if err := s.requireActive(); err != nil {
		return AnswerFeedback{}, nil, err
	}
	feedback := s.record("", false)
	result, err := s.NextQuestion()
	return feedback, result, err
}

// NextQuestion leaves the feedback pause. On the last challenge, or after the
// last life is lost, it finishes the attempt and returns the completion result.
func (s *QuizSession) NextQuestion() (*CompletionResult, error) {
	switch s.state {
	case StateActive:
		return nil, domain.ErrNotAnswered
	case StateComplete, StateGameOver:
		return nil, domain.ErrSessionFinished
	}

	if !s.gameOver && s.index < len(s.challenges)-1 {
		s.index++
		s.state = StateActive
		return nil, nil
	}

	result, err := s.complete()
	if err != nil {
		return nil, err
	}
	if s.gameOver {
		s.state = StateGameOver
	} else {
		s.state = StateComplete
	}
	return result, nil
}

func (s *QuizSession) requireActive() error {
	switch s.state {
	case StateActive:
		return nil
	case StateAnswered:
		return domain.ErrAwaitingNext
	default:
		return domain.ErrSessionFinished
	}
}

func (s *QuizSession) record(text string, correct bool) AnswerFeedback {
	challenge := s.challenges[s.index]
	s.answers = append(s.answers, text)
	s.correct = append(s.correct, correct)

	eventType := domain.EventCorrectAnswer
	if !correct {
		eventType = domain.EventWrongAnswer
		s.wrong = append(s.wrong, challenge)
		s.livesRemaining--
		if s.livesRemaining <= 0 {
			s.livesRemaining = 0
			s.gameOver = true
		}
	}
	s.state = StateAnswered

	return AnswerFeedback{
		Index:          s.index,
		Correct:        correct,
		CorrectAnswer:  challenge.CorrectAnswer,
		Explanation:    challenge.Explanation,
		LivesRemaining: s.livesRemaining,
		GameOver:       s.gameOver,
		Events:         []domain.Event{s.event(eventType)},
	}
}

// complete runs the completion pipeline on a copy of the profile and swaps it
// in only when every step succeeded.
func (s *QuizSession) complete() (*CompletionResult, error) {
	if s.result != nil {
		return s.result, nil
	}
	today := s.now()
	p := s.profile.Clone()

	earnedXP := 0
	correctCount := 0
	for i, ok := range s.correct {
		if ok && i < len(s.challenges) {
			earnedXP += s.challenges[i].Reward()
			correctCount++
		}
	}
	total := len(s.challenges)
	accuracy := float64(correctCount) / float64(total)

	p.TotalQuestionsAnswered += total
	p.TotalCorrectAnswers += correctCount

	level, err := s.pctx.Leveling.AwardXP(p, earnedXP)
	if err != nil {
		return nil, fmt.Errorf("award xp: %w", err)
	}
	streak, err := s.pctx.Streaks.RecordDailyLesson(p, today, total, correctCount, earnedXP)
	if err != nil {
		return nil, fmt.Errorf("record daily lesson: %w", err)
	}
	added, err := s.pctx.Progress.CompleteSubCategory(p, s.category, s.subCategory.ID)
	if err != nil {
		return nil, fmt.Errorf("complete subcategory: %w", err)
	}
	s.pctx.Progress.RecordSessionStats(p, s.category.ID, earnedXP, accuracy, today)
	focusDone := s.pctx.Focus.MarkCompleted(p, s.subCategory.ID, today)
	badges, err := s.pctx.Badges.Evaluate(p, s.catalog.Categories(), today)
	if err != nil {
		return nil, fmt.Errorf("evaluate badges: %w", err)
	}

	*s.profile = *p

	result := &CompletionResult{
		EarnedXP:       earnedXP,
		CorrectCount:   correctCount,
		TotalQuestions: total,
		Accuracy:       accuracy,
		GameOver:       s.gameOver,
		Level:          level,
		Streak:         streak,
		NewlyCompleted: added,
		FocusCompleted: focusDone,
		NewBadges:      badges,
		CanRetry:       len(s.wrong) > 0,
	}
	for _, l := range level.Reached() {
		ev := s.event(domain.EventLevelUp)
		ev.Level = l
		result.Events = append(result.Events, ev)
	}
	for i := range badges {
		ev := s.event(domain.EventBadgeEarned)
		ev.Badge = &badges[i]
		result.Events = append(result.Events, ev)
	}
	result.Events = append(result.Events, s.event(domain.EventQuizCompleted))
	s.result = result
	return result, nil
}

func (s *QuizSession) event(t domain.EventType) domain.Event {
	return domain.Event{Type: t, ProfileID: s.profile.ID, OccurredAt: s.now()}
}

// CurrentChallenge returns the challenge at the current index while the attempt is open.
func (s *QuizSession) CurrentChallenge() (domain.Challenge, bool) {
	if s.IsFinished() {
		return domain.Challenge{}, false
	}
	return s.challenges[s.index], true
}

func (s *QuizSession) State() SessionState { return s.state }
func (s *QuizSession) Index() int          { return s.index }
func (s *QuizSession) Total() int          { return len(s.challenges) }
func (s *QuizSession) LivesRemaining() int { return s.livesRemaining }
func (s *QuizSession) IsGameOver() bool    { return s.gameOver }

// IsFinished reports whether the attempt reached Complete or GameOver.
func (s *QuizSession) IsFinished() bool {
	return s.state == StateComplete || s.state == StateGameOver
}

func (s *QuizSession) SubCategory() domain.SubCategory { return s.subCategory }
func (s *QuizSession) Category() domain.Category       { return s.category }
func (s *QuizSession) Result() *CompletionResult       { return s.result }

func (s *QuizSession) Answers() []string {
	return append([]string(nil), s.answers...)
}

func (s *QuizSession) CorrectFlags() []bool {
	return append([]bool(nil), s.correct...)
}

func (s *QuizSession) WrongChallenges() []domain.Challenge {
	return append([]domain.Challenge(nil), s.wrong...)
}

// CorrectCount counts correct answers so far.
func (s *QuizSession) CorrectCount() int {
	n := 0
	for _, ok := range s.correct {
		if ok {
			n++
		}
	}
	return n
}

// Progress is the share of challenges already passed, for a progress bar.
func (s *QuizSession) Progress() float64 {
	return float64(s.index) / float64(len(s.challenges))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
