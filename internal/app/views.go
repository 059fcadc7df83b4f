package app

import (
	"time"

	"movie-knowledge-service/internal/domain"
	"movie-knowledge-service/internal/progression"
)

// QuestionView is a challenge as shown to the player; the answer stays server side.
type QuestionView struct {
	Index          int                 `json:"index"`
	Total          int                 `json:"total"`
	LivesRemaining int                 `json:"livesRemaining"`
	ChallengeID    string              `json:"challengeId"`
	QuestionText   string              `json:"questionText"`
	QuestionType   domain.QuestionType `json:"questionType"`
	Options        []string            `json:"options,omitempty"`
	Difficulty     domain.Difficulty   `json:"difficulty"`
	XPReward       int                 `json:"xpReward"`
	SubCategoryID  string              `json:"subCategoryId"`
}

// StepOutcome is the result of moving a quiz forward: either the next
// question or, when the attempt finished, its completion result.
type StepOutcome struct {
	Question *QuestionView     `json:"question,omitempty"`
	Result   *CompletionResult `json:"result,omitempty"`
}

// SkipOutcome pairs the feedback for a skipped question with the step it caused.
type SkipOutcome struct {
	Feedback AnswerFeedback `json:"feedback"`
	StepOutcome
}

// FocusView is today's recommended lesson.
type FocusView struct {
	Date             time.Time `json:"date"`
	CategoryID       string    `json:"categoryId"`
	CategoryTitle    string    `json:"categoryTitle"`
	SubCategoryID    string    `json:"subCategoryId"`
	SubCategoryTitle string    `json:"subCategoryTitle"`
	IsComingSoon     bool      `json:"isComingSoon"`
	IsCompleted      bool      `json:"isCompleted"`
}

// CategoryView is a category with per-profile progress.
type CategoryView struct {
	ID                   string                       `json:"id"`
	Title                string                       `json:"title"`
	DisplayOrder         int                          `json:"displayOrder"`
	CompletionPercentage float64                      `json:"completionPercentage"`
	Status               progression.CompletionStatus `json:"status"`
	SubCategories        []SubCategoryView            `json:"subCategories"`
}

// SubCategoryView is a lesson with its lock state.
type SubCategoryView struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	DisplayOrder int    `json:"displayOrder"`
	Unlocked     bool   `json:"unlocked"`
	Completed    bool   `json:"completed"`
	ComingSoon   bool   `json:"comingSoon"`
}

// ProfileView is the profile summary with derived leveling figures.
type ProfileView struct {
	*domain.Profile
	NextLevelXP         int     `json:"nextLevelXp"`
	ProgressToNextLevel float64 `json:"progressToNextLevel"`
	AccuracyRate        float64 `json:"accuracyRate"`
	StreakMessage       string  `json:"streakMessage"`
}

func newProfileView(p *domain.Profile) ProfileView {
	return ProfileView{
		Profile:             p,
		NextLevelXP:         progression.NextLevelXP(p.Level),
		ProgressToNextLevel: progression.ProgressToNextLevel(p),
		AccuracyRate:        p.AccuracyRate(),
		StreakMessage:       progression.StreakMessage(p),
	}
}

func questionView(s *QuizSession, shuffle func(n int, swap func(i, j int))) *QuestionView {
	c, ok := s.CurrentChallenge()
	if !ok {
		return nil
	}
	return &QuestionView{
		Index:          s.Index(),
		Total:          s.Total(),
		LivesRemaining: s.LivesRemaining(),
		ChallengeID:    c.ID,
		QuestionText:   c.QuestionText,
		QuestionType:   c.QuestionType,
		Options:        c.AllAnswers(shuffle),
		Difficulty:     c.Difficulty,
		XPReward:       c.Reward(),
		SubCategoryID:  s.SubCategory().ID,
	}
}

func focusView(f *progression.Focus, date time.Time) *FocusView {
	if f == nil {
		return nil
	}
	return &FocusView{
		Date:             date,
		CategoryID:       f.Category.ID,
		CategoryTitle:    f.Category.Title,
		SubCategoryID:    f.SubCategory.ID,
		SubCategoryTitle: f.SubCategory.Title,
		IsComingSoon:     f.IsComingSoon,
		IsCompleted:      f.IsCompleted,
	}
}
