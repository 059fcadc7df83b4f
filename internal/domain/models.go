package domain

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty grades a challenge and sets its default XP reward.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// BaseXP is the reward for a correct answer when a challenge does not set one.
func (d Difficulty) BaseXP() int {
	switch d {
	case DifficultyMedium:
		return 15
	case DifficultyHard:
		return 20
	default:
		return 10
	}
}

// QuestionType tells the client how to render a challenge.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionFillBlank      QuestionType = "fill_blank"
	QuestionPickYear       QuestionType = "pick_year"
	QuestionMatchDirector  QuestionType = "match_director"
)

// Challenge is a single trivia question.
type Challenge struct {
	ID            string       `json:"id" yaml:"id"`
	QuestionText  string       `json:"questionText" yaml:"question"`
	QuestionType  QuestionType `json:"questionType" yaml:"type"`
	CorrectAnswer string       `json:"correctAnswer" yaml:"answer"`
	WrongAnswers  []string     `json:"wrongAnswers,omitempty" yaml:"wrong,omitempty"`
	Explanation   string       `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Difficulty    Difficulty   `json:"difficulty" yaml:"difficulty"`
	XPReward      int          `json:"xpReward,omitempty" yaml:"xp,omitempty"` // defaults to Difficulty.BaseXP if zero
}

// Reward returns the XP granted for answering the challenge correctly.
func (c Challenge) Reward() int {
	if c.XPReward > 0 {
		return c.XPReward
	}
	return c.Difficulty.BaseXP()
}

// AllAnswers returns the options of a multiple choice challenge, ordered by shuffle.
// Other question types have no option list.
func (c Challenge) AllAnswers(shuffle func(n int, swap func(i, j int))) []string {
	if c.QuestionType != QuestionMultipleChoice {
		return nil
	}
	answers := make([]string, 0, len(c.WrongAnswers)+1)
	answers = append(answers, c.WrongAnswers...)
	answers = append(answers, c.CorrectAnswer)
	if shuffle != nil {
		shuffle(len(answers), func(i, j int) { answers[i], answers[j] = answers[j], answers[i] })
	}
	return answers
}

// SubCategory is a lesson. DisplayOrder is unique within its category and
// defines the unlock chain.
type SubCategory struct {
	ID           string      `json:"id" yaml:"id"`
	Title        string      `json:"title" yaml:"title"`
	Description  string      `json:"description,omitempty" yaml:"description,omitempty"`
	DisplayOrder int         `json:"displayOrder" yaml:"order"`
	Challenges   []Challenge `json:"challenges" yaml:"challenges"`
}

// Category groups lessons.
type Category struct {
	ID            string        `json:"id" yaml:"id"`
	Title         string        `json:"title" yaml:"title"`
	Subtitle      string        `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	IconRef       string        `json:"iconRef,omitempty" yaml:"icon,omitempty"`
	DisplayOrder  int           `json:"displayOrder" yaml:"order"`
	SubCategories []SubCategory `json:"subCategories" yaml:"subcategories"`
}

// Badge is an award earned once and never changed afterwards.
type Badge struct {
	ID          string    `json:"id"`
	Key         string    `json:"key,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IconRef     string    `json:"iconRef"`
	CategoryID  string    `json:"categoryId,omitempty"`
	EarnedDate  time.Time `json:"earnedDate"`
}

// DailyLessonRecord aggregates one calendar day of quiz activity.
type DailyLessonRecord struct {
	ID                string    `json:"id"`
	Date              time.Time `json:"date"`
	QuestionsAnswered int       `json:"questionsAnswered"`
	CorrectAnswers    int       `json:"correctAnswers"`
	XPEarned          int       `json:"xpEarned"`
}

// AccuracyRate is the share of correct answers that day, 0 if none.
func (r DailyLessonRecord) AccuracyRate() float64 {
	if r.QuestionsAnswered == 0 {
		return 0
	}
	return float64(r.CorrectAnswers) / float64(r.QuestionsAnswered)
}

// CategoryProgress tracks one category for one profile.
// CompletedSubCategoryIDs has set semantics.
type CategoryProgress struct {
	CategoryID              string     `json:"categoryId"`
	CompletedSubCategoryIDs []string   `json:"completedSubCategoryIds"`
	CurrentSubCategoryID    string     `json:"currentSubCategoryId,omitempty"`
	TotalXPEarned           int        `json:"totalXpEarned"`
	LastPlayedDate          *time.Time `json:"lastPlayedDate,omitempty"`
	BestAccuracy            float64    `json:"bestAccuracy"`
}

// IsCompleted reports whether subCategoryID is in the completed set.
func (p *CategoryProgress) IsCompleted(subCategoryID string) bool {
	if p == nil {
		return false
	}
	for _, id := range p.CompletedSubCategoryIDs {
		if id == subCategoryID {
			return true
		}
	}
	return false
}

// CompletedCount is the size of the completed set.
func (p *CategoryProgress) CompletedCount() int {
	if p == nil {
		return 0
	}
	return len(p.CompletedSubCategoryIDs)
}

// DailyFocus is the cached recommendation for one day.
type DailyFocus struct {
	Date          time.Time `json:"date"`
	CategoryID    string    `json:"categoryId"`
	SubCategoryID string    `json:"subCategoryId"`
	Completed     bool      `json:"completed"`
}

// LastPlayed points at the most recently started lesson.
type LastPlayed struct {
	CategoryID    string `json:"categoryId"`
	SubCategoryID string `json:"subCategoryId"`
}

// Profile is the aggregate mutated by the progression engine.
// XP is the remainder since the last level-up, not lifetime XP.
type Profile struct {
	ID                     string                       `json:"id"`
	Username               string                       `json:"username"`
	XP                     int                          `json:"xp"`
	Level                  int                          `json:"level"`
	CurrentStreak          int                          `json:"currentStreak"`
	LongestStreak          int                          `json:"longestStreak"`
	LastActiveDate         *time.Time                   `json:"lastActiveDate,omitempty"`
	TotalQuestionsAnswered int                          `json:"totalQuestionsAnswered"`
	TotalCorrectAnswers    int                          `json:"totalCorrectAnswers"`
	DailyLessonHistory     []DailyLessonRecord          `json:"dailyLessonHistory"`
	CategoryProgress       map[string]*CategoryProgress `json:"categoryProgress"`
	EarnedBadges           []Badge                      `json:"earnedBadges"`
	DailyFocus             *DailyFocus                  `json:"dailyFocus,omitempty"`
	LastPlayed             *LastPlayed                  `json:"lastPlayed,omitempty"`
	CreatedAt              time.Time                    `json:"createdAt"`
}

// NewProfile returns a first-launch profile at level 1.
func NewProfile(id, username string, now time.Time) *Profile {
	if id == "" {
		id = uuid.NewString()
	}
	if username == "" {
		username = "Movie Buff"
	}
	return &Profile{
		ID:               id,
		Username:         username,
		Level:            1,
		CategoryProgress: make(map[string]*CategoryProgress),
		CreatedAt:        now,
	}
}

// AccuracyRate is lifetime correct/answered, 0 if nothing answered.
func (p *Profile) AccuracyRate() float64 {
	if p.TotalQuestionsAnswered == 0 {
		return 0
	}
	return float64(p.TotalCorrectAnswers) / float64(p.TotalQuestionsAnswered)
}

// Progress returns the progress for a category, or nil.
func (p *Profile) Progress(categoryID string) *CategoryProgress {
	if p.CategoryProgress == nil {
		return nil
	}
	return p.CategoryProgress[categoryID]
}

// HasBadge reports whether a badge with the given key or title was earned.
func (p *Profile) HasBadge(key, title string) bool {
	for _, b := range p.EarnedBadges {
		if (key != "" && b.Key == key) || b.Title == title {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so a pipeline can run on it and be swapped in whole.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.LastActiveDate = cloneTime(p.LastActiveDate)
	c.DailyLessonHistory = append([]DailyLessonRecord(nil), p.DailyLessonHistory...)
	c.EarnedBadges = append([]Badge(nil), p.EarnedBadges...)
	c.CategoryProgress = make(map[string]*CategoryProgress, len(p.CategoryProgress))
	for id, cp := range p.CategoryProgress {
		if cp == nil {
			continue
		}
		cc := *cp
		cc.CompletedSubCategoryIDs = append([]string(nil), cp.CompletedSubCategoryIDs...)
		cc.LastPlayedDate = cloneTime(cp.LastPlayedDate)
		c.CategoryProgress[id] = &cc
	}
	if p.DailyFocus != nil {
		f := *p.DailyFocus
		c.DailyFocus = &f
	}
	if p.LastPlayed != nil {
		lp := *p.LastPlayed
		c.LastPlayed = &lp
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
