package progression

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"movie-knowledge-service/internal/domain"
)

// RequirementKind selects the predicate a badge checks.
type RequirementKind string

const (
	RequireCompletedCategory RequirementKind = "completed_category"
	RequireLevel             RequirementKind = "level"
	RequireStreakDays        RequirementKind = "streak_days"
	// RequireTotalXP compares against Profile.XP, the remainder since the last
	// level-up, not lifetime XP.
	RequireTotalXP  RequirementKind = "total_xp"
	RequireAccuracy RequirementKind = "accuracy"
)

// Requirement is a badge predicate over the current profile snapshot.
type Requirement struct {
	Kind         RequirementKind
	CategoryID   string
	Threshold    int
	MinAccuracy  float64
	MinQuestions int
}

func CompletedCategory(categoryID string) Requirement {
	return Requirement{Kind: RequireCompletedCategory, CategoryID: categoryID}
}

func ReachedLevel(level int) Requirement {
	return Requirement{Kind: RequireLevel, Threshold: level}
}

func StreakDays(days int) Requirement {
	return Requirement{Kind: RequireStreakDays, Threshold: days}
}

func TotalXP(xp int) Requirement {
	return Requirement{Kind: RequireTotalXP, Threshold: xp}
}

func Accuracy(min float64, minQuestions int) Requirement {
	return Requirement{Kind: RequireAccuracy, MinAccuracy: min, MinQuestions: minQuestions}
}

// BadgeDefinition is one entry of the badge catalog.
type BadgeDefinition struct {
	Key         string
	Title       string
	Description string
	IconRef     string
	CategoryID  string
	Requirement Requirement
}

// BadgeEvaluator awards catalog badges whose requirement holds now.
type BadgeEvaluator struct {
	progress *ProgressTracker
	logger   *slog.Logger
}

func NewBadgeEvaluator(progress *ProgressTracker, logger *slog.Logger) *BadgeEvaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &BadgeEvaluator{progress: progress, logger: logger}
}

// Catalog builds the badge catalog for the given categories. Titles must be
// unique because earned badges are matched by title.
func (e *BadgeEvaluator) Catalog(categories []domain.Category) ([]BadgeDefinition, error) {
	defs := make([]BadgeDefinition, 0, len(categories)+5)
	for _, c := range categories {
		icon := c.IconRef
		if icon == "" {
			icon = "star.fill"
		}
		defs = append(defs, BadgeDefinition{
			Key:         "category_expert:" + c.ID,
			Title:       c.Title + " Expert",
			Description: "Complete all lessons in " + c.Title,
			IconRef:     icon,
			CategoryID:  c.ID,
			Requirement: CompletedCategory(c.ID),
		})
	}
	defs = append(defs,
		BadgeDefinition{Key: "week_warrior", Title: "Week Warrior", Description: "Maintain a 7-day streak", IconRef: "flame.fill", Requirement: StreakDays(7)},
		BadgeDefinition{Key: "month_master", Title: "Month Master", Description: "Maintain a 30-day streak", IconRef: "flame.circle.fill", Requirement: StreakDays(30)},
		BadgeDefinition{Key: "rising_star", Title: "Rising Star", Description: "Reach level 5", IconRef: "star.fill", Requirement: ReachedLevel(5)},
		BadgeDefinition{Key: "movie_master", Title: "Movie Master", Description: "Reach level 10", IconRef: "star.circle.fill", Requirement: ReachedLevel(10)},
		BadgeDefinition{Key: "perfectionist", Title: "Perfectionist", Description: "Achieve 90% accuracy over 50 questions", IconRef: "checkmark.seal.fill", Requirement: Accuracy(0.9, 50)},
	)

	seen := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		if _, dup := seen[d.Title]; dup {
			return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateBadgeTitle, d.Title)
		}
		seen[d.Title] = struct{}{}
	}
	return defs, nil
}

// Evaluate awards every badge not yet earned whose requirement is met and
// returns the new ones. It only reads the current snapshot, so running it
// again without changes awards nothing.
func (e *BadgeEvaluator) Evaluate(p *domain.Profile, categories []domain.Category, now time.Time) ([]domain.Badge, error) {
	defs, err := e.Catalog(categories)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	var awarded []domain.Badge
	for _, d := range defs {
		if p.HasBadge(d.Key, d.Title) {
			continue
		}
		if !e.meets(d.Requirement, p, byID) {
			continue
		}
		badge := domain.Badge{
			ID:          uuid.NewString(),
			Key:         d.Key,
			Title:       d.Title,
			Description: d.Description,
			IconRef:     d.IconRef,
			CategoryID:  d.CategoryID,
			EarnedDate:  now,
		}
		p.EarnedBadges = append(p.EarnedBadges, badge)
		awarded = append(awarded, badge)
		e.logger.Info("badge earned", "profile_id", p.ID, "badge", badge.Title)
	}
	return awarded, nil
}

func (e *BadgeEvaluator) meets(r Requirement, p *domain.Profile, categories map[string]domain.Category) bool {
	switch r.Kind {
	case RequireCompletedCategory:
		c, ok := categories[r.CategoryID]
		if !ok {
			return false
		}
		return e.progress.IsCategoryCompleted(c, p)
	case RequireLevel:
		return p.Level >= r.Threshold
	case RequireStreakDays:
		return p.CurrentStreak >= r.Threshold
	case RequireTotalXP:
		return p.XP >= r.Threshold
	case RequireAccuracy:
		return p.TotalQuestionsAnswered >= r.MinQuestions && p.AccuracyRate() >= r.MinAccuracy
	default:
		return false
	}
}
