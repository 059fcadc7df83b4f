package progression_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-knowledge-service/internal/domain"
	"movie-knowledge-service/internal/progression"
)

func newEvaluator() (*progression.BadgeEvaluator, *progression.ProgressTracker) {
	tracker := progression.NewProgressTracker()
	return progression.NewBadgeEvaluator(tracker, nil), tracker
}

func titles(badges []domain.Badge) []string {
	out := make([]string, 0, len(badges))
	for _, b := range badges {
		out = append(out, b.Title)
	}
	return out
}

func TestCatalogEntries(t *testing.T) {
	evaluator, _ := newEvaluator()
	defs, err := evaluator.Catalog([]domain.Category{category("a", 0, 1), category("b", 1, 1)})
	require.NoError(t, err)

	var got []string
	for _, d := range defs {
		got = append(got, d.Title)
	}
	assert.Equal(t, []string{"Cat a Expert", "Cat b Expert", "Week Warrior", "Month Master", "Rising Star", "Movie Master", "Perfectionist"}, got)
}

func TestCatalogRejectsDuplicateTitles(t *testing.T) {
	evaluator, _ := newEvaluator()
	a := category("a", 0, 1)
	b := category("b", 1, 1)
	b.Title = a.Title

	_, err := evaluator.Catalog([]domain.Category{a, b})
	require.ErrorIs(t, err, domain.ErrDuplicateBadgeTitle)
}

func TestEvaluateAwardsOnceAndIsStable(t *testing.T) {
	evaluator, tracker := newEvaluator()
	cats := []domain.Category{category("a", 0, 2), category("b", 1, 2)}
	p := newProfile()
	p.Level = 5
	p.CurrentStreak = 7
	_, _ = tracker.CompleteSubCategory(p, cats[0], "a-0")
	_, _ = tracker.CompleteSubCategory(p, cats[0], "a-1")

	awarded, err := evaluator.Evaluate(p, cats, day(0))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Cat a Expert", "Week Warrior", "Rising Star"}, titles(awarded))
	assert.Equal(t, "a", awarded[0].CategoryID)

	again, err := evaluator.Evaluate(p, cats, day(0))
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Len(t, p.EarnedBadges, 3)
}

func TestEvaluateAwardsNewlyEligible(t *testing.T) {
	evaluator, _ := newEvaluator()
	p := newProfile()

	awarded, err := evaluator.Evaluate(p, nil, day(0))
	require.NoError(t, err)
	assert.Empty(t, awarded)

	p.CurrentStreak = 30
	p.Level = 10
	awarded, err = evaluator.Evaluate(p, nil, day(1))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Week Warrior", "Month Master", "Rising Star", "Movie Master"}, titles(awarded))
}

func TestEvaluateSkipsTitleEarnedWithoutKey(t *testing.T) {
	evaluator, _ := newEvaluator()
	p := newProfile()
	p.CurrentStreak = 8
	p.EarnedBadges = []domain.Badge{{ID: "old", Title: "Week Warrior"}}

	awarded, err := evaluator.Evaluate(p, nil, day(0))
	require.NoError(t, err)
	assert.Empty(t, awarded)
}

func TestPerfectionistNeedsVolumeAndAccuracy(t *testing.T) {
	evaluator, _ := newEvaluator()
	p := newProfile()
	p.TotalQuestionsAnswered = 49
	p.TotalCorrectAnswers = 49

	awarded, err := evaluator.Evaluate(p, nil, day(0))
	require.NoError(t, err)
	assert.Empty(t, awarded)

	p.TotalQuestionsAnswered = 50
	p.TotalCorrectAnswers = 44
	awarded, err = evaluator.Evaluate(p, nil, day(0))
	require.NoError(t, err)
	assert.Empty(t, awarded)

	p.TotalCorrectAnswers = 45
	awarded, err = evaluator.Evaluate(p, nil, day(0))
	require.NoError(t, err)
	assert.Equal(t, []string{"Perfectionist"}, titles(awarded))
}

func TestCategoryBadgeIgnoresEmptyCategory(t *testing.T) {
	evaluator, _ := newEvaluator()
	p := newProfile()
	p.CategoryProgress["e"] = &domain.CategoryProgress{CategoryID: "e"}

	awarded, err := evaluator.Evaluate(p, []domain.Category{{ID: "e", Title: "Empty"}}, day(0))
	require.NoError(t, err)
	assert.Empty(t, awarded)
}
