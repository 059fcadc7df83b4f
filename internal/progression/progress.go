package progression

import (
	"sort"
	"time"

	"movie-knowledge-service/internal/domain"
)

// CompletionStatus buckets a category for filtering.
type CompletionStatus string

const (
	StatusNotStarted CompletionStatus = "not_started"
	StatusInProgress CompletionStatus = "in_progress"
	StatusCompleted  CompletionStatus = "completed"
)

// ProgressTracker records lesson completion and enforces the unlock chain.
type ProgressTracker struct{}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{}
}

// CompleteSubCategory adds the subcategory to its category's completed set and
// moves the current pointer to the first incomplete lesson. Completing twice is
// a no-op; the return value reports whether anything new was completed.
func (t *ProgressTracker) CompleteSubCategory(p *domain.Profile, category domain.Category, subCategoryID string) (bool, error) {
	if !hasSubCategory(category, subCategoryID) {
		return false, domain.ErrSubCategoryNotFound
	}

	progress := t.progressFor(p, category.ID)
	added := false
	if !progress.IsCompleted(subCategoryID) {
		progress.CompletedSubCategoryIDs = append(progress.CompletedSubCategoryIDs, subCategoryID)
		added = true
	}

	if next, ok := t.NextIncomplete(category, p); ok {
		progress.CurrentSubCategoryID = next.ID
	} else {
		progress.CurrentSubCategoryID = ""
	}
	return added, nil
}

// RecordSessionStats folds one finished attempt into the category totals.
func (t *ProgressTracker) RecordSessionStats(p *domain.Profile, categoryID string, xpEarned int, accuracy float64, today time.Time) {
	progress := t.progressFor(p, categoryID)
	progress.TotalXPEarned += xpEarned
	progress.LastPlayedDate = &today
	if accuracy > progress.BestAccuracy {
		progress.BestAccuracy = accuracy
	}
}

// IsUnlocked reports whether a lesson can be played. The first lesson is always
// open; any other needs its immediate predecessor completed.
func (t *ProgressTracker) IsUnlocked(category domain.Category, sub domain.SubCategory, p *domain.Profile) bool {
	if sub.DisplayOrder == 0 {
		return true
	}
	ordered := orderedSubCategories(category)
	for i := range ordered {
		if ordered[i].ID != sub.ID {
			continue
		}
		if i == 0 {
			return false
		}
		return p.Progress(category.ID).IsCompleted(ordered[i-1].ID)
	}
	return false
}

// CompletionPercentage is completed/total in [0, 1], 0 for an empty category.
func (t *ProgressTracker) CompletionPercentage(category domain.Category, p *domain.Profile) float64 {
	total := len(category.SubCategories)
	if total == 0 {
		return 0
	}
	return float64(completedIn(category, p)) / float64(total)
}

// IsCategoryCompleted requires every lesson done and at least one lesson.
func (t *ProgressTracker) IsCategoryCompleted(category domain.Category, p *domain.Profile) bool {
	total := len(category.SubCategories)
	return total > 0 && completedIn(category, p) == total
}

// Status buckets the category by how much of it is done.
func (t *ProgressTracker) Status(category domain.Category, p *domain.Profile) CompletionStatus {
	switch {
	case t.IsCategoryCompleted(category, p):
		return StatusCompleted
	case completedIn(category, p) > 0:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// NextIncomplete returns the first lesson by display order not yet completed.
func (t *ProgressTracker) NextIncomplete(category domain.Category, p *domain.Profile) (domain.SubCategory, bool) {
	progress := p.Progress(category.ID)
	for _, sub := range orderedSubCategories(category) {
		if !progress.IsCompleted(sub.ID) {
			return sub, true
		}
	}
	return domain.SubCategory{}, false
}

func (t *ProgressTracker) progressFor(p *domain.Profile, categoryID string) *domain.CategoryProgress {
	if p.CategoryProgress == nil {
		p.CategoryProgress = make(map[string]*domain.CategoryProgress)
	}
	progress, ok := p.CategoryProgress[categoryID]
	if !ok || progress == nil {
		progress = &domain.CategoryProgress{CategoryID: categoryID}
		p.CategoryProgress[categoryID] = progress
	}
	return progress
}

func orderedSubCategories(category domain.Category) []domain.SubCategory {
	subs := make([]domain.SubCategory, len(category.SubCategories))
	copy(subs, category.SubCategories)
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].DisplayOrder < subs[j].DisplayOrder })
	return subs
}

func hasSubCategory(category domain.Category, id string) bool {
	for _, sub := range category.SubCategories {
		if sub.ID == id {
			return true
		}
	}
	return false
}

// completedIn counts completed ids that still belong to the category.
func completedIn(category domain.Category, p *domain.Profile) int {
	progress := p.Progress(category.ID)
	if progress == nil {
		return 0
	}
	n := 0
	for _, sub := range category.SubCategories {
		if progress.IsCompleted(sub.ID) {
			n++
		}
	}
	return n
}
