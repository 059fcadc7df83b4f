package progression

import (
	"time"

	"movie-knowledge-service/internal/domain"
)

// Focus is the lesson recommended for today.
type Focus struct {
	Category     domain.Category
	SubCategory  domain.SubCategory
	IsComingSoon bool
	IsCompleted  bool
}

// DailyFocusSelector picks one lesson per day and keeps it for the rest of that day.
type DailyFocusSelector struct {
	cal      Calendar
	progress *ProgressTracker
}

func NewDailyFocusSelector(cal Calendar, progress *ProgressTracker) *DailyFocusSelector {
	return &DailyFocusSelector{cal: cal, progress: progress}
}

// TodayFocus returns today's focus, or nil when nothing is left to recommend.
// A cached selection for today is returned as long as its ids still resolve;
// otherwise a fresh one is stored on the profile and fresh is true.
func (s *DailyFocusSelector) TodayFocus(p *domain.Profile, catalog *domain.Catalog, today time.Time) (focus *Focus, fresh bool) {
	if cached, ok := s.cached(p, catalog, today); ok {
		return cached, false
	}

	category, sub, ok := s.compute(p, catalog)
	if !ok {
		return nil, false
	}
	p.DailyFocus = &domain.DailyFocus{
		Date:          s.cal.StartOfDay(today),
		CategoryID:    category.ID,
		SubCategoryID: sub.ID,
		Completed:     false,
	}
	return &Focus{
		Category:     category,
		SubCategory:  sub,
		IsComingSoon: len(sub.Challenges) == 0,
	}, true
}

// MarkCompleted flags today's cached focus as done when it is subCategoryID.
func (s *DailyFocusSelector) MarkCompleted(p *domain.Profile, subCategoryID string, today time.Time) bool {
	f := p.DailyFocus
	if f == nil || f.SubCategoryID != subCategoryID || !s.cal.SameDay(f.Date, today) {
		return false
	}
	f.Completed = true
	return true
}

func (s *DailyFocusSelector) cached(p *domain.Profile, catalog *domain.Catalog, today time.Time) (*Focus, bool) {
	f := p.DailyFocus
	if f == nil || !s.cal.SameDay(f.Date, today) {
		return nil, false
	}
	category, ok := catalog.Category(f.CategoryID)
	if !ok {
		return nil, false
	}
	_, sub, ok := catalog.SubCategory(f.SubCategoryID)
	if !ok {
		return nil, false
	}
	return &Focus{
		Category:     category,
		SubCategory:  sub,
		IsComingSoon: len(sub.Challenges) == 0,
		IsCompleted:  f.Completed,
	}, true
}

func (s *DailyFocusSelector) compute(p *domain.Profile, catalog *domain.Catalog) (domain.Category, domain.SubCategory, bool) {
	if p.LastPlayed != nil {
		if category, ok := catalog.Category(p.LastPlayed.CategoryID); ok {
			if sub, ok := s.progress.NextIncomplete(category, p); ok {
				return category, sub, true
			}
		}
	}
	for _, category := range catalog.Categories() {
		if sub, ok := s.progress.NextIncomplete(category, p); ok {
			return category, sub, true
		}
	}
	return domain.Category{}, domain.SubCategory{}, false
}
