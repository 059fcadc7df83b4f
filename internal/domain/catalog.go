package domain

import (
	"fmt"
	"sort"
)

// Catalog is a read-only index over the lesson content.
type Catalog struct {
	categories []Category
	byCategory map[string]int
	bySub      map[string][2]int
}

// NewCatalog sorts categories and their subcategories by display order and indexes them.
func NewCatalog(categories []Category) *Catalog {
	sorted := make([]Category, len(categories))
	copy(sorted, categories)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].DisplayOrder < sorted[j].DisplayOrder })

	c := &Catalog{
		categories: sorted,
		byCategory: make(map[string]int, len(sorted)),
		bySub:      make(map[string][2]int),
	}
	for i := range sorted {
		subs := make([]SubCategory, len(sorted[i].SubCategories))
		copy(subs, sorted[i].SubCategories)
		sort.SliceStable(subs, func(a, b int) bool { return subs[a].DisplayOrder < subs[b].DisplayOrder })
		sorted[i].SubCategories = subs

		c.byCategory[sorted[i].ID] = i
		for j := range subs {
			c.bySub[subs[j].ID] = [2]int{i, j}
		}
	}
	return c
}

// Categories returns the categories in ascending display order.
func (c *Catalog) Categories() []Category {
	if c == nil {
		return nil
	}
	return c.categories
}

// Category looks a category up by id.
func (c *Catalog) Category(id string) (Category, bool) {
	if c == nil {
		return Category{}, false
	}
	i, ok := c.byCategory[id]
	if !ok {
		return Category{}, false
	}
	return c.categories[i], true
}

// SubCategory looks a subcategory up by id and returns its parent as well.
func (c *Catalog) SubCategory(id string) (Category, SubCategory, bool) {
	if c == nil {
		return Category{}, SubCategory{}, false
	}
	pos, ok := c.bySub[id]
	if !ok {
		return Category{}, SubCategory{}, false
	}
	cat := c.categories[pos[0]]
	return cat, cat.SubCategories[pos[1]], true
}

// ValidateCategories rejects content the progression rules cannot play:
// missing or repeated ids, categories sharing a title (their expert badges
// would collide) and lessons whose display orders are not exactly 0..n-1.
func ValidateCategories(categories []Category) error {
	categoryIDs := make(map[string]struct{}, len(categories))
	titles := make(map[string]string, len(categories))
	subIDs := make(map[string]string)
	for _, c := range categories {
		if c.ID == "" {
			return fmt.Errorf("%w: category %q has no id", ErrInvalidInput, c.Title)
		}
		if _, dup := categoryIDs[c.ID]; dup {
			return fmt.Errorf("%w: duplicate category id %s", ErrInvalidInput, c.ID)
		}
		categoryIDs[c.ID] = struct{}{}
		if other, dup := titles[c.Title]; dup {
			return fmt.Errorf("%w: categories %s and %s share title %q", ErrInvalidInput, other, c.ID, c.Title)
		}
		titles[c.Title] = c.ID

		orders := make(map[int]string, len(c.SubCategories))
		for _, sub := range c.SubCategories {
			if sub.ID == "" {
				return fmt.Errorf("%w: subcategory %q in %s has no id", ErrInvalidInput, sub.Title, c.ID)
			}
			if owner, dup := subIDs[sub.ID]; dup {
				return fmt.Errorf("%w: subcategory id %s used in %s and %s", ErrInvalidInput, sub.ID, owner, c.ID)
			}
			subIDs[sub.ID] = c.ID
			if other, dup := orders[sub.DisplayOrder]; dup {
				return fmt.Errorf("%w: %s and %s share display order %d", ErrInvalidInput, other, sub.ID, sub.DisplayOrder)
			}
			orders[sub.DisplayOrder] = sub.ID
		}
		for i := range c.SubCategories {
			if _, ok := orders[i]; !ok {
				return fmt.Errorf("%w: lessons in %s must be ordered 0..%d, missing %d", ErrInvalidInput, c.ID, len(c.SubCategories)-1, i)
			}
		}
	}
	return nil
}
