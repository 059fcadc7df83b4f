package progression_test

import (
	"fmt"
	"time"

	"movie-knowledge-service/internal/domain"
)

var day0 = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

func day(n int) time.Time {
	return day0.AddDate(0, 0, n)
}

func newProfile() *domain.Profile {
	return domain.NewProfile("p1", "Tester", day0)
}

// category builds a category with n lessons ordered 0..n-1, each with one easy challenge.
func category(id string, order, n int) domain.Category {
	c := domain.Category{ID: id, Title: "Cat " + id, DisplayOrder: order}
	for i := 0; i < n; i++ {
		c.SubCategories = append(c.SubCategories, domain.SubCategory{
			ID:           fmt.Sprintf("%s-%d", id, i),
			Title:        fmt.Sprintf("Lesson %d", i),
			DisplayOrder: i,
			Challenges: []domain.Challenge{
				{ID: fmt.Sprintf("%s-%d-q", id, i), CorrectAnswer: "yes", Difficulty: domain.DifficultyEasy},
			},
		})
	}
	return c
}
