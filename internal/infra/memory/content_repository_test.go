package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"movie-knowledge-service/internal/domain"
)

func TestContentRepositoryCaches(t *testing.T) {
	loader := &countingLoader{ContentLoader: NewStaticContentLoader(sampleCategories())}
	repo := NewContentRepository(loader, time.Minute)

	catalog, err := repo.GetCatalog(context.Background())
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}
	if _, _, ok := catalog.SubCategory("trivia-1"); !ok {
		t.Fatalf("expected trivia-1 indexed")
	}

	if _, err := repo.GetCatalog(context.Background()); err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestContentRepositoryExpires(t *testing.T) {
	loader := &countingLoader{ContentLoader: NewStaticContentLoader(sampleCategories())}
	repo := NewContentRepository(loader, time.Minute)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	if _, err := repo.GetCatalog(context.Background()); err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetCatalog(context.Background()); err != nil {
		t.Fatalf("get catalog after ttl: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}

	repo.Invalidate()
	if _, err := repo.GetCatalog(context.Background()); err != nil {
		t.Fatalf("get catalog after invalidate: %v", err)
	}
	if loader.calls != 3 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestSampleContentParses(t *testing.T) {
	categories, err := SampleContent()
	if err != nil {
		t.Fatalf("sample content: %v", err)
	}
	catalog := domain.NewCatalog(categories)
	if len(catalog.Categories()) == 0 {
		t.Fatalf("expected categories")
	}
	cat, sub, ok := catalog.SubCategory("film-history-basics")
	if !ok {
		t.Fatalf("expected film-history-basics")
	}
	if cat.ID != "core-film-knowledge" || sub.DisplayOrder != 0 || len(sub.Challenges) == 0 {
		t.Fatalf("unexpected lesson %+v in %s", sub, cat.ID)
	}
	if sub.Challenges[0].QuestionType != domain.QuestionMultipleChoice {
		t.Fatalf("expected multiple choice, got %s", sub.Challenges[0].QuestionType)
	}
}

func TestParseContentRejectsDuplicateOrder(t *testing.T) {
	data := []byte(`
categories:
  - id: c1
    title: One
    subcategories:
      - {id: a, title: A, order: 0}
      - {id: b, title: B, order: 0}
`)
	if _, err := ParseContent(data); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestParseContentRejectsSharedCategoryTitle(t *testing.T) {
	data := []byte(`
categories:
  - id: c1
    title: Classics
    order: 0
    subcategories:
      - {id: a, title: A, order: 0}
  - id: c2
    title: Classics
    order: 1
    subcategories:
      - {id: b, title: B, order: 0}
`)
	if _, err := ParseContent(data); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestParseContentRequiresOrdersFromZero(t *testing.T) {
	cases := map[string]string{
		"starts at one": `
categories:
  - id: c1
    title: One
    subcategories:
      - {id: a, title: A, order: 1}
      - {id: b, title: B, order: 2}
`,
		"gap": `
categories:
  - id: c1
    title: One
    subcategories:
      - {id: a, title: A, order: 0}
      - {id: b, title: B, order: 2}
`,
	}
	for name, data := range cases {
		if _, err := ParseContent([]byte(data)); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", name, err)
		}
	}
}

func TestContentRepositoryRejectsInvalidContent(t *testing.T) {
	categories := append(sampleCategories(), domain.Category{
		ID:            "trivia-copy",
		Title:         "Trivia",
		SubCategories: []domain.SubCategory{{ID: "copy-0", Title: "Copy"}},
	})
	repo := NewContentRepository(NewStaticContentLoader(categories), time.Minute)

	if _, err := repo.GetCatalog(context.Background()); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestFileContentLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	data := []byte(`
categories:
  - id: c1
    title: One
    order: 0
    subcategories:
      - id: s1
        title: First
        order: 0
        challenges:
          - {id: q1, question: "Is it?", type: true_false, answer: "true", difficulty: hard}
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write content: %v", err)
	}

	categories, err := NewFileContentLoader(path).LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(categories) != 1 || len(categories[0].SubCategories) != 1 {
		t.Fatalf("unexpected categories %+v", categories)
	}
	if got := categories[0].SubCategories[0].Challenges[0].Reward(); got != 20 {
		t.Fatalf("expected hard reward 20, got %d", got)
	}
}

type countingLoader struct {
	ContentLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context) ([]domain.Category, error) {
	l.calls++
	return l.ContentLoader.LoadCatalog(ctx)
}

func sampleCategories() []domain.Category {
	return []domain.Category{
		{
			ID:    "trivia",
			Title: "Trivia",
			SubCategories: []domain.SubCategory{
				{
					ID:    "trivia-1",
					Title: "Basics",
					Challenges: []domain.Challenge{
						{ID: "q1", QuestionText: "Who directed Jaws?", QuestionType: domain.QuestionMultipleChoice, CorrectAnswer: "Steven Spielberg", WrongAnswers: []string{"George Lucas"}, Difficulty: domain.DifficultyEasy},
					},
				},
			},
		},
	}
}
