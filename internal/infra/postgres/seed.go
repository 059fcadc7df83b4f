package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"movie-knowledge-service/internal/domain"
)

// CategoryRow is the bun model of the categories table.
type CategoryRow struct {
	bun.BaseModel `bun:"table:categories"`

	ID           string          `bun:"id,pk"`
	DisplayOrder int             `bun:"display_order,notnull"`
	Data         domain.Category `bun:"data,type:jsonb,notnull"`
}

// SeedCategories upserts the given categories. Existing rows are replaced,
// rows for categories not in the list are kept.
func SeedCategories(ctx context.Context, db *bun.DB, categories []domain.Category) (int, error) {
	if len(categories) == 0 {
		return 0, nil
	}
	rows := make([]CategoryRow, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, CategoryRow{ID: c.ID, DisplayOrder: c.DisplayOrder, Data: c})
	}

	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("display_order = EXCLUDED.display_order").
		Set("data = EXCLUDED.data").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed categories: %w", err)
	}
	return len(rows), nil
}
