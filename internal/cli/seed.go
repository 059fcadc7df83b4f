package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"movie-knowledge-service/internal/config"
	"movie-knowledge-service/internal/domain"
	"movie-knowledge-service/internal/infra/memory"
	"movie-knowledge-service/internal/infra/postgres"
)

// NewSeedCmd loads lesson content into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert or update categories from a YAML content file (bundled sample if omitted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.Content.File
			}
			return runSeed(cmd.Context(), cfg, file, newLogger(cfg))
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML content file")
	return cmd
}

func runSeed(ctx context.Context, cfg config.Config, file string, logger *slog.Logger) error {
	categories, err := loadContent(ctx, file)
	if err != nil {
		return err
	}

	if err := runMigrations(ctx, cfg, logger); err != nil {
		return err
	}
	db, err := openBunDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := postgres.SeedCategories(ctx, db, categories)
	if err != nil {
		return err
	}
	logger.Info("content seeded", "categories", n, "source", contentSource(file))
	return nil
}

func loadContent(ctx context.Context, file string) ([]domain.Category, error) {
	if file == "" {
		return memory.SampleContent()
	}
	return memory.NewFileContentLoader(file).LoadCatalog(ctx)
}

func contentSource(file string) string {
	if file == "" {
		return "sample"
	}
	return file
}
