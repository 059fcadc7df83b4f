package cli

import (
	"context"
	"testing"

	"movie-knowledge-service/internal/config"
)

func TestContentLoaderFallsBackToSample(t *testing.T) {
	loader, err := contentLoader(config.Config{}, nil)
	if err != nil {
		t.Fatalf("content loader: %v", err)
	}
	categories, err := loader.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(categories) == 0 {
		t.Fatalf("expected sample categories")
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"start", "migrate", "seed"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Fatalf("expected %s subcommand, got %v (%v)", name, sub, err)
		}
	}
}

func TestMigrateRequiresPostgres(t *testing.T) {
	if _, err := openBunDB(config.Config{}); err == nil {
		t.Fatalf("expected error without postgres url")
	}
}
