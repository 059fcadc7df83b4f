package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"movie-knowledge-service/internal/app"
	"movie-knowledge-service/internal/config"
	"movie-knowledge-service/internal/domain"
	"movie-knowledge-service/internal/infra/memory"
	"movie-knowledge-service/internal/infra/postgres"
	redisinfra "movie-knowledge-service/internal/infra/redis"
	"movie-knowledge-service/internal/infra/sqlite"
	"movie-knowledge-service/internal/progression"
	transport "movie-knowledge-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the progression server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	loader, err := contentLoader(cfg, pool)
	if err != nil {
		return err
	}

	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
	var content app.ContentRepository
	if redisClient != nil {
		content = redisinfra.NewContentRepository(redisClient, loader, contentTTL, logger)
	} else {
		content = memory.NewContentRepository(loader, contentTTL)
	}

	var learners app.LearnerRepository
	if redisClient != nil {
		learners = redisinfra.NewLearnerStore(redisClient, redisTTL)
	} else {
		learners = memory.NewLearnerStore()
	}

	var profiles app.ProfileRepository
	switch {
	case pool != nil:
		profiles = postgres.NewProfileStore(pool)
	case cfg.SQLite.Path != "":
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		profiles = store
	default:
		logger.Warn("no profile database configured, profiles are kept in memory")
		profiles = memory.NewProfileStore()
	}

	service := app.NewLearnerService(learners, profiles, content, progression.NewContext(cfg.Location(), logger), app.Options{
		Lives:   cfg.Progression.Lives,
		Shuffle: cfg.Progression.Shuffle,
		Commit: app.CommitPolicy{
			MaxAttempts:     cfg.Commit.MaxAttempts,
			InitialInterval: config.TTLDuration(cfg.Commit.InitialInterval, 0),
		},
		Logger:   logger,
		Notifier: logNotifier{logger: logger},
	})

	mux := http.NewServeMux()
	transport.NewAPIHandler(service, logger).Register(mux)
	mux.HandleFunc("/ws", transport.NewWSHandler(service, logger).ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting movie knowledge service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func contentLoader(cfg config.Config, pool *pgxpool.Pool) (memory.ContentLoader, error) {
	switch {
	case pool != nil:
		return postgres.NewContentLoader(pool), nil
	case cfg.Content.File != "":
		return memory.NewFileContentLoader(cfg.Content.File), nil
	default:
		categories, err := memory.SampleContent()
		if err != nil {
			return nil, err
		}
		return memory.NewStaticContentLoader(categories), nil
	}
}

// logNotifier stands in for the client-side feedback sink; it only logs.
type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) CorrectAnswer(profileID string) {
	n.logger.Debug("correct answer", "profile_id", profileID)
}

func (n logNotifier) WrongAnswer(profileID string) {
	n.logger.Debug("wrong answer", "profile_id", profileID)
}

func (n logNotifier) BadgeEarned(profileID string, badge domain.Badge) {
	n.logger.Info("badge notification", "profile_id", profileID, "badge", badge.Title)
}

func (n logNotifier) LevelUp(profileID string, level int) {
	n.logger.Info("level up notification", "profile_id", profileID, "level", level)
}
