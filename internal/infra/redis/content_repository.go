package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"movie-knowledge-service/internal/domain"
	"movie-knowledge-service/internal/infra/memory"
)

const catalogKey = "content:catalog"

// ContentRepository caches the catalog as a JSON document in Redis and falls
// back to a loader on cache miss. Cached as: SET content:catalog {json} EX ttl
type ContentRepository struct {
	client *redis.Client
	loader memory.ContentLoader
	ttl    time.Duration
	sf     singleflight.Group
	logger *slog.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewContentRepository(client *redis.Client, loader memory.ContentLoader, ttl time.Duration, logger *slog.Logger) *ContentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ContentRepository) GetCatalog(ctx context.Context) (*domain.Catalog, error) {
	if categories, ok := r.cached(ctx); ok {
		return domain.NewCatalog(categories), nil
	}

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if categories, ok := r.cached(ctx); ok {
			return domain.NewCatalog(categories), nil
		}

		categories, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		if err := domain.ValidateCategories(categories); err != nil {
			return nil, err
		}

		data, err := json.Marshal(categories)
		if err != nil {
			return nil, fmt.Errorf("encode catalog: %w", err)
		}
		// A cache write failure only costs a reload next time.
		if err := r.client.Set(ctx, catalogKey, data, r.ttlWithJitter()).Err(); err != nil {
			r.logger.Warn("cache catalog", "error", err)
		}
		return domain.NewCatalog(categories), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Catalog), nil
}

// Invalidate drops the cached catalog, e.g. after a seed.
func (r *ContentRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, catalogKey).Err()
}

func (r *ContentRepository) cached(ctx context.Context) ([]domain.Category, bool) {
	data, err := r.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("read cached catalog", "error", err)
		}
		return nil, false
	}
	var categories []domain.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		r.logger.Warn("decode cached catalog", "error", err)
		return nil, false
	}
	if err := domain.ValidateCategories(categories); err != nil {
		r.logger.Warn("cached catalog rejected", "error", err)
		return nil, false
	}
	return categories, true
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
