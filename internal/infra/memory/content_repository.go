package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"movie-knowledge-service/internal/domain"
)

// ContentLoader fetches the lesson content from a backing store (Postgres, YAML file, ...).
type ContentLoader interface {
	LoadCatalog(ctx context.Context) ([]domain.Category, error)
}

// ContentRepository caches the catalog with TTL to avoid repeated loads.
type ContentRepository struct {
	loader ContentLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	catalog   *domain.Catalog
	expiresAt time.Time
}

func NewContentRepository(loader ContentLoader, ttl time.Duration) *ContentRepository {
	return &ContentRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ContentRepository) GetCatalog(ctx context.Context) (*domain.Catalog, error) {
	if catalog, ok := r.cached(r.clock()); ok {
		return catalog, nil
	}

	result, err, _ := r.sf.Do("catalog", func() (interface{}, error) {
		now := r.clock()
		if catalog, ok := r.cached(now); ok {
			return catalog, nil
		}

		categories, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		if err := domain.ValidateCategories(categories); err != nil {
			return nil, err
		}
		catalog := domain.NewCatalog(categories)

		r.mu.Lock()
		r.catalog = catalog
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return catalog, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Catalog), nil
}

// Invalidate forces the next GetCatalog to reload.
func (r *ContentRepository) Invalidate() {
	r.mu.Lock()
	r.catalog = nil
	r.mu.Unlock()
}

func (r *ContentRepository) cached(now time.Time) (*domain.Catalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.catalog != nil && r.expiresAt.After(now) {
		return r.catalog, true
	}
	return nil, false
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
