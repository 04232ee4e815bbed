package app

import (
	"context"
	"fmt"
	"time"

	"luxe_brochure/internal/domain"
)

func brochureKey(id int64) string    { return fmt.Sprintf("brochure:%d", id) }
func recentListKey(limit int) string { return fmt.Sprintf("brochures:recent:%d", limit) }

// cachedListLimits are the only list sizes that get a cache entry. The
// set must stay in sync with invalidateRecentLists: a limit cached here
// but not cleared there would serve stale lists for the full TTL. Other
// limits read through to storage.
var cachedListLimits = []int{20, 50, 100}

func listCacheable(limit int) bool {
	for _, l := range cachedListLimits {
		if l == limit {
			return true
		}
	}
	return false
}

func invalidateRecentLists(ctx context.Context, c domain.Cache) {
	for _, limit := range cachedListLimits {
		_ = c.Del(ctx, recentListKey(limit))
	}
}

type QueryService struct {
	repo     domain.BrochureRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.BrochureRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetBrochure(ctx context.Context, id int64) (*domain.Brochure, error) {
	key := brochureKey(id)
	var b domain.Brochure
	if ok, _ := s.cache.Get(ctx, key, &b); ok {
		return &b, nil
	}
	got, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, got, int(s.cacheTTL.Seconds()))
	return got, nil
}

func (s *QueryService) ListBrochures(ctx context.Context, limit int) ([]domain.Brochure, error) {
	if !listCacheable(limit) {
		return s.repo.List(ctx, limit)
	}

	key := recentListKey(limit)
	var out []domain.Brochure
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	items, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	// copy before caching so callers can't mutate the cached value
	cached := make([]domain.Brochure, len(items))
	copy(cached, items)
	_ = s.cache.Set(ctx, key, cached, int(s.cacheTTL.Seconds()))
	return items, nil
}
