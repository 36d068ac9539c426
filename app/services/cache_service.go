package services

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/climate-mapper/app/models"
)

// CacheService is the in-memory L1 result cache, an LRU bounded by
// entry count. Safe for concurrent use.
type CacheService struct {
	cache *lru.Cache[string, *models.MapResult]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCacheService builds an LRU cache holding up to size results.
func NewCacheService(size int) (*CacheService, error) {
	c, err := lru.New[string, *models.MapResult](size)
	if err != nil {
		return nil, err
	}
	return &CacheService{cache: c}, nil
}

func (cs *CacheService) Get(ctx context.Context, key string) (*models.MapResult, bool, error) {
	if result, ok := cs.cache.Get(key); ok {
		cs.hits.Add(1)
		return result, true, nil
	}
	cs.misses.Add(1)
	return nil, false, nil
}

func (cs *CacheService) Set(ctx context.Context, key string, result *models.MapResult) error {
	cs.cache.Add(key, result)
	return nil
}

func (cs *CacheService) Delete(ctx context.Context, key string) error {
	cs.cache.Remove(key)
	return nil
}

func (cs *CacheService) Clear(ctx context.Context) error {
	cs.cache.Purge()
	return nil
}

func (cs *CacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits, misses := cs.hits.Load(), cs.misses.Load()
	stats := &CacheStats{
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: int64(cs.cache.Len()),
	}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats, nil
}

func (cs *CacheService) Close() error { return nil }
