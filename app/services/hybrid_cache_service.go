package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/climate-mapper/app/models"
)

// HybridCacheService layers the in-process LRU (L1) over Redis (L2).
// Reads hit L1 first; L2 hits are promoted back into L1 off the
// request path.
type HybridCacheService struct {
	local  *CacheService
	shared *RedisCacheService
	logger *zap.Logger
}

func NewHybridCacheService(local *CacheService, shared *RedisCacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{local: local, shared: shared, logger: logger}
}

func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.MapResult, bool, error) {
	if result, found, err := hcs.local.Get(ctx, key); err == nil && found {
		return result, true, nil
	}

	result, found, err := hcs.shared.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hcs.local.Set(bgCtx, key, result); err != nil {
			hcs.logger.Warn("promote to local cache failed", zap.Error(err), zap.String("key", key))
		}
	}()
	return result, true, nil
}

func (hcs *HybridCacheService) Set(ctx context.Context, key string, result *models.MapResult) error {
	if err := hcs.local.Set(ctx, key, result); err != nil {
		hcs.logger.Warn("local cache set failed", zap.Error(err))
	}
	return hcs.shared.Set(ctx, key, result)
}

func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	if err := hcs.local.Delete(ctx, key); err != nil {
		return err
	}
	return hcs.shared.Delete(ctx, key)
}

func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	if err := hcs.local.Clear(ctx); err != nil {
		return err
	}
	return hcs.shared.Clear(ctx)
}

func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	local, err := hcs.local.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	shared, err := hcs.shared.GetStats(ctx)
	if err != nil {
		return local, nil
	}
	stats := &CacheStats{
		TotalHits:  local.TotalHits + shared.TotalHits,
		TotalMiss:  shared.TotalMiss,
		TotalItems: shared.TotalItems,
	}
	if total := stats.TotalHits + stats.TotalMiss; total > 0 {
		stats.HitRate = float64(stats.TotalHits) / float64(total)
	}
	return stats, nil
}

func (hcs *HybridCacheService) Close() error {
	hcs.local.Close()
	return hcs.shared.Close()
}
