package services

import (
	"context"

	"github.com/climate-mapper/app/models"
)

// CacheStats summarizes cache effectiveness.
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ICacheService caches finished map results keyed by the input
// fingerprint. Only GeoJSON-mode results are cached; image paths go
// stale under the output directory's eviction policy.
type ICacheService interface {
	Get(ctx context.Context, key string) (*models.MapResult, bool, error)
	Set(ctx context.Context, key string, result *models.MapResult) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	GetStats(ctx context.Context) (*CacheStats, error)
	Close() error
}
