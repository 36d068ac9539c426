package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/climate-mapper/app/config"
	"github.com/climate-mapper/app/controllers"
	"github.com/climate-mapper/app/services"
	"github.com/climate-mapper/internal/extractor"
	"github.com/climate-mapper/internal/matcher"
	"github.com/climate-mapper/routes"
)

func main() {
	if err := config.Load("config/mapper.yaml"); err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starting Climate Mapper Service...")

	ext, err := extractor.New(extractor.Options{
		ZonePattern:   config.C.Extract.ZonePattern,
		MinNameLength: config.C.Extract.MinNameLength,
		ExcerptLength: config.C.Extract.ExcerptLength,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to build document extractor", zap.Error(err))
	}

	nameMatcher := matcher.New(config.C.Match.Threshold, logger)
	mapService := services.NewMapService(ext, nameMatcher, logger)

	cacheService, err := buildCache(logger)
	if err != nil {
		logger.Fatal("Failed to create cache service", zap.Error(err))
	}
	defer cacheService.Close()

	mapController := controllers.NewMapController(mapService, cacheService, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	routes.SetupAllRoutes(router, mapController, config.C.Upload.RateLimitQPS)

	srv := &http.Server{
		Addr:    ":" + getPort(),
		Handler: router,
	}
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

// buildCache prefers the hybrid LRU+Redis cache when a Redis URL is
// configured, falling back to the in-process LRU alone.
func buildCache(logger *zap.Logger) (services.ICacheService, error) {
	local, err := services.NewCacheService(config.C.Cache.Size)
	if err != nil {
		return nil, err
	}
	if config.C.Cache.RedisURL == "" {
		return local, nil
	}
	shared, err := services.NewRedisCacheService(config.C.Cache.RedisURL, config.CacheTTL(), logger)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory cache only", zap.Error(err))
		return local, nil
	}
	return services.NewHybridCacheService(local, shared, logger), nil
}

func getPort() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return port
}
