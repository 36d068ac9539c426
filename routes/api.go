package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/climate-mapper/app/controllers"
)

// SetupAPIRoutes wires the versioned API surface.
func SetupAPIRoutes(router *gin.Engine, mapController *controllers.MapController, limitQPS int) {
	v1 := router.Group("/api/v1")
	v1.Use(RateLimit(limitQPS))
	{
		maps := v1.Group("/maps")
		{
			maps.POST("/generate", mapController.GenerateMap)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/stats", mapController.GetCacheStats)
			admin.POST("/cache/invalidate", mapController.InvalidateCache)
		}
	}
}

// SetupHealthRoutes registers liveness endpoints outside the rate
// limit so probes never starve.
func SetupHealthRoutes(router *gin.Engine, mapController *controllers.MapController) {
	router.GET("/health", mapController.HealthCheck)
	router.GET("/live", mapController.HealthCheck)
	router.GET("/ready", mapController.HealthCheck)
}

// SetupAllRoutes installs middleware and every route group.
func SetupAllRoutes(router *gin.Engine, mapController *controllers.MapController, limitQPS int) {
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	SetupHealthRoutes(router, mapController)
	SetupAPIRoutes(router, mapController, limitQPS)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}
