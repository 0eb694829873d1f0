package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"ridepool/internal/handler"
	"ridepool/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler      *handler.RideHandler
	PassengerHandler *handler.PassengerHandler
	RedisClient      *redis.Client
	NewRelicApp      *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		rides := v1.Group("/rides")
		{
			rides.POST("/request", deps.RideHandler.RequestRide)
			rides.GET("", deps.RideHandler.GetRecent)
			rides.GET("/pricing/surge", deps.RideHandler.GetSurge)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.DELETE("/passengers/:id", deps.RideHandler.CancelPassenger)
		}

		passengers := v1.Group("/passengers")
		{
			passengers.GET("", deps.PassengerHandler.GetHistory)
			passengers.GET("/:id", deps.PassengerHandler.GetPassenger)
		}
	}

	return router
}
