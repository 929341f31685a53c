package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"roadtrip/internal/handler"
	"roadtrip/internal/metrics"
	"roadtrip/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler       *handler.TripHandler
	UserHandler       *handler.UserHandler
	BudgetHandler     *handler.BudgetHandler
	DirectionsHandler *handler.DirectionsHandler
	MapsHandler       *handler.MapsHandler
	Metrics           *metrics.Metrics
	RedisClient       *redis.Client
	NewRelicApp       *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

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
		// User routes.
		users := v1.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
			users.GET("", deps.UserHandler.GetAll)
			users.GET("/:id/trips", deps.TripHandler.ListByUser)
		}

		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.Create)
			trips.GET("/:id", deps.TripHandler.Get)
			trips.PUT("/:id", deps.TripHandler.Update)
			trips.DELETE("/:id", deps.TripHandler.Delete)
		}

		// Stop routes.
		v1.DELETE("/stops/:id", deps.TripHandler.DeleteStop)

		// Budget routes.
		budget := v1.Group("/budget")
		{
			budget.GET("/default-prices", deps.BudgetHandler.DefaultPrices)
			budget.POST("/stop-price", deps.BudgetHandler.StopPrice)
			budget.POST("/calculate", deps.BudgetHandler.Calculate)
		}

		// Directions relay.
		v1.POST("/directions", deps.DirectionsHandler.Route)

		// Geocoding routes.
		maps := v1.Group("/maps")
		{
			maps.POST("/geocode", deps.MapsHandler.Geocode)
			maps.POST("/reverse-geocode", deps.MapsHandler.ReverseGeocode)
		}
	}

	return router
}
