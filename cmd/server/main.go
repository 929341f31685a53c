package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"roadtrip/internal/app"
	"roadtrip/internal/config"
	"roadtrip/internal/directions"
	"roadtrip/internal/handler"
	"roadtrip/internal/metrics"
	"roadtrip/internal/places"
	internalRedis "roadtrip/internal/redis"
	"roadtrip/internal/repository/postgres"
	"roadtrip/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	if err := postgres.InitSchema(ctx, db); err != nil {
		log.Fatalf("failed to initialize schema: %v", err)
	}

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	m := metrics.New(slog.Default())
	m.StartDBStatsCollector(db, 15*time.Second)
	defer m.Shutdown()

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, m, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, m *metrics.Metrics, cfg *config.Config) *http.Server {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient, cfg.Directions.CacheTTL)

	// Initialize repositories.
	userRepo := postgres.NewUserRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	stopRepo := postgres.NewStopRepository(db)

	// Initialize services.
	tripService := service.NewTripService(service.PostgresTx(db), tripRepo, stopRepo, userRepo, lockStore, cacheStore)
	placesClient := newPlacesClient(cfg.Directions)
	var priceLevels service.PriceLevelSource
	var geocoder service.Geocoder
	if placesClient != nil {
		priceLevels = placesClient
		geocoder = placesClient
	}
	pricingService := service.NewPricingService(service.DefaultPricingConfig(), priceLevels)
	directionsService := service.NewDirectionsService(newRouteService(cfg.Directions, cacheStore, m))
	geocodingService := service.NewGeocodingService(geocoder)

	// Initialize handlers.
	userHandler := handler.NewUserHandler(userRepo)
	tripHandler := handler.NewTripHandler(tripService)
	budgetHandler := handler.NewBudgetHandler(pricingService)
	directionsHandler := handler.NewDirectionsHandler(directionsService)
	mapsHandler := handler.NewMapsHandler(geocodingService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		TripHandler:       tripHandler,
		UserHandler:       userHandler,
		BudgetHandler:     budgetHandler,
		DirectionsHandler: directionsHandler,
		MapsHandler:       mapsHandler,
		Metrics:           m,
		RedisClient:       redisClient,
		NewRelicApp:       nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// newRouteService returns nil when no provider key is configured, which
// makes the directions relay answer 503.
func newRouteService(cfg config.DirectionsConfig, cache directions.Cache, observer directions.Observer) *directions.Service {
	if cfg.APIKey == "" {
		log.Println("DIRECTIONS_API_KEY not set, directions relay disabled")
		return nil
	}

	provider, err := directions.NewGoogleProvider(cfg.APIKey, cfg.BaseURL, cfg.Timeout)
	if err != nil {
		log.Printf("failed to initialize directions provider: %v", err)
		return nil
	}

	return directions.NewService(provider, directions.ServiceConfig{
		Mode:          cfg.Mode,
		RatePerSecond: cfg.RatePerSecond,
		Burst:         cfg.Burst,
		Cache:         cache,
		Observer:      observer,
	})
}

// newPlacesClient returns nil when no maps key is configured, which prices
// stops from the category defaults and makes geocoding answer 503.
func newPlacesClient(cfg config.DirectionsConfig) *places.GoogleClient {
	if cfg.APIKey == "" {
		return nil
	}

	client, err := places.NewGoogleClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout, cfg.PlacesRadiusMeters)
	if err != nil {
		log.Printf("failed to initialize places client: %v", err)
		return nil
	}
	return client
}
