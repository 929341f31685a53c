// Package metrics provides Prometheus metrics for the roadtrip backend.
package metrics

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"roadtrip/internal/directions"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Directions metrics
	DirectionsRequestsTotal *prometheus.CounterVec
	RouteCacheHitsTotal     prometheus.Counter

	// Database metrics
	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge

	logger *slog.Logger

	collectorStarted atomic.Bool
	cancel           context.CancelFunc
	wg               sync.WaitGroup
}

// New creates and registers all application metrics with a new registry.
func New(logger *slog.Logger) *Metrics {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roadtrip_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roadtrip_http_request_duration_seconds",
				Help:    "HTTP request latency distribution",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		DirectionsRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roadtrip_directions_requests_total",
				Help: "Directions lookups by outcome",
			},
			[]string{"outcome"},
		),
		RouteCacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roadtrip_route_cache_hits_total",
			Help: "Directions lookups served from the route cache",
		}),
		DBConnectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roadtrip_db_connections_open",
			Help: "Number of open database connections",
		}),
		DBConnectionsInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roadtrip_db_connections_in_use",
			Help: "Number of database connections currently in use",
		}),
		logger: logger,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DirectionsRequestsTotal,
		m.RouteCacheHitsTotal,
		m.DBConnectionsOpen,
		m.DBConnectionsInUse,
	)

	return m
}

// ObserveRoute records one directions lookup outcome.
func (m *Metrics) ObserveRoute(outcome directions.Kind, cached bool) {
	m.DirectionsRequestsTotal.WithLabelValues(string(outcome)).Inc()
	if cached {
		m.RouteCacheHitsTotal.Inc()
	}
}

// Middleware records request counts and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// Route template keeps label cardinality bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// StartDBStatsCollector periodically copies connection pool statistics into
// the database gauges. Calls after the first are no-ops. Stop it with Shutdown.
func (m *Metrics) StartDBStatsCollector(db *sql.DB, interval time.Duration) {
	if db == nil {
		return
	}

	if !m.collectorStarted.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.wg.Add(1)
	m.cancel = cancel

	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("panic in DB stats collector", "error", r)
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				stats := db.Stats()
				m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
				m.DBConnectionsInUse.Set(float64(stats.InUse))
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Shutdown stops the DB stats collector and waits for it to exit.
func (m *Metrics) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

var _ directions.Observer = (*Metrics)(nil)
