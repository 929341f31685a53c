package directions

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/time/rate"

	"roadtrip/internal/domain"
)

// Provider is an external directions backend.
type Provider interface {
	// Directions routes through req.Coordinates in order.
	// Implementations return *Failure for every routing problem.
	Directions(ctx context.Context, req Request) (*Route, error)
}

// Cache stores routes by CacheKey. A miss is (nil, nil).
type Cache interface {
	GetRoute(ctx context.Context, key string) (*Route, error)
	SetRoute(ctx context.Context, key string, route *Route) error
}

// Observer receives one call per FetchRoute outcome.
type Observer interface {
	ObserveRoute(outcome Kind, cached bool)
}

// KindOK is the outcome reported to observers for successful fetches.
const KindOK Kind = "OK"

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Mode          string
	RatePerSecond float64 // 0 disables client-side limiting
	Burst         int
	Cache         Cache
	Observer      Observer
}

// Service wraps a Provider and maps everything it returns into the Failure taxonomy.
// It keeps no per-trip state and never retries.
type Service struct {
	provider Provider
	mode     string
	limiter  *rate.Limiter
	cache    Cache
	observer Observer
}

// NewService creates a new Service.
func NewService(provider Provider, cfg ServiceConfig) *Service {
	s := &Service{
		provider: provider,
		mode:     cfg.Mode,
		cache:    cfg.Cache,
		observer: cfg.Observer,
	}
	if s.mode == "" {
		s.mode = DefaultMode
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return s
}

// FetchRoute returns the route through coords in the given order.
func (s *Service) FetchRoute(ctx context.Context, coords []domain.Coordinates) (*Route, error) {
	if len(coords) < 2 {
		s.observe(KindNotEnoughStops, false)
		return nil, &Failure{Kind: KindNotEnoughStops, Message: fmt.Sprintf("got %d", len(coords))}
	}

	for i, c := range coords {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("stop %d: %w", i, err)
		}
	}

	req := Request{Coordinates: coords, Mode: s.mode}
	key := CacheKey(req)

	if s.cache != nil {
		cached, err := s.cache.GetRoute(ctx, key)
		if err != nil {
			log.Printf("route cache read failed: %v", err)
		} else if cached != nil {
			s.observe(KindOK, true)
			return cached, nil
		}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			s.observe(KindNetwork, false)
			return nil, &Failure{Kind: KindNetwork, Message: "rate limit wait", Err: err}
		}
	}

	route, err := s.provider.Directions(ctx, req)
	if err != nil {
		var f *Failure
		if !errors.As(err, &f) {
			f = &Failure{Kind: KindNetwork, Err: err}
		}
		s.observe(f.Kind, false)
		return nil, f
	}

	if s.cache != nil {
		if err := s.cache.SetRoute(ctx, key, route); err != nil {
			log.Printf("route cache write failed: %v", err)
		}
	}

	s.observe(KindOK, false)
	return route, nil
}

func (s *Service) observe(outcome Kind, cached bool) {
	if s.observer != nil {
		s.observer.ObserveRoute(outcome, cached)
	}
}
