package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"roadtrip/internal/directions"
)

// CacheStore handles route and trip caching in Redis.
type CacheStore struct {
	client   *redis.Client
	routeTTL time.Duration
}

// NewCacheStore creates a new CacheStore. A zero routeTTL uses RouteCacheTTL.
func NewCacheStore(client *redis.Client, routeTTL time.Duration) *CacheStore {
	if routeTTL <= 0 {
		routeTTL = RouteCacheTTL
	}
	return &CacheStore{client: client, routeTTL: routeTTL}
}

// Cache TTL constants
const (
	RouteCacheTTL = 24 * time.Hour   // Road network rarely changes
	TripCacheTTL  = 60 * time.Second // Trips change on every save
)

// Key prefixes
const (
	routeCachePrefix = "cache:route:"
	tripCachePrefix  = "cache:trip:"
)

// CachedLeg is one leg of a cached route.
type CachedLeg struct {
	DistanceMeters  int `json:"distance_meters"`
	DurationSeconds int `json:"duration_seconds"`
}

// CachedRoute represents a cached directions result.
type CachedRoute struct {
	EncodedPath     string      `json:"encoded_path"`
	DurationSeconds int         `json:"duration_seconds"`
	DistanceMeters  int         `json:"distance_meters"`
	Legs            []CachedLeg `json:"legs"`
}

// CachedStop is one stop of a cached trip.
type CachedStop struct {
	ID          string  `json:"id"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Type        string  `json:"type"`
	Cost        float64 `json:"cost"`
	TimeMinutes int     `json:"time_minutes"`
}

// CachedTrip represents a cached trip with its stops.
type CachedTrip struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	ImageURL    string       `json:"image_url"`
	Stops       []CachedStop `json:"stops"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// GetRoute retrieves a route from cache.
func (s *CacheStore) GetRoute(ctx context.Context, key string) (*directions.Route, error) {
	data, err := s.client.Get(ctx, routeCachePrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached CachedRoute
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	route := &directions.Route{
		EncodedPath:     cached.EncodedPath,
		DurationSeconds: cached.DurationSeconds,
		DistanceMeters:  cached.DistanceMeters,
		Legs:            make([]directions.Leg, 0, len(cached.Legs)),
	}
	for _, l := range cached.Legs {
		route.Legs = append(route.Legs, directions.Leg{DistanceMeters: l.DistanceMeters, DurationSeconds: l.DurationSeconds})
	}
	return route, nil
}

// SetRoute stores a route in cache.
func (s *CacheStore) SetRoute(ctx context.Context, key string, route *directions.Route) error {
	cached := CachedRoute{
		EncodedPath:     route.EncodedPath,
		DurationSeconds: route.DurationSeconds,
		DistanceMeters:  route.DistanceMeters,
		Legs:            make([]CachedLeg, 0, len(route.Legs)),
	}
	for _, l := range route.Legs {
		cached.Legs = append(cached.Legs, CachedLeg{DistanceMeters: l.DistanceMeters, DurationSeconds: l.DurationSeconds})
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, routeCachePrefix+key, data, s.routeTTL).Err()
}

// GetTrip retrieves a trip from cache.
func (s *CacheStore) GetTrip(ctx context.Context, tripID string) (*CachedTrip, error) {
	key := tripCachePrefix + tripID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var trip CachedTrip
	if err := json.Unmarshal(data, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// SetTrip stores a trip in cache.
func (s *CacheStore) SetTrip(ctx context.Context, trip *CachedTrip) error {
	key := tripCachePrefix + trip.ID
	data, err := json.Marshal(trip)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, TripCacheTTL).Err()
}

// InvalidateTrip removes a trip from cache.
func (s *CacheStore) InvalidateTrip(ctx context.Context, tripID string) error {
	key := tripCachePrefix + tripID
	return s.client.Del(ctx, key).Err()
}
