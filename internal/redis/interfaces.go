package redis

import (
	"context"
	"time"

	"roadtrip/internal/directions"
)

// TripCacheInterface defines the interface for trip caching.
type TripCacheInterface interface {
	GetTrip(ctx context.Context, tripID string) (*CachedTrip, error)
	SetTrip(ctx context.Context, trip *CachedTrip) error
	InvalidateTrip(ctx context.Context, tripID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error)
	ReleaseTripLock(ctx context.Context, tripID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ TripCacheInterface = (*CacheStore)(nil)
	_ directions.Cache   = (*CacheStore)(nil)
	_ LockStoreInterface = (*LockStore)(nil)
)
