package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireTripLock attempts to acquire the save lock for the given trip.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:trip:%s", tripID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseTripLock releases the save lock for the given trip.
func (s *LockStore) ReleaseTripLock(ctx context.Context, tripID string) error {
	key := fmt.Sprintf("lock:trip:%s", tripID)

	return s.client.Del(ctx, key).Err()
}
