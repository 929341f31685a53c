package repository

import (
	"context"

	"roadtrip/internal/domain"
)

// StopRepository defines the persistence operations for trip stops.
type StopRepository interface {
	// Create persists a new stop.
	Create(ctx context.Context, stop *domain.Stop) error

	// Update overwrites a stop of the same trip. Returns ErrNotFound if the
	// stop does not exist or belongs to another trip.
	Update(ctx context.Context, stop *domain.Stop) error

	// ListByTrip retrieves a trip's stops in visit order.
	ListByTrip(ctx context.Context, tripID string) ([]domain.Stop, error)

	// DeleteByTripExcept removes every stop of the trip whose ID is not in keep.
	DeleteByTripExcept(ctx context.Context, tripID string, keep []string) error

	// Delete removes a single stop and returns the ID of its trip.
	Delete(ctx context.Context, id string) (string, error)
}
