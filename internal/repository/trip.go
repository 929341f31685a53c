package repository

import (
	"context"

	"roadtrip/internal/domain"
)

// TripRepository defines the persistence operations for trips.
// Stops are handled by StopRepository.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID, without stops.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// ListByUser retrieves summaries of a user's trips, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.TripSummary, error)

	// Update updates the trip's name, description and image.
	Update(ctx context.Context, trip *domain.Trip) error

	// Delete removes a trip and, by cascade, its stops.
	Delete(ctx context.Context, id string) error
}
