package postgres

import (
	"context"
	"database/sql"
	"errors"

	"roadtrip/internal/domain"
	"roadtrip/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (id, user_id, name, description, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	return r.q.QueryRowContext(ctx, query,
		trip.ID,
		trip.UserID,
		trip.Name,
		trip.Description,
		trip.ImageURL,
	).Scan(&trip.CreatedAt, &trip.UpdatedAt)
}

// GetByID retrieves a trip by ID, without stops.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `
		SELECT id, user_id, name, description, image_url, created_at, updated_at
		FROM trips WHERE id = $1
	`

	var trip domain.Trip
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&trip.ID,
		&trip.UserID,
		&trip.Name,
		&trip.Description,
		&trip.ImageURL,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &trip, nil
}

// ListByUser retrieves summaries of a user's trips, newest first.
func (r *TripRepository) ListByUser(ctx context.Context, userID string) ([]*domain.TripSummary, error) {
	query := `
		SELECT t.id, t.user_id, t.name, t.description, t.image_url, t.created_at, COUNT(s.id)
		FROM trips t
		LEFT JOIN stops s ON s.trip_id = t.id
		WHERE t.user_id = $1
		GROUP BY t.id
		ORDER BY t.created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.TripSummary
	for rows.Next() {
		var trip domain.TripSummary
		if err := rows.Scan(
			&trip.ID,
			&trip.UserID,
			&trip.Name,
			&trip.Description,
			&trip.ImageURL,
			&trip.CreatedAt,
			&trip.StopCount,
		); err != nil {
			return nil, err
		}
		trips = append(trips, &trip)
	}

	return trips, rows.Err()
}

// Update updates the trip's name, description and image.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET name = $1, description = $2, image_url = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		trip.Name,
		trip.Description,
		trip.ImageURL,
		trip.ID,
	).Scan(&trip.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

// Delete removes a trip and, by cascade, its stops.
func (r *TripRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
