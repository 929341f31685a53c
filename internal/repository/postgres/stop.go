package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"roadtrip/internal/domain"
	"roadtrip/internal/repository"
)

// StopRepository is a PostgreSQL implementation of repository.StopRepository.
type StopRepository struct {
	q Querier
}

// NewStopRepository creates a new PostgreSQL stop repository.
func NewStopRepository(db *sql.DB) *StopRepository {
	return &StopRepository{q: db}
}

// NewStopRepositoryWithTx creates a stop repository using a transaction.
func NewStopRepositoryWithTx(tx *sql.Tx) *StopRepository {
	return &StopRepository{q: tx}
}

// Create persists a new stop.
func (r *StopRepository) Create(ctx context.Context, stop *domain.Stop) error {
	query := `
		INSERT INTO stops (id, trip_id, latitude, longitude, stop_type, cost, time_minutes, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		stop.ID,
		stop.TripID,
		stop.Position.Lat,
		stop.Position.Lng,
		stop.Type,
		stop.Cost,
		stop.TimeMinutes,
		stop.Order,
	)
	return err
}

// Update overwrites a stop of the same trip.
func (r *StopRepository) Update(ctx context.Context, stop *domain.Stop) error {
	query := `
		UPDATE stops
		SET latitude = $1, longitude = $2, stop_type = $3, cost = $4, time_minutes = $5, position = $6
		WHERE id = $7 AND trip_id = $8
	`

	result, err := r.q.ExecContext(ctx, query,
		stop.Position.Lat,
		stop.Position.Lng,
		stop.Type,
		stop.Cost,
		stop.TimeMinutes,
		stop.Order,
		stop.ID,
		stop.TripID,
	)
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

// ListByTrip retrieves a trip's stops in visit order.
func (r *StopRepository) ListByTrip(ctx context.Context, tripID string) ([]domain.Stop, error) {
	query := `
		SELECT id, trip_id, latitude, longitude, stop_type, cost, time_minutes, position
		FROM stops WHERE trip_id = $1
		ORDER BY position
	`

	rows, err := r.q.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stops []domain.Stop
	for rows.Next() {
		var stop domain.Stop
		if err := rows.Scan(
			&stop.ID,
			&stop.TripID,
			&stop.Position.Lat,
			&stop.Position.Lng,
			&stop.Type,
			&stop.Cost,
			&stop.TimeMinutes,
			&stop.Order,
		); err != nil {
			return nil, err
		}
		stops = append(stops, stop)
	}

	return stops, rows.Err()
}

// DeleteByTripExcept removes every stop of the trip whose ID is not in keep.
func (r *StopRepository) DeleteByTripExcept(ctx context.Context, tripID string, keep []string) error {
	query := `DELETE FROM stops WHERE trip_id = $1 AND NOT (id = ANY($2))`
	_, err := r.q.ExecContext(ctx, query, tripID, pq.Array(keep))
	return err
}

// Delete removes a single stop and returns the ID of its trip.
func (r *StopRepository) Delete(ctx context.Context, id string) (string, error) {
	var tripID string
	err := r.q.QueryRowContext(ctx, `DELETE FROM stops WHERE id = $1 RETURNING trip_id`, id).Scan(&tripID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", err
	}
	return tripID, nil
}

// Ensure StopRepository implements repository.StopRepository.
var _ repository.StopRepository = (*StopRepository)(nil)
