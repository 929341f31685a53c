package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the tables the repositories need if they do not exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createUsersQuery := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`

	createTripsQuery := `
	CREATE TABLE IF NOT EXISTS trips (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`

	createStopsQuery := `
	CREATE TABLE IF NOT EXISTS stops (
		id TEXT PRIMARY KEY,
		trip_id TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		stop_type TEXT NOT NULL DEFAULT 'MISC',
		cost DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (cost >= 0),
		time_minutes INTEGER NOT NULL DEFAULT 0 CHECK (time_minutes >= 0),
		position INTEGER NOT NULL
	);
	`

	createIndexQueries := []string{
		`CREATE INDEX IF NOT EXISTS idx_trips_user_created ON trips(user_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_stops_trip_position ON stops(trip_id, position);`,
	}

	statements := append([]string{createUsersQuery, createTripsQuery, createStopsQuery}, createIndexQueries...)
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit: %w", err)
	}
	return nil
}
