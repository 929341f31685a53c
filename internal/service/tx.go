package service

import (
	"context"
	"database/sql"

	"roadtrip/internal/repository"
	"roadtrip/internal/repository/postgres"
)

// TripTx holds the repositories available inside a save transaction.
type TripTx struct {
	Trips repository.TripRepository
	Stops repository.StopRepository
}

// TxRunner runs fn inside a transaction, committing only if fn returns nil.
type TxRunner func(ctx context.Context, fn func(tx TripTx) error) error

// PostgresTx returns a TxRunner backed by database transactions on db.
func PostgresTx(db *sql.DB) TxRunner {
	return func(ctx context.Context, fn func(tx TripTx) error) (err error) {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}

		defer func() {
			if err != nil {
				_ = tx.Rollback()
			}
		}()

		// Create transaction-scoped repositories.
		err = fn(TripTx{
			Trips: postgres.NewTripRepositoryWithTx(tx),
			Stops: postgres.NewStopRepositoryWithTx(tx),
		})
		if err != nil {
			return err
		}

		return tx.Commit()
	}
}
