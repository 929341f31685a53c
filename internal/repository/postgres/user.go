package postgres

import (
	"context"
	"database/sql"

	"roadtrip/internal/domain"
	"roadtrip/internal/repository"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create adds a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, email) VALUES ($1, $2) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Email).Scan(&user.CreatedAt)
	return mapError(err)
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, email, created_at FROM users WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var user domain.User
	err := row.Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, created_at FROM users WHERE email = $1`
	row := r.db.QueryRowContext(ctx, query, email)

	var user domain.User
	err := row.Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// GetAll retrieves all users with their trip counts.
func (r *UserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT u.id, u.email, u.created_at, COUNT(t.id)
		FROM users u
		LEFT JOIN trips t ON t.user_id = u.id
		GROUP BY u.id
		ORDER BY u.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Email, &user.CreatedAt, &user.TripCount); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// Ensure UserRepository implements repository.UserRepository.
var _ repository.UserRepository = (*UserRepository)(nil)
