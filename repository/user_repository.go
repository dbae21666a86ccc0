package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"bookmaker/database"
	"bookmaker/models"
)

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, first_name, last_name, balance, active, created_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Balance,
		&user.Active,
		&user.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, first_name, last_name, balance, active, created_at
		FROM users
		WHERE username = $1
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Balance,
		&user.Active,
		&user.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}

	return &user, nil
}

// Create persists a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, first_name, last_name, balance, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Balance,
		user.Active,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user %q: %w", user.Username, err)
	}

	return nil
}

// AddBalance applies a signed delta to a user's balance atomically and
// returns the new balance
func (r *UserRepository) AddBalance(ctx context.Context, userID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE users
		SET balance = balance + $1
		WHERE id = $2
		RETURNING balance
	`

	var newBalance decimal.Decimal
	err := r.q.QueryRow(ctx, query, delta, userID).Scan(&newBalance)

	if err == pgx.ErrNoRows {
		return decimal.Zero, fmt.Errorf("user %d: %w", userID, models.ErrUserNotFound)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to update balance for user %d: %w", userID, err)
	}

	return newBalance, nil
}
