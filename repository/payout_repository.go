package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bookmaker/database"
	"bookmaker/models"
)

// PayoutRepository implements the PayoutRepository interface
type PayoutRepository struct {
	q queryable
}

// NewPayoutRepository creates a new payout repository
func NewPayoutRepository(db *database.DB) *PayoutRepository {
	return &PayoutRepository{q: db.Pool}
}

// newPayoutRepositoryWithTx creates a new payout repository with a transaction
func newPayoutRepositoryWithTx(tx queryable) *PayoutRepository {
	return &PayoutRepository{q: tx}
}

// Create creates a new payout record
func (r *PayoutRepository) Create(ctx context.Context, payout *models.Payout) error {
	query := `
		INSERT INTO payouts (user_id, bet_id, amount, payout_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		payout.UserID,
		payout.BetID,
		payout.Amount,
		payout.PayoutDate,
	).Scan(&payout.ID)

	if err != nil {
		return fmt.Errorf("failed to create payout for bet %d: %w", payout.BetID, err)
	}

	return nil
}

// GetByID retrieves a payout by its ID
func (r *PayoutRepository) GetByID(ctx context.Context, id int64) (*models.Payout, error) {
	query := `
		SELECT id, user_id, bet_id, amount, payout_date
		FROM payouts
		WHERE id = $1
	`

	var payout models.Payout
	err := r.q.QueryRow(ctx, query, id).Scan(
		&payout.ID,
		&payout.UserID,
		&payout.BetID,
		&payout.Amount,
		&payout.PayoutDate,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payout %d: %w", id, err)
	}

	return &payout, nil
}

// GetByUser returns payouts for a specific user, newest first
func (r *PayoutRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Payout, error) {
	query := `
		SELECT id, user_id, bet_id, amount, payout_date
		FROM payouts
		WHERE user_id = $1
		ORDER BY payout_date DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payouts for user %d: %w", userID, err)
	}
	defer rows.Close()

	var payouts []*models.Payout
	for rows.Next() {
		var payout models.Payout
		err := rows.Scan(
			&payout.ID,
			&payout.UserID,
			&payout.BetID,
			&payout.Amount,
			&payout.PayoutDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payout: %w", err)
		}
		payouts = append(payouts, &payout)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payouts: %w", err)
	}

	return payouts, nil
}
