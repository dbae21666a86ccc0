package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bookmaker/database"
	"bookmaker/models"
)

// BetRepository implements the BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

// Create creates a new bet record
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (user_id, event_id, win_team_id, amount, odds, bet_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		bet.UserID,
		bet.EventID,
		bet.WinTeamID,
		bet.Amount,
		bet.Odds,
		bet.BetDate,
	).Scan(&bet.ID)

	if err != nil {
		return fmt.Errorf("failed to create bet for user %d: %w", bet.UserID, err)
	}

	return nil
}

// GetByID retrieves a bet by its ID
func (r *BetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	query := `
		SELECT id, user_id, event_id, win_team_id, amount, odds, bet_date
		FROM bets
		WHERE id = $1
	`

	var bet models.Bet
	err := r.q.QueryRow(ctx, query, id).Scan(
		&bet.ID,
		&bet.UserID,
		&bet.EventID,
		&bet.WinTeamID,
		&bet.Amount,
		&bet.Odds,
		&bet.BetDate,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %d: %w", id, err)
	}

	return &bet, nil
}

// GetByEvent returns every bet referencing an event
func (r *BetRepository) GetByEvent(ctx context.Context, eventID int64) ([]*models.Bet, error) {
	query := `
		SELECT id, user_id, event_id, win_team_id, amount, odds, bet_date
		FROM bets
		WHERE event_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for event %d: %w", eventID, err)
	}
	defer rows.Close()

	return scanBets(rows)
}

// GetByUser returns bets for a specific user, newest first
func (r *BetRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error) {
	query := `
		SELECT id, user_id, event_id, win_team_id, amount, odds, bet_date
		FROM bets
		WHERE user_id = $1
		ORDER BY bet_date DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for user %d: %w", userID, err)
	}
	defer rows.Close()

	return scanBets(rows)
}

// Delete removes a bet
func (r *BetRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM bets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bet %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("bet %d: %w", id, models.ErrBetNotFound)
	}

	return nil
}

func scanBets(rows pgx.Rows) ([]*models.Bet, error) {
	var bets []*models.Bet
	for rows.Next() {
		var bet models.Bet
		err := rows.Scan(
			&bet.ID,
			&bet.UserID,
			&bet.EventID,
			&bet.WinTeamID,
			&bet.Amount,
			&bet.Odds,
			&bet.BetDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}

	return bets, nil
}
