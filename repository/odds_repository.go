package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bookmaker/database"
	"bookmaker/models"
)

// OddsRepository implements the OddsRepository interface
type OddsRepository struct {
	q queryable
}

// NewOddsRepository creates a new odds repository
func NewOddsRepository(db *database.DB) *OddsRepository {
	return &OddsRepository{q: db.Pool}
}

// newOddsRepositoryWithTx creates a new odds repository with a transaction
func newOddsRepositoryWithTx(tx queryable) *OddsRepository {
	return &OddsRepository{q: tx}
}

// Create persists a new odds pair
func (r *OddsRepository) Create(ctx context.Context, pair *models.OddsPair) error {
	query := `
		INSERT INTO current_odds (event_id, first_win_odds, second_win_odds)
		VALUES ($1, $2, $3)
		RETURNING id, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		pair.EventID,
		pair.FirstOdds,
		pair.SecondOdds,
	).Scan(&pair.ID, &pair.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create odds for event %d: %w", pair.EventID, err)
	}

	return nil
}

// GetByEventID retrieves the odds pair for an event
func (r *OddsRepository) GetByEventID(ctx context.Context, eventID int64) (*models.OddsPair, error) {
	query := `
		SELECT id, event_id, first_win_odds, second_win_odds, updated_at
		FROM current_odds
		WHERE event_id = $1
	`

	return r.scanOne(ctx, query, eventID)
}

// GetByEventIDForUpdate retrieves the odds pair for an event holding a row
// lock. Two bets racing on the same event serialize here instead of both
// reading pre-adjustment odds.
func (r *OddsRepository) GetByEventIDForUpdate(ctx context.Context, eventID int64) (*models.OddsPair, error) {
	query := `
		SELECT id, event_id, first_win_odds, second_win_odds, updated_at
		FROM current_odds
		WHERE event_id = $1
		FOR UPDATE
	`

	return r.scanOne(ctx, query, eventID)
}

func (r *OddsRepository) scanOne(ctx context.Context, query string, eventID int64) (*models.OddsPair, error) {
	var pair models.OddsPair
	err := r.q.QueryRow(ctx, query, eventID).Scan(
		&pair.ID,
		&pair.EventID,
		&pair.FirstOdds,
		&pair.SecondOdds,
		&pair.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get odds for event %d: %w", eventID, err)
	}

	return &pair, nil
}

// Update writes the pair's current values back
func (r *OddsRepository) Update(ctx context.Context, pair *models.OddsPair) error {
	query := `
		UPDATE current_odds
		SET first_win_odds = $1, second_win_odds = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.q.Exec(ctx, query,
		pair.FirstOdds,
		pair.SecondOdds,
		pair.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update odds for event %d: %w", pair.EventID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %d: %w", pair.EventID, models.ErrOddsNotFound)
	}

	return nil
}
